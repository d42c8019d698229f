// Package ws281x drives WS281x and SK6812 LED strips on a Raspberry Pi
// through the native rpi_ws281x library.
//
// A Controller is configured with a ControllerBuilder and up to NumChannels
// channels, each a strip attached to one GPIO pin:
//
//	ch := ws281x.NewChannelBuilder(10, 19).StripType(ws281x.StripGRB).Build()
//	ctrl, err := ws281x.NewControllerBuilder(10).Channel(ch).Build()
//	if err != nil {
//		return err
//	}
//	defer ctrl.Close()
//
//	leds := ctrl.Buffer(0)
//	leds[0] = ws281x.Red
//	return ctrl.Render()
//
// The shared library libws281x is opened on the first Build from the
// directory named by the WS281X_LIB_DIR environment variable, or from the
// system search path when it is unset. Package sys holds the raw bindings.
package ws281x
