package ws281x

import "github.com/rpi-ws281x/rpi-ws281x-go/sys"

// NumChannels is the number of channels a Controller drives.
const NumChannels = int(sys.RPI_PWM_CHANNELS)

var _ [NumChannels]sys.Ws2811Channel = sys.Ws2811{}.Channel

// Channel is one LED strip attached to one GPIO pin.
type Channel struct {
	raw sys.Ws2811Channel
}

// DisabledChannel returns a channel that drives nothing.
func DisabledChannel() Channel {
	return Channel{}
}

func (c Channel) GPIOPin() int         { return int(c.raw.Gpionum) }
func (c Channel) Count() int           { return int(c.raw.Count) }
func (c Channel) StripType() StripType { return StripType(uint32(c.raw.StripType)) }
func (c Channel) Inverted() bool       { return c.raw.Invert != 0 }
func (c Channel) Brightness() uint8    { return c.raw.Brightness }
func (c Channel) Disabled() bool       { return c.raw.Count == 0 }

// ChannelBuilder configures a Channel. The zero value is not usable; call
// NewChannelBuilder.
type ChannelBuilder struct {
	raw sys.Ws2811Channel
}

// NewChannelBuilder starts a channel of count LEDs on gpioPin, with the
// GBR strip type, no inversion and full brightness.
func NewChannelBuilder(gpioPin uint8, count uint16) *ChannelBuilder {
	return &ChannelBuilder{raw: sys.Ws2811Channel{
		Gpionum:    int32(gpioPin),
		Count:      int32(count),
		StripType:  int32(StripGBR),
		Brightness: 255,
	}}
}

func (b *ChannelBuilder) StripType(st StripType) *ChannelBuilder {
	b.raw.StripType = int32(st)
	return b
}

// Invert inverts the output signal, for level shifters that invert.
func (b *ChannelBuilder) Invert(invert bool) *ChannelBuilder {
	b.raw.Invert = 0
	if invert {
		b.raw.Invert = 1
	}
	return b
}

// Brightness scales every LED of the channel; 255 is full brightness.
func (b *ChannelBuilder) Brightness(brightness uint8) *ChannelBuilder {
	b.raw.Brightness = brightness
	return b
}

func (b *ChannelBuilder) Build() Channel {
	return Channel{raw: b.raw}
}
