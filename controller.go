package ws281x

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/rpi-ws281x/rpi-ws281x-go/sys"
)

// ControllerBuilder configures the hardware setup of a Controller.
type ControllerBuilder struct {
	raw sys.Ws2811
	log zerolog.Logger
	drv driver
}

// NewControllerBuilder starts a controller on the given DMA channel, with
// the default frequency and both channels disabled.
//
// The DMA channel must be free. One already in use by other hardware can
// corrupt it, the SD card included; which channels are safe depends on the
// board, firmware and kernel.
func NewControllerBuilder(dmaChannel uint8) *ControllerBuilder {
	return &ControllerBuilder{
		raw: sys.Ws2811{
			Freq:   sys.WS2811_TARGET_FREQ,
			Dmanum: int32(dmaChannel),
		},
		log: zerolog.Nop(),
	}
}

// Freq sets the output frequency in Hz.
func (b *ControllerBuilder) Freq(hz uint32) *ControllerBuilder {
	b.raw.Freq = hz
	return b
}

// Channel sets the first channel, for setups with a single strip.
func (b *ControllerBuilder) Channel(c Channel) *ControllerBuilder {
	b.raw.Channel[0] = c.raw
	return b
}

func (b *ControllerBuilder) Channels(cs [NumChannels]Channel) *ControllerBuilder {
	for i, c := range cs {
		b.raw.Channel[i] = c.raw
	}
	return b
}

func (b *ControllerBuilder) Logger(l zerolog.Logger) *ControllerBuilder {
	b.log = l
	return b
}

// Build loads the native library if needed and initialises the hardware.
func (b *ControllerBuilder) Build() (*Controller, error) {
	d := b.drv
	if d == nil {
		var err error
		if d, err = loadNative(); err != nil {
			return nil, err
		}
	}

	c := &Controller{raw: new(sys.Ws2811), drv: d, log: b.log}
	*c.raw = b.raw
	if code := d.Init(c.raw); code != sys.WS2811_SUCCESS {
		return nil, newError(d, code)
	}
	c.log.Debug().
		Int32("dma", c.raw.Dmanum).
		Uint32("freq", c.raw.Freq).
		Int32("count0", c.raw.Channel[0].Count).
		Int32("count1", c.raw.Channel[1].Count).
		Msg("controller initialised")
	return c, nil
}

// Controller renders LED buffers to the strips. It is not safe for
// concurrent use.
type Controller struct {
	raw    *sys.Ws2811
	drv    driver
	log    zerolog.Logger
	closed bool
}

// Buffer returns the LEDs of channel i. The slice aliases memory owned by
// the native library; writes to it are shown by the next Render, and it
// must not be used after Close. A disabled channel has a nil buffer.
// Buffer panics if i is not below NumChannels.
func (c *Controller) Buffer(i int) []Led {
	ch := &c.raw.Channel[i]
	if c.closed || ch.Leds == nil || ch.Count <= 0 {
		return nil
	}
	return unsafe.Slice((*Led)(unsafe.Pointer(ch.Leds)), int(ch.Count))
}

// Render sends the current buffers to the strips.
func (c *Controller) Render() error {
	if c.closed {
		return ErrClosed
	}
	if code := c.drv.Render(c.raw); code != sys.WS2811_SUCCESS {
		return newError(c.drv, code)
	}
	return nil
}

// RenderBuffer renders bufs in place of the controller's own buffers,
// avoiding a copy of pre-filled frames. Each buffer must hold exactly as
// many LEDs as its channel; a disabled channel takes an empty buffer. The
// controller's own buffers are left untouched.
func (c *Controller) RenderBuffer(bufs [NumChannels][]Led) error {
	if c.closed {
		return ErrClosed
	}
	for i, buf := range bufs {
		if want := int(c.raw.Channel[i].Count); len(buf) != want {
			return fmt.Errorf("ws281x: channel %d: buffer holds %d LEDs, want %d", i, len(buf), want)
		}
	}

	var orig [NumChannels]*sys.Ws2811Led
	for i := range c.raw.Channel {
		orig[i] = c.raw.Channel[i].Leds
	}
	defer func() {
		for i := range c.raw.Channel {
			c.raw.Channel[i].Leds = orig[i]
		}
	}()
	for i, buf := range bufs {
		if len(buf) > 0 {
			c.raw.Channel[i].Leds = (*sys.Ws2811Led)(unsafe.Pointer(unsafe.SliceData(buf)))
		}
	}

	err := c.Render()
	runtime.KeepAlive(bufs)
	return err
}

// Close releases the hardware. Calling it again has no effect.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.drv.Fini(c.raw)
	c.log.Debug().Msg("controller closed")
	return nil
}
