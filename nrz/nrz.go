// Package nrz renders LED buffers without the native library, by encoding
// the WS281x NRZ signal on an SPI port.
package nrz

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"

	ws281x "github.com/rpi-ws281x/rpi-ws281x-go"
)

// DefaultFreq is the SPI clock nrzled drives the port at. Every LED bit
// takes three SPI bits, so 2.5MHz yields the 800kHz NRZ data rate of
// WS2812 and SK6812 strips. nrzled accepts no other clock.
const DefaultFreq = 2500 * physic.KiloHertz

// Renderer drives one strip over SPI.
type Renderer struct {
	dev   *nrzled.Dev
	st    ws281x.StripType
	count int
	buf   []byte
}

// New returns a renderer for count LEDs of type st on port. freq is the SPI
// clock; zero selects DefaultFreq and any other value is rejected.
func New(port spi.Port, count int, st ws281x.StripType, freq physic.Frequency) (*Renderer, error) {
	if !st.Valid() {
		return nil, fmt.Errorf("nrz: %w: %v", ws281x.ErrInvalidStripType, st)
	}
	if count < 0 {
		return nil, errors.New("nrz: negative LED count")
	}
	if freq == 0 {
		freq = DefaultFreq
	}
	if freq != DefaultFreq {
		return nil, fmt.Errorf("nrz: SPI clock must be %v, got %v", DefaultFreq, freq)
	}
	channels := 3
	if st.HasWhite() {
		channels = 4
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: count, Channels: channels, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrz: %w", err)
	}
	return &Renderer{dev: dev, st: st, count: count, buf: make([]byte, 0, count*channels)}, nil
}

// Render sends leds, which must hold exactly one value per LED.
func (r *Renderer) Render(leds []ws281x.Led) error {
	if len(leds) != r.count {
		return fmt.Errorf("nrz: buffer holds %d LEDs, want %d", len(leds), r.count)
	}
	r.buf = AppendPixels(r.buf[:0], leds, r.st)
	if _, err := r.dev.Write(r.buf); err != nil {
		return fmt.Errorf("nrz: %w", err)
	}
	return nil
}

// Halt turns every LED off.
func (r *Renderer) Halt() error {
	return r.dev.Halt()
}

func (r *Renderer) String() string {
	return r.dev.String()
}

// AppendPixels appends the wire bytes of leds in the channel order of st:
// three bytes per LED, four for strips with a white channel.
func AppendPixels(dst []byte, leds []ws281x.Led, st ws281x.StripType) []byte {
	rs, gs, bs, ws := st.Shifts()
	white := st.HasWhite()
	for _, l := range leds {
		dst = append(dst, byte(l>>rs), byte(l>>gs), byte(l>>bs))
		if white {
			dst = append(dst, byte(l>>ws))
		}
	}
	return dst
}
