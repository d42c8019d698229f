package ws281x

import (
	"fmt"
	"math"
)

// Led is the brightness of the white, red, green and blue channels of one
// LED, packed as 0xWWRRGGBB like the native ws2811_led_t.
type Led uint32

const (
	Off      Led = 0x00000000
	On       Led = 0xffffffff
	White    Led = 0xff000000
	RGBWhite Led = 0x00ffffff
	Red      Led = 0x00ff0000
	Green    Led = 0x0000ff00
	Blue     Led = 0x000000ff
)

// NewLed packs the given channel values.
func NewLed(w, r, g, b uint8) Led {
	return Led(w)<<24 | Led(r)<<16 | Led(g)<<8 | Led(b)
}

func (l Led) White() uint8 { return uint8(l >> 24) }
func (l Led) Red() uint8   { return uint8(l >> 16) }
func (l Led) Green() uint8 { return uint8(l >> 8) }
func (l Led) Blue() uint8  { return uint8(l) }

// Add sums two LEDs channel by channel, saturating at 255.
func (l Led) Add(o Led) Led {
	return NewLed(
		satAdd(l.White(), o.White()),
		satAdd(l.Red(), o.Red()),
		satAdd(l.Green(), o.Green()),
		satAdd(l.Blue(), o.Blue()),
	)
}

func satAdd(a, b uint8) uint8 {
	if s := uint16(a) + uint16(b); s < 0xff {
		return uint8(s)
	}
	return 0xff
}

// Scale multiplies every channel by f, rounding to the nearest value and
// clamping to 0-255. A NaN factor turns the LED off.
func (l Led) Scale(f float32) Led {
	return NewLed(
		scale(l.White(), f),
		scale(l.Red(), f),
		scale(l.Green(), f),
		scale(l.Blue(), f),
	)
}

func scale(v uint8, f float32) uint8 {
	x := math.Round(float64(float32(v) * f))
	switch {
	case math.IsNaN(x) || x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x)
}

func (l Led) String() string {
	return fmt.Sprintf("Led{W:%d R:%d G:%d B:%d}", l.White(), l.Red(), l.Green(), l.Blue())
}
