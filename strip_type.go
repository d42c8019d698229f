package ws281x

import (
	"errors"
	"fmt"

	"github.com/rpi-ws281x/rpi-ws281x-go/sys"
)

// StripType selects the order in which the color channels of each LED are
// sent on the wire and whether the strip has a white channel. Each of the
// four bytes holds the bit offset, within a Led, of the value sent in the
// red, green, blue and white slot.
type StripType uint32

// WS2811 strips have three channels.
const (
	StripRGB = StripType(sys.WS2811_STRIP_RGB)
	StripRBG = StripType(sys.WS2811_STRIP_RBG)
	StripGRB = StripType(sys.WS2811_STRIP_GRB)
	StripGBR = StripType(sys.WS2811_STRIP_GBR)
	StripBRG = StripType(sys.WS2811_STRIP_BRG)
	StripBGR = StripType(sys.WS2811_STRIP_BGR)
)

// SK6812 strips add a white channel.
const (
	StripRGBW = StripType(sys.SK6812_STRIP_RGBW)
	StripRBGW = StripType(sys.SK6812_STRIP_RBGW)
	StripGRBW = StripType(sys.SK6812_STRIP_GRBW)
	StripGBRW = StripType(sys.SK6812_STRIP_GBRW)
	StripBRGW = StripType(sys.SK6812_STRIP_BRGW)
	StripBGRW = StripType(sys.SK6812_STRIP_BGRW)
)

// ErrInvalidStripType is returned when parsing an unknown strip type name.
var ErrInvalidStripType = errors.New("invalid LED strip type")

var stripTypeNames = []struct {
	st   StripType
	name string
}{
	{StripRGB, "rgb"},
	{StripRBG, "rbg"},
	{StripGRB, "grb"},
	{StripGBR, "gbr"},
	{StripBRG, "brg"},
	{StripBGR, "bgr"},
	{StripRGBW, "rgbw"},
	{StripRBGW, "rbgw"},
	{StripGRBW, "grbw"},
	{StripGBRW, "gbrw"},
	{StripBRGW, "brgw"},
	{StripBGRW, "bgrw"},
}

// StripTypes returns every known strip type.
func StripTypes() []StripType {
	out := make([]StripType, len(stripTypeNames))
	for i, n := range stripTypeNames {
		out[i] = n.st
	}
	return out
}

// ParseStripType parses a lower-case channel order such as "grb" or "rgbw".
func ParseStripType(s string) (StripType, error) {
	for _, n := range stripTypeNames {
		if n.name == s {
			return n.st, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStripType, s)
}

func (s StripType) String() string {
	for _, n := range stripTypeNames {
		if n.st == s {
			return n.name
		}
	}
	return fmt.Sprintf("StripType(0x%08x)", uint32(s))
}

// Valid reports whether s is one of the known strip types.
func (s StripType) Valid() bool {
	for _, n := range stripTypeNames {
		if n.st == s {
			return true
		}
	}
	return false
}

// HasWhite reports whether the strip has a white channel.
func (s StripType) HasWhite() bool { return s>>24 != 0 }

// Shifts returns the bit offsets within a Led of the values sent in the
// red, green, blue and white slots.
func (s StripType) Shifts() (r, g, b, w uint) {
	return uint(s>>16) & 0xff, uint(s>>8) & 0xff, uint(s) & 0xff, uint(s>>24) & 0xff
}

func (s StripType) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStripType, s)
	}
	return []byte(s.String()), nil
}

func (s *StripType) UnmarshalText(text []byte) error {
	st, err := ParseStripType(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
