package ws281x

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseStripType(t *testing.T) {
	for _, st := range StripTypes() {
		got, err := ParseStripType(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
		assert.True(t, st.Valid())
	}
	assert.Len(t, StripTypes(), 12)

	_, err := ParseStripType("GRB")
	assert.True(t, errors.Is(err, ErrInvalidStripType))
	_, err = ParseStripType("")
	assert.True(t, errors.Is(err, ErrInvalidStripType))
}

func TestStripTypeString(t *testing.T) {
	assert.Equal(t, "grb", StripGRB.String())
	assert.Equal(t, "bgrw", StripBGRW.String())
	assert.Equal(t, "StripType(0x00000001)", StripType(1).String())
	assert.False(t, StripType(1).Valid())
}

func TestStripTypeHasWhite(t *testing.T) {
	for _, st := range []StripType{StripRGB, StripRBG, StripGRB, StripGBR, StripBRG, StripBGR} {
		assert.False(t, st.HasWhite(), st.String())
	}
	for _, st := range []StripType{StripRGBW, StripRBGW, StripGRBW, StripGBRW, StripBRGW, StripBGRW} {
		assert.True(t, st.HasWhite(), st.String())
	}
}

func TestStripTypeShifts(t *testing.T) {
	r, g, b, _ := StripRGB.Shifts()
	assert.Equal(t, []uint{16, 8, 0}, []uint{r, g, b})

	// GRB sends the green byte in the first slot.
	r, g, b, _ = StripGRB.Shifts()
	assert.Equal(t, []uint{8, 16, 0}, []uint{r, g, b})

	r, g, b, w := StripRGBW.Shifts()
	assert.Equal(t, []uint{16, 8, 0, 24}, []uint{r, g, b, w})
}

func TestStripTypeText(t *testing.T) {
	var cfg struct {
		Strip StripType `yaml:"strip"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("strip: grbw\n"), &cfg))
	assert.Equal(t, StripGRBW, cfg.Strip)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "strip: grbw\n", string(out))

	err = yaml.Unmarshal([]byte("strip: cmyk\n"), &cfg)
	assert.True(t, errors.Is(err, ErrInvalidStripType))

	_, err = StripType(7).MarshalText()
	assert.True(t, errors.Is(err, ErrInvalidStripType))
}
