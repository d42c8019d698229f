package ws281x

import (
	"bytes"
	"errors"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpi-ws281x/rpi-ws281x-go/sys"
)

// fakeDriver stands in for the native library. Init allocates the LED
// buffers the way ws2811_init does; Render records what it would send.
type fakeDriver struct {
	initCode   sys.Ws2811Return
	renderCode sys.Ws2811Return

	initialised *sys.Ws2811
	buffers     [NumChannels][]sys.Ws2811Led
	frames      [][NumChannels][]Led
	finis       int
}

func (f *fakeDriver) Init(ws *sys.Ws2811) sys.Ws2811Return {
	if f.initCode != sys.WS2811_SUCCESS {
		return f.initCode
	}
	copied := *ws
	f.initialised = &copied
	for i := range ws.Channel {
		ch := &ws.Channel[i]
		if ch.Count > 0 {
			f.buffers[i] = make([]sys.Ws2811Led, ch.Count)
			ch.Leds = &f.buffers[i][0]
		}
	}
	return sys.WS2811_SUCCESS
}

func (f *fakeDriver) Render(ws *sys.Ws2811) sys.Ws2811Return {
	var frame [NumChannels][]Led
	for i, ch := range ws.Channel {
		if ch.Leds != nil {
			frame[i] = append([]Led(nil), unsafe.Slice((*Led)(unsafe.Pointer(ch.Leds)), int(ch.Count))...)
		}
	}
	f.frames = append(f.frames, frame)
	return f.renderCode
}

func (f *fakeDriver) Fini(*sys.Ws2811) { f.finis++ }

func (f *fakeDriver) Describe(code sys.Ws2811Return) string {
	if code == sys.WS2811_ERROR_DMA {
		return "DMA error"
	}
	return ""
}

func build(t *testing.T, f *fakeDriver, b *ControllerBuilder) *Controller {
	t.Helper()
	b.drv = f
	c, err := b.Build()
	require.NoError(t, err)
	return c
}

func TestChannelBuilderDefaults(t *testing.T) {
	ch := NewChannelBuilder(10, 19).Build()
	assert.Equal(t, 10, ch.GPIOPin())
	assert.Equal(t, 19, ch.Count())
	assert.Equal(t, StripGBR, ch.StripType())
	assert.Equal(t, uint8(255), ch.Brightness())
	assert.False(t, ch.Inverted())
	assert.False(t, ch.Disabled())

	ch = NewChannelBuilder(18, 4).StripType(StripRGBW).Invert(true).Brightness(100).Build()
	assert.Equal(t, StripRGBW, ch.StripType())
	assert.True(t, ch.Inverted())
	assert.Equal(t, uint8(100), ch.Brightness())

	assert.True(t, DisabledChannel().Disabled())
}

func TestControllerBuild(t *testing.T) {
	f := &fakeDriver{}
	ch := NewChannelBuilder(10, 3).StripType(StripGRB).Build()
	c := build(t, f, NewControllerBuilder(10).Freq(400000).Channel(ch))

	want := sys.Ws2811{
		Freq:   400000,
		Dmanum: 10,
		Channel: [2]sys.Ws2811Channel{
			{Gpionum: 10, Count: 3, StripType: int32(StripGRB), Brightness: 255},
		},
	}
	assert.Equal(t, want, *f.initialised)
	assert.Len(t, c.Buffer(0), 3)
	assert.Nil(t, c.Buffer(1))
}

func TestControllerBuildDefaults(t *testing.T) {
	f := &fakeDriver{}
	build(t, f, NewControllerBuilder(5))
	assert.Equal(t, uint32(sys.WS2811_TARGET_FREQ), f.initialised.Freq)
	assert.Equal(t, [2]sys.Ws2811Channel{}, f.initialised.Channel)
}

func TestControllerBuildFailure(t *testing.T) {
	f := &fakeDriver{initCode: sys.WS2811_ERROR_DMA}
	b := NewControllerBuilder(10).Channel(NewChannelBuilder(10, 1).Build())
	b.drv = f
	c, err := b.Build()
	assert.Nil(t, c)

	var werr *Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, sys.WS2811_ERROR_DMA, werr.Code)
	assert.Equal(t, "DMA error", err.Error())
	assert.True(t, errors.Is(err, &Error{Code: sys.WS2811_ERROR_DMA}))
	assert.False(t, errors.Is(err, &Error{Code: sys.WS2811_ERROR_MMAP}))
}

func TestErrorFallsBackToName(t *testing.T) {
	err := newError(&fakeDriver{}, sys.WS2811_ERROR_GPIO_INIT)
	assert.Equal(t, "WS2811_ERROR_GPIO_INIT", err.Error())
}

func TestControllerRender(t *testing.T) {
	f := &fakeDriver{}
	c := build(t, f, NewControllerBuilder(10).Channels([NumChannels]Channel{
		NewChannelBuilder(10, 2).Build(),
		NewChannelBuilder(13, 1).Build(),
	}))

	buf := c.Buffer(0)
	buf[0], buf[1] = Red, Blue
	c.Buffer(1)[0] = White
	require.NoError(t, c.Render())

	want := [][NumChannels][]Led{{{Red, Blue}, {White}}}
	if diff := cmp.Diff(want, f.frames); diff != "" {
		t.Errorf("rendered frames mismatch (-want +got):\n%s", diff)
	}
	// The buffer aliases the library's memory.
	assert.Equal(t, sys.Ws2811Led(Red), f.buffers[0][0])
}

func TestControllerRenderFailure(t *testing.T) {
	f := &fakeDriver{renderCode: sys.WS2811_ERROR_SPI_TRANSFER}
	c := build(t, f, NewControllerBuilder(10).Channel(NewChannelBuilder(10, 1).Build()))

	err := c.Render()
	assert.True(t, errors.Is(err, &Error{Code: sys.WS2811_ERROR_SPI_TRANSFER}))
}

func TestControllerRenderBuffer(t *testing.T) {
	f := &fakeDriver{}
	c := build(t, f, NewControllerBuilder(10).Channel(NewChannelBuilder(10, 3).Build()))
	own := c.raw.Channel[0].Leds

	on := []Led{On, On, On}
	require.NoError(t, c.RenderBuffer([NumChannels][]Led{on, nil}))
	assert.Equal(t, []Led{On, On, On}, f.frames[0][0])
	assert.Nil(t, f.frames[0][1])

	assert.Same(t, own, c.raw.Channel[0].Leds)
	assert.Equal(t, []Led{Off, Off, Off}, c.Buffer(0))
}

func TestControllerRenderBufferRestoresOnError(t *testing.T) {
	f := &fakeDriver{}
	c := build(t, f, NewControllerBuilder(10).Channel(NewChannelBuilder(10, 2).Build()))
	own := c.raw.Channel[0].Leds

	f.renderCode = sys.WS2811_ERROR_GENERIC
	err := c.RenderBuffer([NumChannels][]Led{{Red, Green}, {}})
	require.Error(t, err)
	assert.Same(t, own, c.raw.Channel[0].Leds)
	assert.Equal(t, []Led{Red, Green}, f.frames[0][0])
}

func TestControllerRenderBufferLength(t *testing.T) {
	f := &fakeDriver{}
	c := build(t, f, NewControllerBuilder(10).Channel(NewChannelBuilder(10, 2).Build()))

	err := c.RenderBuffer([NumChannels][]Led{{Red}, nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel 0: buffer holds 1 LEDs, want 2")

	err = c.RenderBuffer([NumChannels][]Led{{Red, Red}, {Red}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel 1")
	assert.Empty(t, f.frames)
}

func TestControllerClose(t *testing.T) {
	var logs bytes.Buffer
	f := &fakeDriver{}
	c := build(t, f, NewControllerBuilder(10).
		Channel(NewChannelBuilder(10, 1).Build()).
		Logger(zerolog.New(&logs).Level(zerolog.DebugLevel)))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, f.finis)

	assert.Nil(t, c.Buffer(0))
	assert.True(t, errors.Is(c.Render(), ErrClosed))
	assert.True(t, errors.Is(c.RenderBuffer([NumChannels][]Led{{Red}, nil}), ErrClosed))
	assert.Contains(t, logs.String(), "controller initialised")
	assert.Contains(t, logs.String(), "controller closed")
}
