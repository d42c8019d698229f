package parser

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T) *Header {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "testdata", "ws2811.i"))
	require.NoError(t, err)
	h, err := Parse(string(b))
	require.NoError(t, err)
	return h
}

func TestParseWS2811(t *testing.T) {
	h := parseFixture(t)

	ws, ok := h.StructByName("ws2811_t")
	require.True(t, ok)
	assert.Equal(t, "ws2811_t", ws.Tag)
	assert.False(t, ws.IsOpaque)

	var names []string
	for _, f := range ws.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"render_wait_time", "device", "rpi_hw", "freq", "dmanum", "channel"}, names)

	want := []StructField{
		{Name: "device", Type: CType{Name: "ws2811_device", Tag: "struct", Pointers: 1}},
		{Name: "rpi_hw", Type: CType{Name: "rpi_hw_t", IsConst: true, Pointers: 1}},
		{Name: "channel", Type: CType{Name: "ws2811_channel_t", Dims: []int{2}}},
	}
	got := []StructField{ws.Fields[1], ws.Fields[2], ws.Fields[5]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ws2811_t fields mismatch (-want +got):\n%s", diff)
	}

	dev, ok := h.StructByTag("ws2811_device")
	require.True(t, ok)
	assert.True(t, dev.IsOpaque)
	assert.Empty(t, dev.Name)

	hw, ok := h.StructByName("rpi_hw_t")
	require.True(t, ok)
	assert.Empty(t, hw.Tag)
	require.Len(t, hw.Fields, 5)
	assert.Equal(t, CType{Name: "char", Pointers: 1}, hw.Fields[4].Type)

	pwm, ok := h.StructByName("pwm_t")
	require.True(t, ok, "attributes must not hide the typedef name")
	assert.Len(t, pwm.Fields, 10)

	td, ok := h.TypeDef("ws2811_led_t")
	require.True(t, ok)
	assert.Equal(t, CType{Name: "uint32_t"}, td.SourceType)

	td, ok = h.TypeDef("__int64_t")
	require.True(t, ok)
	assert.Equal(t, "long long", td.SourceType.Name)
}

func TestParseXMacroEnum(t *testing.T) {
	h := parseFixture(t)

	e, ok := h.EnumByName("ws2811_return_t")
	require.True(t, ok)
	require.NoError(t, e.Err)
	require.Len(t, e.Values, 16)

	assert.Equal(t, EnumValue{Name: "WS2811_SUCCESS", Expr: "0", Value: 0}, e.Values[0])
	assert.Equal(t, EnumValue{Name: "WS2811_ERROR_SPI_TRANSFER", Expr: "-14", Value: -14}, e.Values[14])
	assert.Equal(t, EnumValue{Name: "WS2811_RETURN_STATE_COUNT", Value: -13}, e.Values[15])

	v, ok := h.Enumerator("WS2811_ERROR_DMA")
	require.True(t, ok)
	assert.Equal(t, int64(-10), v)
}

func TestParseFunctions(t *testing.T) {
	h := parseFixture(t)

	var names []string
	for _, fn := range h.Functions {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{
		"rpi_hw_detect", "pwm_pin_alt",
		"ws2811_init", "ws2811_fini", "ws2811_render", "ws2811_wait",
		"ws2811_get_return_t_str", "ws2811_set_custom_gamma_factor",
	}, names)

	str := h.Functions[6]
	assert.Equal(t, CType{Name: "char", IsConst: true, Pointers: 1}, str.ReturnType)
	want := []FunctionParam{{Name: "state", Type: CType{Name: "ws2811_return_t", IsConst: true}}}
	if diff := cmp.Diff(want, str.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i < len(h.Functions); i++ {
		assert.Less(t, h.Functions[i-1].Pos, h.Functions[i].Pos)
	}
}

func TestParseMacros(t *testing.T) {
	h := parseFixture(t)

	tests := []struct {
		name     string
		want     int64
		unsigned bool
	}{
		{"RPI_PWM_CHANNELS", 2, false},
		{"WS2811_TARGET_FREQ", 800000, false},
		{"SK6812_STRIP_RGBW", 403703808, false},
		{"SK6812_STRIP_GRBW", 403181568, false},
		{"WS2811_STRIP_BGR", 2064, false},
		{"WS2812_STRIP", 528384, false},
		{"SK6812W_STRIP", 403181568, false},
		{"SK6812_SHIFT_WMASK", 0xf0000000, true},
		{"UINT32_MAX", 4294967295, true},
		{"INT32_MIN", -2147483648, false},
		{"RPI_PWM_CTL_MSEN2", 1 << 15, false},
		{"RPI_HWVER_TYPE_PI4", 3, false},
		{"PWM_PERIPH_PHYS", 0x7e20c000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := h.Constant(tt.name)
			require.NoError(t, err)
			assert.Equal(t, Const{Kind: IntConst, Int: tt.want, Bits: 32, Unsigned: tt.unsigned}, c)
		})
	}

	_, ok := h.Macro("__INT64_C")
	assert.False(t, ok, "function-like macros are not constants")

	_, err := h.Constant("__WS2811_H__")
	assert.ErrorIs(t, err, ErrNoValue)

	_, err = h.Constant("NOT_DEFINED")
	assert.Error(t, err)
}

func TestParseDeclarationForms(t *testing.T) {
	h, err := Parse(`
typedef struct foo foo_t;
typedef struct bar { int x; char name[16]; } bar_t, *bar_ptr;
typedef void (*callback_t)(int, void *);
struct flags { unsigned int a : 3; unsigned : 5; int b; };
union value { int i; float f; };
struct outer { struct { int a; } inner; int b; };
typedef enum color { RED, GREEN = 4, BLUE } color_t;
enum { FLAG_A = 1 << 2, FLAG_B, FLAG_C = FLAG_A | FLAG_B };
static inline int helper(void) { return 1; }
int counter = 3;
int handle(int, const char *, struct foo *, unsigned long buf[4], ...);
int handle(int, const char *, struct foo *, unsigned long buf[4], ...);
void set_callback(void (*cb)(int));
`)
	require.NoError(t, err)

	foo, ok := h.StructByTag("foo")
	require.True(t, ok)
	assert.True(t, foo.IsOpaque)
	td, ok := h.TypeDef("foo_t")
	require.True(t, ok)
	assert.Equal(t, CType{Name: "foo", Tag: "struct"}, td.SourceType)

	bar, ok := h.StructByName("bar_t")
	require.True(t, ok)
	assert.Equal(t, "bar", bar.Tag)
	assert.Equal(t, []int{16}, bar.Fields[1].Type.Dims)
	td, ok = h.TypeDef("bar_ptr")
	require.True(t, ok)
	assert.Equal(t, CType{Name: "bar_t", Pointers: 1}, td.SourceType)

	td, ok = h.TypeDef("callback_t")
	require.True(t, ok)
	assert.True(t, td.SourceType.FuncPtr)

	flags, ok := h.StructByTag("flags")
	require.True(t, ok)
	require.Len(t, flags.Fields, 3)
	assert.Equal(t, 3, flags.Fields[0].BitWidth)
	assert.Equal(t, 5, flags.Fields[1].BitWidth)
	assert.Empty(t, flags.Fields[1].Name)
	assert.Zero(t, flags.Fields[2].BitWidth)

	value, ok := h.StructByTag("value")
	require.True(t, ok)
	assert.True(t, value.IsUnion)

	outer, ok := h.StructByTag("outer")
	require.True(t, ok)
	assert.Equal(t, "outer_anon0", outer.Fields[0].Type.Name)
	_, ok = h.StructByName("outer_anon0")
	assert.True(t, ok)

	color, ok := h.EnumByName("color_t")
	require.True(t, ok)
	assert.Equal(t, "color", color.Tag)
	assert.Equal(t, []int64{0, 4, 5}, []int64{color.Values[0].Value, color.Values[1].Value, color.Values[2].Value})

	for name, want := range map[string]int64{"FLAG_A": 4, "FLAG_B": 5, "FLAG_C": 5} {
		v, ok := h.Enumerator(name)
		require.True(t, ok, name)
		assert.Equal(t, want, v, name)
	}

	require.Len(t, h.Functions, 2, "definitions and variables are skipped, duplicates collapse")
	handle := h.Functions[0]
	assert.True(t, handle.IsVariadic)
	want := []FunctionParam{
		{Type: CType{Name: "int"}},
		{Type: CType{Name: "char", IsConst: true, Pointers: 1}},
		{Type: CType{Name: "foo", Tag: "struct", Pointers: 1}},
		{Name: "buf", Type: CType{Name: "unsigned long", Pointers: 1}},
	}
	if diff := cmp.Diff(want, handle.Params, cmp.Comparer(func(a, b []int) bool { return len(a) == len(b) })); diff != "" {
		t.Errorf("handle params mismatch (-want +got):\n%s", diff)
	}

	cb := h.Functions[1].Params[0]
	assert.Equal(t, "cb", cb.Name)
	assert.True(t, cb.Type.FuncPtr)
}

func TestParseConstantKinds(t *testing.T) {
	h, err := Parse(`
#define LIB_NAME "ws" "281x"
#define GAMMA 2.8f
#define NEG (-1.5)
#define ALIAS LIB_NAME
#define SELF SELF
#define MASK (0xffff0000 >> 16)
#define CHAR_A 'A'
#define CAST ((uint8_t)0x1ff)
#define TERNARY (MASK > 0 ? 1 : 2)
#define REDEF 1
#undef REDEF
#define REDEF 2
#define GONE 1
#undef GONE
`)
	require.NoError(t, err)

	tests := []struct {
		name string
		want Const
	}{
		{"LIB_NAME", Const{Kind: StringConst, Str: "ws281x"}},
		{"GAMMA", Const{Kind: FloatConst, Float: 2.8}},
		{"NEG", Const{Kind: FloatConst, Float: -1.5}},
		{"ALIAS", Const{Kind: StringConst, Str: "ws281x"}},
		{"MASK", Const{Kind: IntConst, Int: 0xffff, Bits: 32, Unsigned: true}},
		{"CHAR_A", Const{Kind: IntConst, Int: 'A', Bits: 32}},
		{"CAST", Const{Kind: IntConst, Int: 0xff, Bits: 8, Unsigned: true}},
		{"TERNARY", Const{Kind: IntConst, Int: 1, Bits: 32}},
		{"REDEF", Const{Kind: IntConst, Int: 2, Bits: 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Constant(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = h.Constant("SELF")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refers to itself")
	_, ok := h.Macro("GONE")
	assert.False(t, ok)
}

func TestParseCommentsInLiterals(t *testing.T) {
	h, err := Parse(`
#define URL "http://x" // the bridge
#define PATTERN "/* not a comment */"
#define QUOTE '"' /* closes */
#define AFTER 1
`)
	require.NoError(t, err)

	c, err := h.Constant("URL")
	require.NoError(t, err)
	assert.Equal(t, Const{Kind: StringConst, Str: "http://x"}, c)

	c, err = h.Constant("PATTERN")
	require.NoError(t, err)
	assert.Equal(t, "/* not a comment */", c.Str)

	c, err = h.Constant("QUOTE")
	require.NoError(t, err)
	assert.Equal(t, int64('"'), c.Int)

	c, err = h.Constant("AFTER")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Int)
}

func TestRemoveComments(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"int a; // gone\nint b;", "int a; \nint b;"},
		{"int /* x */ a;", "int   a;"},
		{`char *s = "a//b";`, `char *s = "a//b";`},
		{`char *s = "a\"/*b*/";`, `char *s = "a\"/*b*/";`},
		{"#error don't // stop\nint a;", "#error don't \nint a;"},
		{"int a; /* unterminated", "int a; "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, removeComments(tt.in), tt.in)
	}
}

func TestParseDataModel(t *testing.T) {
	const src = `
#define ALL_ONES (~0U)
#define ALL_ONES_64 (~0ULL)
#define WIDE ((long)0x1ffffffff)
#define ULONG_TOP (~0UL >> 1)
#define BYTE ((char)0xff)
#define NEXT (ALL_ONES + 1)
#define MIXED (-1 < 0U)
#define HEX_SMALL 0x7fffffff
#define DEC_BIG 2147483648
#define SIGNED_SHIFT (-16 >> 2)
`
	tests := []struct {
		name  string
		model DataModel
		want  map[string]Const
	}{
		{
			name:  "ilp32 unsigned char",
			model: DataModel{LongBits: 32},
			want: map[string]Const{
				"ALL_ONES":     {Kind: IntConst, Int: 4294967295, Bits: 32, Unsigned: true},
				"ALL_ONES_64":  {Kind: IntConst, Int: -1, Bits: 64, Unsigned: true},
				"WIDE":         {Kind: IntConst, Int: -1, Bits: 32},
				"ULONG_TOP":    {Kind: IntConst, Int: 0x7fffffff, Bits: 32, Unsigned: true},
				"BYTE":         {Kind: IntConst, Int: 255, Bits: 8, Unsigned: true},
				"NEXT":         {Kind: IntConst, Int: 0, Bits: 32, Unsigned: true},
				"MIXED":        {Kind: IntConst, Int: 0, Bits: 32},
				"HEX_SMALL":    {Kind: IntConst, Int: 0x7fffffff, Bits: 32},
				"DEC_BIG":      {Kind: IntConst, Int: 2147483648, Bits: 64},
				"SIGNED_SHIFT": {Kind: IntConst, Int: -4, Bits: 32},
			},
		},
		{
			name:  "lp64 signed char",
			model: DataModel{LongBits: 64, CharSigned: true},
			want: map[string]Const{
				"ALL_ONES":  {Kind: IntConst, Int: 4294967295, Bits: 32, Unsigned: true},
				"WIDE":      {Kind: IntConst, Int: 0x1ffffffff, Bits: 64},
				"ULONG_TOP": {Kind: IntConst, Int: math.MaxInt64, Bits: 64, Unsigned: true},
				"BYTE":      {Kind: IntConst, Int: -1, Bits: 8},
				"DEC_BIG":   {Kind: IntConst, Int: 2147483648, Bits: 64},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseWithModel(src, tt.model)
			require.NoError(t, err)
			got := map[string]Const{}
			for name := range tt.want {
				c, err := h.Constant(name)
				require.NoError(t, err, name)
				got[name] = c
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("constants mismatch (-want +got):\n%s", diff)
			}
		})
	}

	h, err := Parse(src)
	require.NoError(t, err)
	c, err := h.Constant("ALL_ONES_64")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), c.Uint())
}

func TestParseEnumError(t *testing.T) {
	h, err := Parse(`enum sized { A = 1, B = sizeof(int), C };`)
	require.NoError(t, err)

	e, ok := h.EnumByTag("sized")
	require.True(t, ok)
	require.Error(t, e.Err)
	assert.Contains(t, e.Err.Error(), "B")
	assert.Len(t, e.Values, 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unterminated brace", "struct a { int x;", "unterminated"},
		{"stray brace", "int x; }", "unexpected '}'"},
		{"missing semicolon", "int f(void)", "unterminated declaration"},
		{"unbalanced parens", "int f(int x;", "unbalanced"},
		{"unterminated attribute", "int x __attribute__((packed);", "unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
