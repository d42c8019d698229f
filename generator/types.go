package generator

import (
	"fmt"
	"math"
	"strings"

	"github.com/rpi-ws281x/rpi-ws281x-go/allowlist"
	"github.com/rpi-ws281x/rpi-ws281x-go/parser"
)

// builtin is a C scalar type and its Go and libffi counterparts.
type builtin struct {
	goType  string
	ffiType string
	bits    int
	float   bool
}

func intType(bits int, signed bool) builtin {
	prefix, ffiPrefix := "uint", "ffi.TypeUint"
	if signed {
		prefix, ffiPrefix = "int", "ffi.TypeSint"
	}
	return builtin{
		goType:  fmt.Sprintf("%s%d", prefix, bits),
		ffiType: fmt.Sprintf("%s%d", ffiPrefix, bits),
		bits:    bits,
	}
}

// DataModel returns the data model headers are parsed with for p's target,
// so constant expressions agree with the emitted types.
func DataModel(p *allowlist.Policy) parser.DataModel {
	return parser.DataModel{LongBits: p.Target.LongBits, CharSigned: p.Target.CharSigned}
}

// builtinType maps C builtin and <stdint.h>/<stddef.h> names. The widths of
// long and size_t come from the target data model.
func (g *Generator) builtinType(name string) (builtin, bool) {
	long := g.policy.Target.LongBits
	ptr := g.policy.Target.PointerBits
	switch name {
	case "void":
		return builtin{ffiType: "ffi.TypeVoid"}, true
	case "_Bool", "bool":
		return builtin{goType: "bool", ffiType: "ffi.TypeUint8", bits: 8}, true
	case "char":
		if g.policy.Target.CharSigned {
			return intType(8, true), true
		}
		return builtin{goType: "byte", ffiType: "ffi.TypeUint8", bits: 8}, true
	case "signed char", "int8_t":
		return intType(8, true), true
	case "unsigned char", "uint8_t":
		return intType(8, false), true
	case "short", "int16_t":
		return intType(16, true), true
	case "unsigned short", "uint16_t":
		return intType(16, false), true
	case "int", "int32_t":
		return intType(32, true), true
	case "unsigned int", "uint32_t":
		return intType(32, false), true
	case "long":
		return intType(long, true), true
	case "unsigned long":
		return intType(long, false), true
	case "long long", "int64_t":
		return intType(64, true), true
	case "unsigned long long", "uint64_t":
		return intType(64, false), true
	case "size_t":
		return intType(ptr, false), true
	case "ssize_t", "ptrdiff_t", "intptr_t":
		return intType(ptr, true), true
	case "uintptr_t":
		b := intType(ptr, false)
		b.goType = "uintptr"
		return b, true
	case "float":
		return builtin{goType: "float32", ffiType: "ffi.TypeFloat", bits: 32, float: true}, true
	case "double":
		return builtin{goType: "float64", ffiType: "ffi.TypeDouble", bits: 64, float: true}, true
	}
	return builtin{}, false
}

func isBuiltinRef(ct parser.CType) bool {
	return ct.Tag == "" && !ct.FuncPtr
}

func spell(ct parser.CType) string {
	s := ct.Name
	if ct.Tag != "" {
		s = ct.Tag + " " + s
	}
	if ct.IsConst {
		s = "const " + s
	}
	if ct.Pointers > 0 {
		s += " " + strings.Repeat("*", ct.Pointers)
	}
	for _, d := range ct.Dims {
		s += fmt.Sprintf("[%d]", d)
	}
	return s
}

// enumRepr picks the Go integer type holding every value of e.
func enumRepr(e *parser.Enum) builtin {
	fitsInt32, fitsUint32 := true, true
	for _, v := range e.Values {
		if v.Value < math.MinInt32 || v.Value > math.MaxInt32 {
			fitsInt32 = false
		}
		if v.Value < 0 || v.Value > math.MaxUint32 {
			fitsUint32 = false
		}
	}
	switch {
	case fitsInt32:
		return intType(32, true)
	case fitsUint32:
		return intType(32, false)
	}
	return intType(64, true)
}

// constType returns the narrowest of uint32, int32, uint64 and int64 that
// holds v.
func constType(v int64) string {
	switch {
	case v >= 0 && v <= math.MaxUint32:
		return "uint32"
	case v >= math.MinInt32 && v < 0:
		return "int32"
	case v >= 0:
		return "uint64"
	}
	return "int64"
}

// goType renders ct as a Go type expression. String conversion of char
// pointers is handled by the function wrappers, not here.
func (e *emitter) goType(ct parser.CType) (string, error) {
	if ct.FuncPtr {
		e.use("unsafe")
		return "unsafe.Pointer", nil
	}
	if len(ct.Dims) > 0 {
		n := ct.Dims[0]
		if n < 0 {
			return "", fmt.Errorf("array %s has no constant size", spell(ct))
		}
		elem, err := e.goType(ct.Elem())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d]%s", n, elem), nil
	}

	base := ct
	base.Pointers, base.IsConst = 0, false
	stars := strings.Repeat("*", ct.Pointers)

	if isBuiltinRef(base) {
		if b, ok := e.g.builtinType(base.Name); ok {
			if b.goType == "" {
				if ct.Pointers == 0 {
					return "", nil
				}
				e.use("unsafe")
				return stars[1:] + "unsafe.Pointer", nil
			}
			return stars + b.goType, nil
		}
	}

	ref, ok := e.sel.lookup(base)
	if !ok {
		return "", fmt.Errorf("undefined type %s", spell(base))
	}
	if b, ok := e.sel.inlined(ref); ok {
		return stars + b.goType, nil
	}
	t, ok := e.sel.types[ref]
	if !ok {
		if ct.Pointers == 0 {
			return "", fmt.Errorf("%s is not part of the surface", spell(base))
		}
		// Private and only reachable through pointers.
		e.use("unsafe")
		return stars[1:] + "unsafe.Pointer", nil
	}
	return stars + t.goName, nil
}

// ffiTypes returns the libffi element types for a value of type ct; arrays
// repeat their element type.
func (e *emitter) ffiTypes(ct parser.CType) ([]string, error) {
	if len(ct.Dims) > 0 {
		elem, err := e.ffiTypes(ct.Elem())
		if err != nil {
			return nil, err
		}
		var out []string
		for i := 0; i < ct.Dims[0]; i++ {
			out = append(out, elem...)
		}
		return out, nil
	}
	t, err := e.ffiType(ct)
	if err != nil {
		return nil, err
	}
	return []string{t}, nil
}

func (e *emitter) ffiType(ct parser.CType) (string, error) {
	if ct.FuncPtr || ct.Pointers > 0 {
		return "&ffi.TypePointer", nil
	}
	if len(ct.Dims) > 0 {
		return "", fmt.Errorf("array %s cannot be passed by value", spell(ct))
	}
	if isBuiltinRef(ct) {
		if b, ok := e.g.builtinType(ct.Name); ok {
			return "&" + b.ffiType, nil
		}
	}

	ref, ok := e.sel.lookup(ct)
	if !ok {
		return "", fmt.Errorf("undefined type %s", spell(ct))
	}
	if b, ok := e.sel.inlined(ref); ok {
		return "&" + b.ffiType, nil
	}
	switch {
	case ref.en != nil:
		return "&" + enumRepr(ref.en).ffiType, nil
	case ref.td != nil:
		if e.sel.isHandle(ref.td) {
			return "&ffi.TypePointer", nil
		}
		return e.ffiType(ref.td.SourceType)
	}
	t, ok := e.sel.types[ref]
	if !ok || t.kind != kindStruct {
		return "", fmt.Errorf("%s cannot be passed by value", spell(ct))
	}
	return "&FFIType" + t.goName, nil
}

// scalar resolves ct through typedefs to a builtin or enum representation.
func (e *emitter) scalar(ct parser.CType) (builtin, bool) {
	for {
		if ct.FuncPtr || ct.Pointers > 0 || len(ct.Dims) > 0 {
			return builtin{}, false
		}
		if isBuiltinRef(ct) {
			if b, ok := e.g.builtinType(ct.Name); ok {
				return b, true
			}
		}
		ref, ok := e.sel.lookup(ct)
		switch {
		case !ok:
			return builtin{}, false
		case ref.en != nil:
			return enumRepr(ref.en), true
		case ref.td != nil && !e.sel.isHandle(ref.td):
			ct = ref.td.SourceType
		default:
			return builtin{}, false
		}
	}
}

// isCString reports whether ct is a pointer to (const) char.
func isCString(ct parser.CType) bool {
	return ct.Pointers == 1 && !ct.FuncPtr && len(ct.Dims) == 0 && ct.Tag == "" && ct.Name == "char"
}
