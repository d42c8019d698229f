package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rpi-ws281x/rpi-ws281x-go/parser"
)

type fileModel struct {
	Provenance
	Package    string
	LibName    string
	StdImports []string
	ExtImports []string
	Consts     []constModel
	Types      []typeModel
	Funcs      []funcModel
}

type constModel struct {
	Name  string
	Type  string
	Value string
}

type fieldModel struct {
	Name string
	Type string
}

type typeModel struct {
	Kind      string
	Name      string
	Type      string
	Fields    []fieldModel
	FFIFields []string
	Consts    []constModel
	Variants  []string
}

type funcModel struct {
	CName      string
	Name       string
	VarName    string
	Params     string
	CStrings   []string
	Result     string
	ResultKind string
	FFIArgs    string
	CallArgs   string
}

// emitter renders a selection into the template model.
type emitter struct {
	g       *Generator
	sel     *selection
	imports map[string]bool
}

func (e *emitter) use(path string) { e.imports[path] = true }

func (e *emitter) build() (*fileModel, error) {
	m := &fileModel{
		Provenance: e.g.prov,
		Package:    e.g.policy.Package,
		LibName:    e.g.policy.Library,
	}
	for _, p := range []string{"fmt", "path/filepath", "runtime", "github.com/jupiterrider/ffi"} {
		e.use(p)
	}

	for _, c := range e.sel.consts {
		m.Consts = append(m.Consts, constValue(c))
	}

	reserved := []string{"Load"}
	funcNamer := newTypeNamer("", reserved...)
	funcNames := make([]string, len(e.sel.funcs))
	for i, fn := range e.sel.funcs {
		funcNames[i] = funcNamer.claim(toGoName(fn.Name))
	}
	for _, c := range e.sel.consts {
		reserved = append(reserved, c.name)
	}
	namer := newTypeNamer(e.g.policy.TrimTypeSuffix, append(reserved, funcNames...)...)
	for _, t := range e.sel.order {
		t.goName = namer.name(t.ref.cName())
	}

	for _, t := range e.sel.order {
		tm, err := e.typeModel(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.ref.cName(), err)
		}
		m.Types = append(m.Types, tm)
	}

	for i, fn := range e.sel.funcs {
		fm, err := e.funcModel(fn, funcNames[i])
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		m.Funcs = append(m.Funcs, fm)
	}

	for p := range e.imports {
		if strings.Contains(p, ".") {
			m.ExtImports = append(m.ExtImports, p)
		} else {
			m.StdImports = append(m.StdImports, p)
		}
	}
	sort.Strings(m.StdImports)
	sort.Strings(m.ExtImports)
	return m, nil
}

func constValue(c selectedConst) constModel {
	switch c.value.Kind {
	case parser.FloatConst:
		return constModel{Name: c.name, Type: "float64", Value: strconv.FormatFloat(c.value.Float, 'g', -1, 64)}
	case parser.StringConst:
		return constModel{Name: c.name, Value: strconv.Quote(c.value.Str)}
	}
	if c.value.Unsigned && c.value.Int < 0 {
		return constModel{Name: c.name, Type: "uint64", Value: strconv.FormatUint(c.value.Uint(), 10)}
	}
	return constModel{Name: c.name, Type: constType(c.value.Int), Value: strconv.FormatInt(c.value.Int, 10)}
}

func (e *emitter) typeModel(t *selectedType) (typeModel, error) {
	tm := typeModel{Name: t.goName}
	switch t.kind {
	case kindOpaque:
		tm.Kind = "opaque"
	case kindHandle:
		tm.Kind, tm.Type = "handle", "uintptr"
	case kindAlias:
		target, err := e.goType(t.ref.td.SourceType)
		if err != nil {
			return tm, err
		}
		if target == "" {
			return tm, fmt.Errorf("typedef of void")
		}
		tm.Kind, tm.Type = "alias", target
	case kindStruct:
		tm.Kind = "struct"
		st := t.ref.st
		cNames := make([]string, len(st.Fields))
		for i, f := range st.Fields {
			cNames[i] = f.Name
		}
		for i, name := range fieldNames(cNames) {
			f := st.Fields[i]
			goType, err := e.goType(f.Type)
			if err != nil {
				return tm, fmt.Errorf("field %s: %w", f.Name, err)
			}
			ffiTypes, err := e.ffiTypes(f.Type)
			if err != nil {
				return tm, fmt.Errorf("field %s: %w", f.Name, err)
			}
			tm.Fields = append(tm.Fields, fieldModel{Name: name, Type: goType})
			tm.FFIFields = append(tm.FFIFields, ffiTypes...)
		}
	case kindEnum:
		e.enumModel(&tm, t.ref.en)
	}
	return tm, nil
}

// enumModel fills in an enum. Closed enums get a defined type whose
// constants are the only valid values; enumerators repeating an earlier
// value become aliases of the first one rather than new variants.
func (e *emitter) enumModel(tm *typeModel, en *parser.Enum) {
	repr := enumRepr(en)
	tm.Type = repr.goType

	p := e.g.policy
	closed := en.Name != "" && p.ClosedEnum(en.Name) || en.Tag != "" && p.ClosedEnum(en.Tag)
	if !closed {
		tm.Kind = "open"
		for _, v := range en.Values {
			tm.Consts = append(tm.Consts, constModel{Name: v.Name, Value: strconv.FormatInt(v.Value, 10)})
		}
		return
	}

	tm.Kind = "closed"
	e.use("strconv")
	first := map[int64]string{}
	for _, v := range en.Values {
		if prev, ok := first[v.Value]; ok {
			tm.Consts = append(tm.Consts, constModel{Name: v.Name, Value: prev})
			continue
		}
		first[v.Value] = v.Name
		tm.Variants = append(tm.Variants, v.Name)
		tm.Consts = append(tm.Consts, constModel{Name: v.Name, Type: tm.Name, Value: strconv.FormatInt(v.Value, 10)})
	}
}

func (e *emitter) funcModel(fn *parser.Function, name string) (funcModel, error) {
	fm := funcModel{
		CName:   fn.Name,
		Name:    name,
		VarName: toLowerCamel(fn.Name) + "Func",
	}
	e.use("unsafe")

	retFFI, err := e.ffiType(fn.ReturnType)
	if err != nil {
		return fm, fmt.Errorf("return type: %w", err)
	}
	ffiArgs := []string{strconv.Quote(fn.Name), retFFI}
	callArgs := []string{"nil"}

	switch b, scalar := e.scalar(fn.ReturnType); {
	case scalar && b.goType == "":
	case isCString(fn.ReturnType):
		e.use("golang.org/x/sys/unix")
		fm.Result, fm.ResultKind = "string", "string"
		callArgs[0] = "unsafe.Pointer(&resultPtr)"
	default:
		ret, err := e.goType(fn.ReturnType)
		if err != nil {
			return fm, fmt.Errorf("return type: %w", err)
		}
		fm.Result, fm.ResultKind = ret, "value"
		if scalar && !b.float && b.bits <= 32 {
			fm.ResultKind = "arg"
			if b.goType == "bool" {
				fm.ResultKind = "bool"
			}
		}
		callArgs[0] = "unsafe.Pointer(&result)"
	}

	cNames := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		cNames[i] = p.Name
	}
	var params []string
	for i, pname := range paramNames(cNames) {
		ct := fn.Params[i].Type
		argFFI, err := e.ffiType(ct)
		if err != nil {
			return fm, fmt.Errorf("parameter %s: %w", pname, err)
		}
		ffiArgs = append(ffiArgs, argFFI)

		if isCString(ct) {
			e.use("golang.org/x/sys/unix")
			params = append(params, pname+" string")
			fm.CStrings = append(fm.CStrings, pname)
			callArgs = append(callArgs, "unsafe.Pointer(&"+pname+"Ptr)")
			continue
		}
		goType, err := e.goType(ct)
		if err != nil {
			return fm, fmt.Errorf("parameter %s: %w", pname, err)
		}
		params = append(params, pname+" "+goType)
		callArgs = append(callArgs, "unsafe.Pointer(&"+pname+")")
	}

	fm.Params = strings.Join(params, ", ")
	fm.FFIArgs = strings.Join(ffiArgs, ", ")
	fm.CallArgs = strings.Join(callArgs, ", ")
	return fm, nil
}
