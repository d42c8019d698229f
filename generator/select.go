package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/rpi-ws281x/rpi-ws281x-go/parser"
)

type declKind int

const (
	kindStruct declKind = iota
	kindOpaque
	kindEnum
	kindAlias
	kindHandle
)

// declRef identifies a type-level declaration in the parsed header. Exactly
// one field is set.
type declRef struct {
	st *parser.Struct
	en *parser.Enum
	td *parser.TypeDef
}

func (r declRef) cName() string {
	switch {
	case r.st != nil:
		if r.st.Name != "" {
			return r.st.Name
		}
		return r.st.Tag
	case r.en != nil:
		if r.en.Name != "" {
			return r.en.Name
		}
		return r.en.Tag
	}
	return r.td.Name
}

func (r declRef) pos() int {
	switch {
	case r.st != nil:
		return r.st.Pos
	case r.en != nil:
		return r.en.Pos
	}
	return r.td.Pos
}

type selectedType struct {
	ref      declRef
	kind     declKind
	byValue  bool
	expanded bool
	goName   string
}

type selectedConst struct {
	name  string
	value parser.Const
}

// selection is the part of a header that ends up in the bindings: the
// allow-listed declarations plus every type they need.
type selection struct {
	g   *Generator
	h   *parser.Header
	log zerolog.Logger

	types  map[declRef]*selectedType
	order  []*selectedType
	funcs  []*parser.Function
	consts []selectedConst
}

func (g *Generator) selectSurface() (*selection, error) {
	s := &selection{
		g:     g,
		h:     g.header,
		log:   g.log,
		types: map[declRef]*selectedType{},
	}
	h, policy := g.header, g.policy

	var err error
	for i := range h.Functions {
		fn := &h.Functions[i]
		if !policy.Function(fn.Name) {
			continue
		}
		err = multierr.Append(err, s.addFunction(fn))
	}

	for i := range h.Structs {
		st := &h.Structs[i]
		if policy.Type(st.Name) || st.Tag != "" && policy.Type(st.Tag) {
			err = multierr.Append(err, s.include(declRef{st: st}, !st.IsOpaque, "type allow-list"))
		}
	}
	for i := range h.Enums {
		en := &h.Enums[i]
		if en.Name != "" && policy.Type(en.Name) || en.Tag != "" && policy.Type(en.Tag) {
			err = multierr.Append(err, s.include(declRef{en: en}, true, "type allow-list"))
		}
	}
	for i := range h.TypeDefs {
		td := &h.TypeDefs[i]
		if policy.Type(td.Name) {
			err = multierr.Append(err, s.include(declRef{td: td}, true, "type allow-list"))
		}
	}

	for _, m := range h.Macros {
		if !policy.Var(m.Name) {
			continue
		}
		c, cerr := h.Constant(m.Name)
		if cerr != nil {
			s.log.Debug().Str("macro", m.Name).Err(cerr).Msg("skipping macro without a constant value")
			continue
		}
		s.consts = append(s.consts, selectedConst{name: m.Name, value: c})
	}
	for i := range h.Enums {
		en := &h.Enums[i]
		for _, v := range en.Values {
			if !policy.Var(v.Name) {
				continue
			}
			if en.IsAnonymous() {
				s.consts = append(s.consts, selectedConst{name: v.Name, value: parser.Const{Kind: parser.IntConst, Int: v.Value}})
				continue
			}
			// A named enumerator brings in its whole enum.
			err = multierr.Append(err, s.include(declRef{en: en}, true, "enumerator "+v.Name))
			break
		}
	}

	if err != nil {
		return nil, err
	}

	sort.SliceStable(s.order, func(i, j int) bool {
		return s.order[i].ref.pos() < s.order[j].ref.pos()
	})
	sort.SliceStable(s.funcs, func(i, j int) bool {
		return s.funcs[i].Pos < s.funcs[j].Pos
	})
	return s, nil
}

func (s *selection) addFunction(fn *parser.Function) error {
	ctx := "function " + fn.Name
	if fn.IsVariadic {
		return fmt.Errorf("%s: variadic functions are not supported", ctx)
	}
	if err := s.need(fn.ReturnType, true, ctx+": return type"); err != nil {
		return err
	}
	for i, p := range fn.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if err := s.need(p.Type, true, fmt.Sprintf("%s: parameter %s", ctx, name)); err != nil {
			return err
		}
	}
	s.funcs = append(s.funcs, fn)
	return nil
}

// lookup resolves a non-builtin base type name.
func (s *selection) lookup(ct parser.CType) (declRef, bool) {
	switch ct.Tag {
	case "struct", "union":
		if st, ok := s.h.StructByTag(ct.Name); ok {
			return declRef{st: st}, true
		}
		return declRef{}, false
	case "enum":
		if en, ok := s.h.EnumByTag(ct.Name); ok {
			return declRef{en: en}, true
		}
		return declRef{}, false
	}
	if st, ok := s.h.StructByName(ct.Name); ok {
		return declRef{st: st}, true
	}
	if en, ok := s.h.EnumByName(ct.Name); ok {
		return declRef{en: en}, true
	}
	if td, ok := s.h.TypeDef(ct.Name); ok {
		return declRef{td: td}, true
	}
	return declRef{}, false
}

// need records that ct is used, by value unless it is a pointer.
func (s *selection) need(ct parser.CType, byValue bool, ctx string) error {
	if ct.FuncPtr {
		return nil
	}
	if ct.Pointers > 0 {
		byValue = false
	}
	base := parser.CType{Name: ct.Name, Tag: ct.Tag}
	if isBuiltinRef(base) {
		if _, ok := s.g.builtinType(base.Name); ok {
			return nil
		}
	}
	ref, ok := s.lookup(base)
	if !ok {
		return fmt.Errorf("%s: undefined type %s", ctx, spell(base))
	}
	return s.include(ref, byValue, ctx)
}

func (s *selection) include(ref declRef, byValue bool, via string) error {
	if _, ok := s.inlined(ref); ok {
		return nil
	}
	name := ref.cName()
	if strings.HasPrefix(name, "_") && !byValue {
		return nil
	}

	t, ok := s.types[ref]
	if ok {
		if !byValue || t.byValue {
			return nil
		}
		t.byValue = true
		return s.expand(t, via)
	}
	t = &selectedType{ref: ref, byValue: byValue}
	s.types[ref] = t
	s.order = append(s.order, t)
	s.log.Debug().Str("type", name).Str("via", via).Bool("by_value", byValue).Msg("including type")
	return s.expand(t, via)
}

func (s *selection) expand(t *selectedType, via string) error {
	name := t.ref.cName()
	switch {
	case t.ref.st != nil:
		st := t.ref.st
		what := "struct"
		if st.IsUnion {
			what = "union"
		}
		switch {
		case st.IsOpaque:
			t.kind = kindOpaque
			if t.byValue {
				return fmt.Errorf("%s: incomplete %s %s used by value", via, what, name)
			}
			return nil
		case st.IsUnion || hasBitField(st):
			t.kind = kindOpaque
			if t.byValue {
				return fmt.Errorf("%s: %s %s is required by value; unions and bit-fields are not supported", via, what, name)
			}
			return nil
		}
		t.kind = kindStruct
		if t.expanded {
			return nil
		}
		t.expanded = true
		for _, f := range st.Fields {
			if err := s.need(f.Type, true, fmt.Sprintf("%s %s: field %s", what, name, f.Name)); err != nil {
				return err
			}
		}
	case t.ref.en != nil:
		t.kind = kindEnum
		if t.ref.en.Err != nil {
			return fmt.Errorf("%s: %w", via, t.ref.en.Err)
		}
	case t.ref.td != nil:
		if s.isHandle(t.ref.td) {
			t.kind = kindHandle
			return nil
		}
		t.kind = kindAlias
		return s.need(t.ref.td.SourceType, t.byValue, "typedef "+name)
	}
	return nil
}

func hasBitField(st *parser.Struct) bool {
	for _, f := range st.Fields {
		if f.BitWidth != 0 {
			return true
		}
	}
	return false
}

// isHandle reports whether td is a pointer to an incomplete struct. Such
// typedefs are bound as integer handles.
func (s *selection) isHandle(td *parser.TypeDef) bool {
	ct := td.SourceType
	if ct.Pointers != 1 || ct.FuncPtr || len(ct.Dims) > 0 {
		return false
	}
	ref, ok := s.lookup(parser.CType{Name: ct.Name, Tag: ct.Tag})
	return ok && ref.st != nil && ref.st.IsOpaque
}

// inlined reports whether ref is a private typedef that resolves to a
// builtin scalar, and returns that builtin.
func (s *selection) inlined(ref declRef) (builtin, bool) {
	for depth := 0; ref.td != nil && strings.HasPrefix(ref.td.Name, "_") && depth < 32; depth++ {
		ct := ref.td.SourceType
		if ct.Pointers > 0 || ct.FuncPtr || len(ct.Dims) > 0 {
			return builtin{}, false
		}
		if isBuiltinRef(ct) {
			if b, ok := s.g.builtinType(ct.Name); ok {
				return b, true
			}
		}
		next, ok := s.lookup(ct)
		if !ok {
			return builtin{}, false
		}
		ref = next
	}
	return builtin{}, false
}
