package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var stringLitRe = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
var stringsOnlyRe = regexp.MustCompile(`^(?:"(?:\\.|[^"\\])*"\s*)+$`)
var floatLitRe = regexp.MustCompile(`^(?:[0-9]*\.[0-9]+(?:[eE][-+]?[0-9]+)?|[0-9]+\.(?:[eE][-+]?[0-9]+)?|[0-9]+[eE][-+]?[0-9]+)[fFlL]?$`)

// ErrNoValue is returned for macros with an empty body.
var ErrNoValue = errors.New("macro has no value")

func (h *Header) index() {
	h.structByName = map[string]int{}
	h.structByTag = map[string]int{}
	for i, s := range h.Structs {
		if s.Name != "" {
			h.structByName[s.Name] = i
		}
		if s.Tag != "" {
			h.structByTag[s.Tag] = i
		}
	}
	h.typeDefByName = map[string]int{}
	for i, td := range h.TypeDefs {
		h.typeDefByName[td.Name] = i
	}
	h.enumByName = map[string]int{}
	h.enumByTag = map[string]int{}
	for i, e := range h.Enums {
		if e.Name != "" {
			h.enumByName[e.Name] = i
		}
		if e.Tag != "" {
			h.enumByTag[e.Tag] = i
		}
	}
	h.macroByName = map[string]int{}
	for i, m := range h.Macros {
		h.macroByName[m.Name] = i
	}
}

func (h *Header) StructByName(name string) (*Struct, bool) {
	i, ok := h.structByName[name]
	if !ok {
		return nil, false
	}
	return &h.Structs[i], true
}

func (h *Header) StructByTag(tag string) (*Struct, bool) {
	i, ok := h.structByTag[tag]
	if !ok {
		return nil, false
	}
	return &h.Structs[i], true
}

func (h *Header) TypeDef(name string) (*TypeDef, bool) {
	i, ok := h.typeDefByName[name]
	if !ok {
		return nil, false
	}
	return &h.TypeDefs[i], true
}

func (h *Header) EnumByName(name string) (*Enum, bool) {
	i, ok := h.enumByName[name]
	if !ok {
		return nil, false
	}
	return &h.Enums[i], true
}

func (h *Header) EnumByTag(tag string) (*Enum, bool) {
	i, ok := h.enumByTag[tag]
	if !ok {
		return nil, false
	}
	return &h.Enums[i], true
}

func (h *Header) Macro(name string) (*Macro, bool) {
	i, ok := h.macroByName[name]
	if !ok {
		return nil, false
	}
	return &h.Macros[i], true
}

// Enumerator returns the value of a named enumeration constant.
func (h *Header) Enumerator(name string) (int64, bool) {
	v, ok := h.enumerators[name]
	return v, ok
}

// Constant evaluates the object-like macro name. Bodies may be string
// literals (adjacent literals are concatenated), floating point literals,
// or integer constant expressions over enumerators and other macros.
func (h *Header) Constant(name string) (Const, error) {
	m, ok := h.findMacro(name)
	if !ok {
		return Const{}, fmt.Errorf("undefined macro %s", name)
	}
	return h.evalMacro(*m, map[string]bool{})
}

func (h *Header) findMacro(name string) (*Macro, bool) {
	if h.macroByName != nil {
		return h.Macro(name)
	}
	for i := range h.Macros {
		if h.Macros[i].Name == name {
			return &h.Macros[i], true
		}
	}
	return nil, false
}

func (h *Header) evalMacro(m Macro, seen map[string]bool) (Const, error) {
	if seen[m.Name] {
		return Const{}, fmt.Errorf("macro %s refers to itself", m.Name)
	}
	seen[m.Name] = true
	defer delete(seen, m.Name)

	body := strings.TrimSpace(m.Body)
	if body == "" {
		return Const{}, fmt.Errorf("%s: %w", m.Name, ErrNoValue)
	}

	if stringsOnlyRe.MatchString(body) {
		var sb strings.Builder
		for _, lit := range stringLitRe.FindAllString(body, -1) {
			s, err := strconv.Unquote(lit)
			if err != nil {
				return Const{}, fmt.Errorf("%s: bad string literal %s", m.Name, lit)
			}
			sb.WriteString(s)
		}
		return Const{Kind: StringConst, Str: sb.String()}, nil
	}

	if f, ok := parseFloatBody(body); ok {
		return Const{Kind: FloatConst, Float: f}, nil
	}

	if isIdent(body) {
		if ref, ok := h.findMacro(body); ok {
			c, err := h.evalMacro(*ref, seen)
			if err != nil {
				return Const{}, fmt.Errorf("%s: %w", m.Name, err)
			}
			return c, nil
		}
	}

	v, err := evalIntExpr(body, h.model, func(ident string) (intValue, error) {
		if v, ok := h.enumerators[ident]; ok {
			return intOf(v), nil
		}
		ref, ok := h.findMacro(ident)
		if !ok {
			return intValue{}, fmt.Errorf("undefined identifier %s", ident)
		}
		c, err := h.evalMacro(*ref, seen)
		if err != nil {
			return intValue{}, err
		}
		if c.Kind != IntConst {
			return intValue{}, fmt.Errorf("%s is not an integer constant", ident)
		}
		return c.intValue(), nil
	})
	if err != nil {
		return Const{}, fmt.Errorf("%s: %w", m.Name, err)
	}
	return Const{Kind: IntConst, Int: v.v, Bits: int(v.bits), Unsigned: v.unsigned}, nil
}

// parseFloatBody accepts an optionally negated, optionally parenthesised
// floating point literal.
func parseFloatBody(body string) (float64, bool) {
	for strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	neg := false
	if strings.HasPrefix(body, "-") {
		neg = true
		body = strings.TrimSpace(body[1:])
	}
	if !floatLitRe.MatchString(body) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimRight(body, "fFlL"), 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
