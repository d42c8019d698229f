package parser

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var exprTokenRe = regexp.MustCompile(`0[xX][0-9a-fA-F]+[uUlL]*|[0-9]+[uUlL]*|'(?:\\.|[^'\\])+'|[A-Za-z_]\w*|<<|>>|<=|>=|==|!=|&&|\|\||[-+*/%&|^~!<>?:()]`)

var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

// castWidths gives bit width and signedness for casts that truncate. Plain
// char and long depend on the data model and are resolved by castType.
var castWidths = map[string]struct {
	bits   uint
	signed bool
}{
	"signed char": {8, true}, "unsigned char": {8, false},
	"short": {16, true}, "unsigned short": {16, false},
	"int": {32, true}, "unsigned int": {32, false},
	"long long": {64, true}, "unsigned long long": {64, false},
	"int8_t": {8, true}, "uint8_t": {8, false},
	"int16_t": {16, true}, "uint16_t": {16, false},
	"int32_t": {32, true}, "uint32_t": {32, false},
	"int64_t": {64, true}, "uint64_t": {64, false},
}

// intValue is an integer constant and its C type. v holds the bit pattern,
// so an unsigned 64-bit value above math.MaxInt64 is negative here.
type intValue struct {
	v        int64
	bits     uint
	unsigned bool
}

func intOf(v int64) intValue {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return intValue{v: v, bits: 32}
	}
	return intValue{v: v, bits: 64}
}

func boolOf(b bool) intValue {
	return intValue{v: b2i(b), bits: 32}
}

// fit wraps v to the width of its type.
func (x intValue) fit() intValue {
	if x.bits >= 64 {
		return x
	}
	shift := 64 - x.bits
	if x.unsigned {
		x.v = int64(uint64(x.v) << shift >> shift)
	} else {
		x.v = x.v << shift >> shift
	}
	return x
}

// promote applies the integer promotions: narrower types become int.
func (x intValue) promote() intValue {
	if x.bits < 32 {
		return intValue{v: x.v, bits: 32}
	}
	return x
}

func (x intValue) as(bits uint, unsigned bool) intValue {
	return intValue{v: x.v, bits: bits, unsigned: unsigned}.fit()
}

// convert applies the usual arithmetic conversions to a and b.
func convert(a, b intValue) (intValue, intValue) {
	a, b = a.promote(), b.promote()
	bits := a.bits
	if b.bits > bits {
		bits = b.bits
	}
	// The wider type wins; at equal width unsigned does.
	unsigned := a.unsigned && a.bits == bits || b.unsigned && b.bits == bits
	return a.as(bits, unsigned), b.as(bits, unsigned)
}

func (x intValue) less(y intValue) bool {
	if x.unsigned {
		return uint64(x.v) < uint64(y.v)
	}
	return x.v < y.v
}

type exprParser struct {
	toks   []string
	pos    int
	model  DataModel
	lookup func(string) (intValue, error)
}

// evalIntExpr evaluates a C integer constant expression for the data model
// m, with the C rules for the type of every literal and operation.
// Identifiers are resolved through lookup.
func evalIntExpr(s string, m DataModel, lookup func(string) (intValue, error)) (intValue, error) {
	toks, err := tokenizeExpr(s)
	if err != nil {
		return intValue{}, err
	}
	if len(toks) == 0 {
		return intValue{}, errors.New("empty expression")
	}
	p := &exprParser{toks: toks, model: m, lookup: lookup}
	v, err := p.ternary()
	if err != nil {
		return intValue{}, err
	}
	if p.pos != len(p.toks) {
		return intValue{}, fmt.Errorf("unexpected %q in %q", p.toks[p.pos], s)
	}
	return v, nil
}

func tokenizeExpr(s string) ([]string, error) {
	var toks []string
	last := 0
	for _, loc := range exprTokenRe.FindAllStringIndex(s, -1) {
		if gap := strings.TrimSpace(s[last:loc[0]]); gap != "" {
			return nil, fmt.Errorf("unexpected %q in %q", gap, s)
		}
		toks = append(toks, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if gap := strings.TrimSpace(s[last:]); gap != "" {
		return nil, fmt.Errorf("unexpected %q in %q", gap, s)
	}
	return toks, nil
}

func (p *exprParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *exprParser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *exprParser) expect(tok string) error {
	if got := p.next(); got != tok {
		if got == "" {
			return fmt.Errorf("expected %q, got end of expression", tok)
		}
		return fmt.Errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *exprParser) ternary() (intValue, error) {
	cond, err := p.binary(1)
	if err != nil {
		return intValue{}, err
	}
	if p.peek() != "?" {
		return cond, nil
	}
	p.next()
	a, err := p.ternary()
	if err != nil {
		return intValue{}, err
	}
	if err := p.expect(":"); err != nil {
		return intValue{}, err
	}
	b, err := p.ternary()
	if err != nil {
		return intValue{}, err
	}
	a, b = convert(a, b)
	if cond.v != 0 {
		return a, nil
	}
	return b, nil
}

func (p *exprParser) binary(minPrec int) (intValue, error) {
	lhs, err := p.unary()
	if err != nil {
		return intValue{}, err
	}
	for {
		op := p.peek()
		prec, ok := binaryPrec[op]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		p.next()
		rhs, err := p.binary(prec + 1)
		if err != nil {
			return intValue{}, err
		}
		if lhs, err = applyBinary(op, lhs, rhs); err != nil {
			return intValue{}, err
		}
	}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func applyBinary(op string, a, b intValue) (intValue, error) {
	switch op {
	case "||":
		return boolOf(a.v != 0 || b.v != 0), nil
	case "&&":
		return boolOf(a.v != 0 && b.v != 0), nil
	case "<<", ">>":
		return shift(op, a, b)
	}

	a, b = convert(a, b)
	r := a
	switch op {
	case "==":
		return boolOf(a.v == b.v), nil
	case "!=":
		return boolOf(a.v != b.v), nil
	case "<":
		return boolOf(a.less(b)), nil
	case ">":
		return boolOf(b.less(a)), nil
	case "<=":
		return boolOf(!b.less(a)), nil
	case ">=":
		return boolOf(!a.less(b)), nil
	case "|":
		r.v = a.v | b.v
	case "^":
		r.v = a.v ^ b.v
	case "&":
		r.v = a.v & b.v
	case "+":
		r.v = a.v + b.v
	case "-":
		r.v = a.v - b.v
	case "*":
		r.v = a.v * b.v
	case "/", "%":
		if b.v == 0 {
			return intValue{}, errors.New("division by zero")
		}
		switch {
		case a.unsigned && op == "/":
			r.v = int64(uint64(a.v) / uint64(b.v))
		case a.unsigned:
			r.v = int64(uint64(a.v) % uint64(b.v))
		case op == "/":
			r.v = a.v / b.v
		default:
			r.v = a.v % b.v
		}
	default:
		return intValue{}, fmt.Errorf("unknown operator %q", op)
	}
	return r.fit(), nil
}

// shift takes the type of its promoted left operand.
func shift(op string, a, b intValue) (intValue, error) {
	a = a.promote()
	if (!b.unsigned && b.v < 0) || uint64(b.v) >= uint64(a.bits) {
		return intValue{}, fmt.Errorf("shift count %d out of range", b.v)
	}
	n := uint(b.v)
	switch {
	case op == "<<":
		a.v <<= n
	case a.unsigned:
		a.v = int64(uint64(a.v) >> n)
	default:
		a.v >>= n
	}
	return a.fit(), nil
}

func (p *exprParser) unary() (intValue, error) {
	switch tok := p.peek(); tok {
	case "-", "+", "~", "!":
		p.next()
		v, err := p.unary()
		if err != nil {
			return intValue{}, err
		}
		switch tok {
		case "!":
			return boolOf(v.v == 0), nil
		case "-":
			v = v.promote()
			v.v = -v.v
		case "~":
			v = v.promote()
			v.v = ^v.v
		}
		return v.promote().fit(), nil
	case "(":
		if typ, n, ok := p.castAt(p.pos); ok {
			p.pos += n
			v, err := p.unary()
			if err != nil {
				return intValue{}, err
			}
			return p.applyCast(typ, v), nil
		}
	}
	return p.primary()
}

// castAt reports whether a parenthesised type name starts at i, returning
// the normalised type and the number of tokens it spans.
func (p *exprParser) castAt(i int) (string, int, bool) {
	var words []string
	j := i + 1
	for ; j < len(p.toks) && p.toks[j] != ")"; j++ {
		t := p.toks[j]
		if t == "*" {
			words = append(words, t)
			continue
		}
		if !isIdent(t) {
			return "", 0, false
		}
		words = append(words, t)
	}
	if j >= len(p.toks) || len(words) == 0 || words[0] == "*" {
		return "", 0, false
	}
	if len(words) == 1 && !builtinKeywords[words[0]] {
		// A lone identifier is a cast only if it is not itself a constant.
		if _, err := p.lookup(words[0]); err == nil {
			return "", 0, false
		}
	}
	if j+1 >= len(p.toks) {
		return "", 0, false
	}
	typ := normalizeBuiltin(words)
	for _, w := range words {
		if w == "*" {
			typ = "*"
		}
	}
	switch after := p.toks[j+1]; {
	case after == "(" || after == "~" || after == "!" || after == "-" || after == "+":
	case isIdent(after) || after[0] >= '0' && after[0] <= '9' || after[0] == '\'':
	default:
		return "", 0, false
	}
	return typ, j + 1 - i, true
}

// castType resolves the width and signedness of the integer type typ.
func castType(typ string, m DataModel) (bits uint, unsigned, ok bool) {
	switch typ {
	case "char":
		return 8, !m.CharSigned, true
	case "long":
		return m.longBits(), false, true
	case "unsigned long":
		return m.longBits(), true, true
	}
	w, ok := castWidths[typ]
	return w.bits, !w.signed, ok
}

// applyCast converts v to typ. Casts to pointers and to types it does not
// know leave v as it is.
func (p *exprParser) applyCast(typ string, v intValue) intValue {
	if typ == "_Bool" {
		return intValue{v: b2i(v.v != 0), bits: 8, unsigned: true}
	}
	bits, unsigned, ok := castType(typ, p.model)
	if !ok {
		return v
	}
	return v.as(bits, unsigned)
}

func (p *exprParser) primary() (intValue, error) {
	tok := p.next()
	switch {
	case tok == "":
		return intValue{}, errors.New("unexpected end of expression")
	case tok == "(":
		v, err := p.ternary()
		if err != nil {
			return intValue{}, err
		}
		return v, p.expect(")")
	case tok[0] == '\'':
		return p.charLiteral(tok)
	case tok[0] >= '0' && tok[0] <= '9':
		return parseIntLiteral(tok, p.model)
	case tok == "sizeof":
		return intValue{}, errors.New("sizeof is not supported")
	case isIdent(tok):
		return p.lookup(tok)
	}
	return intValue{}, fmt.Errorf("unexpected %q", tok)
}

// charLiteral has type int. A single byte escape such as '\xff' takes the
// signedness of plain char.
func (p *exprParser) charLiteral(tok string) (intValue, error) {
	r, _, tail, err := strconv.UnquoteChar(tok[1:len(tok)-1], '\'')
	if err != nil || tail != "" {
		return intValue{}, fmt.Errorf("bad character constant %s", tok)
	}
	v := int64(r)
	if p.model.CharSigned && tok[1] == '\\' && v >= 0x80 && v < 0x100 {
		v = int64(int8(v))
	}
	return intValue{v: v, bits: 32}, nil
}

var intSuffixes = map[string]bool{
	"": true, "u": true, "l": true, "ul": true, "lu": true,
	"ll": true, "ull": true, "llu": true,
}

// parseIntLiteral types an integer literal the way C does: the first of
// int, long and long long that holds the value, with the unsigned variants
// also tried for hex and octal literals or a U suffix.
func parseIntLiteral(tok string, m DataModel) (intValue, error) {
	digits := strings.TrimRight(tok, "uUlL")
	suffix := strings.ToLower(tok[len(digits):])
	u, err := strconv.ParseUint(digits, 0, 64)
	if err != nil {
		return intValue{}, fmt.Errorf("bad integer constant %s", tok)
	}
	if !intSuffixes[suffix] {
		return intValue{}, fmt.Errorf("bad integer suffix in %s", tok)
	}
	unsigned := strings.Contains(suffix, "u")
	decimal := digits == "0" || digits[0] != '0'

	widths := []uint{32, m.longBits(), 64}
	for _, bits := range widths[strings.Count(suffix, "l"):] {
		if !unsigned && u <= uint64(1)<<(bits-1)-1 {
			return intValue{v: int64(u), bits: bits}, nil
		}
		if (unsigned || !decimal) && (bits == 64 || u < uint64(1)<<bits) {
			return intValue{v: int64(u), bits: bits, unsigned: true}, nil
		}
	}
	// Too large for any signed type; compilers fall back to unsigned.
	return intValue{v: int64(u), bits: 64, unsigned: true}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
