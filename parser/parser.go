package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)
var defineRe = regexp.MustCompile(`^\s*#\s*define\s+([A-Za-z_]\w*)(\()?(.*)$`)
var undefRe = regexp.MustCompile(`^\s*#\s*undef\s+([A-Za-z_]\w*)`)
var attributeRe = regexp.MustCompile(`\b(?:__attribute__|__attribute|__asm__|__asm|__declspec|_Alignas)\s*\(`)
var ignoredWordRe = regexp.MustCompile(`\b(?:extern|static|inline|__inline|__inline__|__extension__|volatile|__volatile__|register|restrict|__restrict|__restrict__|_Noreturn|__thread|_Thread_local)\b`)
var constAliasRe = regexp.MustCompile(`\b__const(?:__)?\b`)
var signedAliasRe = regexp.MustCompile(`\b__signed(?:__)?\b`)
var recordHeadRe = regexp.MustCompile(`^(struct|union|enum)\s*([A-Za-z_]\w*)?\s*\{`)
var forwardDeclRe = regexp.MustCompile(`^(struct|union|enum)\s+([A-Za-z_]\w*)$`)
var funcPtrRe = regexp.MustCompile(`\(\s*\*\s*([A-Za-z_]\w*)?\s*\)\s*\(`)
var funcRe = regexp.MustCompile(`^(.*?)\b([A-Za-z_]\w*)\s*\((.*)\)$`)
var declTokenRe = regexp.MustCompile(`[A-Za-z_]\w*|\*|\[[^\]]*\]|:|[0-9]+|\S`)

var builtinKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "bool": true, "_Complex": true,
}

var tagKeywords = map[string]bool{"struct": true, "union": true, "enum": true}

// Parse parses a C header, ideally already run through the preprocessor
// with macro definitions retained. Declarations it does not model (variables,
// function definitions) are skipped; structural errors such as unbalanced
// braces fail the parse. Integer constants are evaluated for
// DefaultDataModel.
func Parse(content string) (*Header, error) {
	return ParseWithModel(content, DefaultDataModel)
}

// ParseWithModel is Parse with integer constants evaluated for the target m.
func ParseWithModel(content string, m DataModel) (*Header, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\\\n", " ")
	content = removeComments(content)

	p := &headerParser{h: newHeader(m)}
	content = p.parseDirectives(content)

	content, err := stripAttributes(content)
	if err != nil {
		return nil, err
	}
	content = constAliasRe.ReplaceAllString(content, "const")
	content = signedAliasRe.ReplaceAllString(content, "signed")
	content = ignoredWordRe.ReplaceAllString(content, " ")
	content = normalizeWhitespace(content)

	stmts, err := splitStatements(content)
	if err != nil {
		return nil, err
	}
	for _, s := range stmts {
		if err := p.parseStatement(s); err != nil {
			return nil, err
		}
	}
	p.h.index()
	return p.h, nil
}

func newHeader(m DataModel) *Header {
	return &Header{enumerators: map[string]int64{}, model: m}
}

// removeComments replaces each block comment with a space and drops line
// comments. String and character literals are copied as they are, so
// "http://host" survives.
func removeComments(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"' || s[i] == '\'':
			end := literalEnd(s, i)
			sb.WriteString(s[i : end+1])
			i = end
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				return sb.String()
			}
			sb.WriteByte(' ')
			i += end + 3
		case strings.HasPrefix(s[i:], "//"):
			end := strings.IndexByte(s[i:], '\n')
			if end == -1 {
				return sb.String()
			}
			i += end - 1
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// literalEnd is skipLiteral confined to one line: a quote left open at the
// end of the line, as in "#error don't", stands for itself.
func literalEnd(s string, i int) int {
	end := skipLiteral(s, i)
	if end == i || s[end] != s[i] || strings.IndexByte(s[i:end], '\n') != -1 {
		return i
	}
	return end
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

type headerParser struct {
	h   *Header
	pos int
}

// parseDirectives records object-like macros and removes every directive
// line from the source.
func (p *headerParser) parseDirectives(content string) string {
	lines := strings.Split(content, "\n")
	defined := map[string]int{}
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = ""
		if m := undefRe.FindStringSubmatch(line); m != nil {
			delete(defined, m[1])
			continue
		}
		m := defineRe.FindStringSubmatch(line)
		if m == nil || m[2] != "" {
			continue
		}
		macro := Macro{Name: m[1], Body: strings.TrimSpace(m[3]), Pos: len(p.h.Macros)}
		if idx, ok := defined[m[1]]; ok {
			p.h.Macros[idx] = macro
			p.h.Macros[idx].Pos = idx
			continue
		}
		defined[m[1]] = len(p.h.Macros)
		p.h.Macros = append(p.h.Macros, macro)
	}

	// Drop macros that were #undef'd and not redefined.
	kept := p.h.Macros[:0]
	for i, m := range p.h.Macros {
		if idx, ok := defined[m.Name]; ok && idx == i {
			m.Pos = len(kept)
			kept = append(kept, m)
		}
	}
	p.h.Macros = kept
	return strings.Join(lines, "\n")
}

// stripAttributes removes GNU attribute, asm label and alignment specifiers
// together with their parenthesised arguments.
func stripAttributes(s string) (string, error) {
	for {
		loc := attributeRe.FindStringIndex(s)
		if loc == nil {
			return s, nil
		}
		end, err := matchingClose(s, loc[1]-1)
		if err != nil {
			return "", err
		}
		s = s[:loc[0]] + " " + s[end+1:]
	}
}

// matchingClose returns the index of the bracket closing the one at open.
func matchingClose(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipLiteral(s, i)
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unterminated %q near %q", s[open], excerpt(s[open:]))
}

// skipLiteral returns the index of the quote closing the literal at i.
func skipLiteral(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(s) - 1
}

func excerpt(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

// splitStatements splits a translation unit into top-level declarations.
// Function definitions end at their closing brace rather than a semicolon.
func splitStatements(content string) ([]string, error) {
	var stmts []string
	depth, start, open := 0, 0, 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '"', '\'':
			i = skipLiteral(content, i)
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unexpected '}' near %q", excerpt(content[start:]))
			}
			if depth == 0 && strings.HasSuffix(strings.TrimSpace(content[start:open]), ")") {
				stmts = append(stmts, strings.TrimSpace(content[start:i+1]))
				start = i + 1
			}
		case ';':
			if depth == 0 {
				stmts = append(stmts, strings.TrimSpace(content[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unterminated '{' near %q", excerpt(content[open:]))
	}
	if rest := strings.TrimSpace(content[start:]); rest != "" {
		return nil, fmt.Errorf("unterminated declaration %q", excerpt(rest))
	}
	for _, s := range stmts {
		if err := checkParens(s); err != nil {
			return nil, err
		}
	}
	return stmts, nil
}

func checkParens(s string) error {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipLiteral(s, i)
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced ')' in %q", excerpt(s))
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced '(' in %q", excerpt(s))
	}
	return nil
}

// splitTopLevel splits s at sep where it is not nested in brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\'':
			i = skipLiteral(s, i)
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func (p *headerParser) parseStatement(s string) error {
	p.pos++
	switch {
	case s == "":
		return nil
	case strings.HasPrefix(s, "typedef "):
		return p.parseTypeDef(strings.TrimPrefix(s, "typedef "))
	case recordHeadRe.MatchString(s):
		_, err := p.parseRecord(s, "")
		return err
	case forwardDeclRe.MatchString(s):
		m := forwardDeclRe.FindStringSubmatch(s)
		if m[1] != "enum" {
			p.noteTag(m[1], m[2])
		}
		return nil
	case strings.Contains(s, "{"):
		// Function definition or initialised variable.
		return nil
	case strings.Contains(s, "("):
		return p.parseFunction(s)
	}
	return nil
}

// parseRecord parses "struct|union|enum [tag] { ... } declarators" and
// registers the definition under name (empty for a bare tagged definition).
// It returns the text following the closing brace.
func (p *headerParser) parseRecord(s, name string) (string, error) {
	m := recordHeadRe.FindStringSubmatch(s)
	open := len(m[0]) - 1
	end, err := matchingClose(s, open)
	if err != nil {
		return "", err
	}
	kind, tag, body := m[1], m[2], s[open+1:end]
	rest := strings.TrimSpace(s[end+1:])

	if kind == "enum" {
		return rest, p.parseEnum(name, tag, body)
	}

	owner := name
	if owner == "" {
		owner = tag
	}
	fields, err := p.parseStructFields(body, owner)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", kind, owner, err)
	}
	p.addStruct(Struct{
		Name:    name,
		Tag:     tag,
		Fields:  fields,
		IsUnion: kind == "union",
		Pos:     p.pos,
	})
	return rest, nil
}

func (p *headerParser) addStruct(s Struct) {
	if s.Tag != "" {
		for i := range p.h.Structs {
			prev := &p.h.Structs[i]
			if prev.Tag != s.Tag {
				continue
			}
			if prev.IsOpaque {
				s.Pos = prev.Pos
				if s.Name == "" {
					s.Name = prev.Name
				}
				*prev = s
			} else if prev.Name == "" && s.Name != "" {
				prev.Name = s.Name
			}
			return
		}
	}
	if s.Name != "" {
		for _, prev := range p.h.Structs {
			if prev.Name == s.Name {
				return
			}
		}
	}
	p.h.Structs = append(p.h.Structs, s)
}

// noteTag records an incomplete struct or union the first time its tag is
// referenced.
func (p *headerParser) noteTag(kind, tag string) {
	for _, s := range p.h.Structs {
		if s.Tag == tag {
			return
		}
	}
	p.h.Structs = append(p.h.Structs, Struct{
		Tag:      tag,
		IsOpaque: true,
		IsUnion:  kind == "union",
		Pos:      p.pos,
	})
}

func (p *headerParser) parseTypeDef(s string) error {
	if recordHeadRe.MatchString(s) {
		return p.parseTypeDefRecord(s)
	}

	if m := funcPtrRe.FindStringSubmatch(s); m != nil {
		if m[1] == "" {
			return nil
		}
		ret, err := p.parseCType(strings.TrimSpace(s[:strings.Index(s, "(")]))
		if err != nil {
			return fmt.Errorf("typedef %s: %w", m[1], err)
		}
		ret.FuncPtr = true
		p.addTypeDef(TypeDef{Name: m[1], SourceType: ret, Pos: p.pos})
		return nil
	}
	if m := funcRe.FindStringSubmatch(s); m != nil {
		// Function type; only usable through a pointer.
		ret, err := p.parseCType(strings.TrimSpace(m[1]))
		if err != nil {
			return fmt.Errorf("typedef %s: %w", m[2], err)
		}
		ret.FuncPtr = true
		p.addTypeDef(TypeDef{Name: m[2], SourceType: ret, Pos: p.pos})
		return nil
	}

	base, decls, err := p.parseDeclarators(s, false)
	if err != nil {
		return fmt.Errorf("typedef %q: %w", excerpt(s), err)
	}
	for _, d := range decls {
		if d.name == "" {
			continue
		}
		p.addTypeDef(TypeDef{Name: d.name, SourceType: p.applyDeclarator(base, d), Pos: p.pos})
	}
	return nil
}

// parseTypeDefRecord handles typedefs whose type is defined inline.
func (p *headerParser) parseTypeDefRecord(s string) error {
	m := recordHeadRe.FindStringSubmatch(s)
	open := len(m[0]) - 1
	end, err := matchingClose(s, open)
	if err != nil {
		return err
	}
	tail := strings.TrimSpace(s[end+1:])
	if tail == "" {
		return fmt.Errorf("typedef %s %s: missing name", m[1], m[2])
	}

	// The first plain declarator names the definition; the rest alias it.
	var (
		name  string
		decls []declarator
	)
	for _, part := range splitTopLevel(tail, ',') {
		d, rest, err := takeDeclarator(tokenizeDecl(part), false)
		if err != nil || len(rest) != 0 || d.name == "" {
			return fmt.Errorf("typedef %s: bad declarator %q", m[1], part)
		}
		if name == "" && d.pointers == 0 && len(d.dims) == 0 {
			name = d.name
			continue
		}
		decls = append(decls, d)
	}

	var ref CType
	switch {
	case name != "":
		if _, err := p.parseRecord(s[:end+1], name); err != nil {
			return err
		}
		ref = CType{Name: name}
	case m[2] != "":
		if _, err := p.parseRecord(s[:end+1], ""); err != nil {
			return err
		}
		ref = CType{Name: m[2], Tag: m[1]}
	default:
		// Anonymous and only reachable through pointers: name it after the
		// first pointer typedef.
		name = decls[0].name + "_pointee"
		if _, err := p.parseRecord(s[:end+1], name); err != nil {
			return err
		}
		ref = CType{Name: name}
	}
	for _, d := range decls {
		p.addTypeDef(TypeDef{Name: d.name, SourceType: p.applyDeclarator(ref, d), Pos: p.pos})
	}
	return nil
}

func (p *headerParser) addTypeDef(td TypeDef) {
	for _, prev := range p.h.TypeDefs {
		if prev.Name == td.Name {
			return
		}
	}
	p.h.TypeDefs = append(p.h.TypeDefs, td)
}

func (p *headerParser) parseStructFields(body, owner string) ([]StructField, error) {
	var fields []StructField

	for i, line := range splitTopLevel(body, ';') {
		if line == "" {
			continue
		}

		if m := recordHeadRe.FindStringSubmatch(line); m != nil {
			// Nested definition: give anonymous ones a name derived from
			// the owner so they can be emitted as separate types.
			nested := m[2]
			if nested == "" {
				nested = fmt.Sprintf("%s_anon%d", owner, i)
			}
			name := ""
			if m[2] == "" {
				name = nested
			}
			rest, err := p.parseRecord(line, name)
			if err != nil {
				return nil, err
			}
			ref := CType{Name: nested}
			if m[2] != "" {
				ref.Tag = m[1]
			}
			if rest == "" {
				fields = append(fields, StructField{Type: ref})
				continue
			}
			for _, part := range splitTopLevel(rest, ',') {
				d, left, err := takeDeclarator(tokenizeDecl(part), false)
				if err != nil || len(left) != 0 {
					return nil, fmt.Errorf("bad declarator %q", part)
				}
				fields = append(fields, p.field(ref, d))
			}
			continue
		}

		if m := funcPtrRe.FindStringSubmatch(line); m != nil {
			ret, err := p.parseCType(strings.TrimSpace(line[:strings.Index(line, "(")]))
			if err != nil {
				return nil, err
			}
			ret.FuncPtr = true
			fields = append(fields, StructField{Name: m[1], Type: ret})
			continue
		}

		base, decls, err := p.parseDeclarators(line, false)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", line, err)
		}
		for _, d := range decls {
			fields = append(fields, p.field(base, d))
		}
	}

	return fields, nil
}

func (p *headerParser) field(base CType, d declarator) StructField {
	f := StructField{Name: d.name, Type: p.applyDeclarator(base, d)}
	if d.bitWidth != "" {
		w, err := p.evalInt(d.bitWidth)
		if err != nil || w <= 0 {
			w = -1
		}
		f.BitWidth = int(w)
	}
	return f
}

func (p *headerParser) parseEnum(name, tag, body string) error {
	e := Enum{Name: name, Tag: tag, Pos: p.pos}

	next := int64(0)
	for _, part := range splitTopLevel(body, ',') {
		if part == "" {
			continue
		}
		v := EnumValue{Name: part}
		if idx := strings.Index(part, "="); idx != -1 {
			v.Name = strings.TrimSpace(part[:idx])
			v.Expr = strings.TrimSpace(part[idx+1:])
		}
		if !isIdent(v.Name) {
			return fmt.Errorf("enum %s: bad enumerator %q", e.displayName(), part)
		}
		if e.Err != nil {
			continue
		}
		value := next
		if v.Expr != "" {
			var err error
			if value, err = p.evalInt(v.Expr); err != nil {
				e.Err = fmt.Errorf("enum %s: %s: %w", e.displayName(), v.Name, err)
				continue
			}
		}
		v.Value = value
		next = value + 1
		e.Values = append(e.Values, v)
		p.h.enumerators[v.Name] = value
	}

	if e.Tag != "" {
		for i, prev := range p.h.Enums {
			if prev.Tag == e.Tag {
				if prev.Name == "" {
					p.h.Enums[i].Name = e.Name
				}
				return nil
			}
		}
	}
	p.h.Enums = append(p.h.Enums, e)
	return nil
}

func (e *Enum) displayName() string {
	switch {
	case e.Name != "":
		return e.Name
	case e.Tag != "":
		return e.Tag
	}
	return "<anonymous>"
}

func (p *headerParser) evalInt(expr string) (int64, error) {
	v, err := evalIntExpr(expr, p.h.model, p.lookupInt)
	return v.v, err
}

// lookupInt resolves identifiers in constant expressions during parsing:
// enumerators seen so far, then integer macros.
func (p *headerParser) lookupInt(name string) (intValue, error) {
	if v, ok := p.h.enumerators[name]; ok {
		return intOf(v), nil
	}
	for _, m := range p.h.Macros {
		if m.Name == name {
			c, err := p.h.evalMacro(m, map[string]bool{})
			if err != nil {
				return intValue{}, err
			}
			if c.Kind != IntConst {
				return intValue{}, fmt.Errorf("%s is not an integer constant", name)
			}
			return c.intValue(), nil
		}
	}
	return intValue{}, fmt.Errorf("undefined identifier %s", name)
}

func (p *headerParser) parseFunction(s string) error {
	m := funcRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	retStr, name, paramsStr := strings.TrimSpace(m[1]), m[2], strings.TrimSpace(m[3])
	if retStr == "" || strings.ContainsAny(retStr, "()[]=,") || builtinKeywords[name] {
		// Function pointer variable, initialiser or something we do not model.
		return nil
	}
	for _, fn := range p.h.Functions {
		if fn.Name == name {
			return nil
		}
	}

	ret, err := p.parseCType(retStr)
	if err != nil {
		return fmt.Errorf("function %s: return type: %w", name, err)
	}
	fn := Function{
		Name:       name,
		ReturnType: ret,
		Pos:        p.pos,
	}

	if paramsStr != "void" && paramsStr != "" {
		fn.Params, fn.IsVariadic, err = p.parseParams(paramsStr)
		if err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
	}

	p.h.Functions = append(p.h.Functions, fn)
	return nil
}

func (p *headerParser) parseParams(paramsStr string) ([]FunctionParam, bool, error) {
	var params []FunctionParam
	isVariadic := false

	for _, part := range splitTopLevel(paramsStr, ',') {
		if part == "" {
			continue
		}

		if part == "..." {
			isVariadic = true
			continue
		}

		if m := funcPtrRe.FindStringSubmatch(part); m != nil {
			ret, err := p.parseCType(strings.TrimSpace(part[:strings.Index(part, "(")]))
			if err != nil {
				return nil, false, err
			}
			ret.FuncPtr = true
			params = append(params, FunctionParam{Name: m[1], Type: ret})
			continue
		}

		base, decls, err := p.parseDeclarators(part, true)
		if err != nil {
			return nil, false, fmt.Errorf("parameter %q: %w", part, err)
		}
		if len(decls) != 1 {
			return nil, false, fmt.Errorf("parameter %q: bad declarator", part)
		}
		ct := p.applyDeclarator(base, decls[0])
		if len(ct.Dims) > 0 {
			// Array parameters decay to pointers.
			ct.Dims = ct.Dims[1:]
			ct.Pointers++
		}

		params = append(params, FunctionParam{
			Name: decls[0].name,
			Type: ct,
		})
	}

	return params, isVariadic, nil
}

type declarator struct {
	name     string
	pointers int
	dims     []string
	bitWidth string
}

func tokenizeDecl(s string) []string {
	return declTokenRe.FindAllString(s, -1)
}

// parseDeclarators splits "type a, *b, c[4]" into the shared base type and
// one declarator per name.
func (p *headerParser) parseDeclarators(s string, allowUnnamed bool) (CType, []declarator, error) {
	parts := splitTopLevel(s, ',')

	first, typeToks, err := takeDeclarator(tokenizeDecl(parts[0]), allowUnnamed)
	if err != nil {
		return CType{}, nil, err
	}
	base, err := p.parseCTypeTokens(typeToks)
	if err != nil {
		return CType{}, nil, err
	}

	decls := []declarator{first}
	for _, part := range parts[1:] {
		d, rest, err := takeDeclarator(tokenizeDecl(part), false)
		if err != nil {
			return CType{}, nil, err
		}
		if len(rest) != 0 {
			return CType{}, nil, fmt.Errorf("bad declarator %q", part)
		}
		decls = append(decls, d)
	}
	return base, decls, nil
}

// takeDeclarator peels the declarator off the end of toks and returns it
// with the remaining type tokens.
func takeDeclarator(toks []string, allowUnnamed bool) (declarator, []string, error) {
	var d declarator
	i := len(toks)

	if i >= 2 && toks[i-2] == ":" {
		d.bitWidth = toks[i-1]
		i -= 2
	}
	for i > 0 && strings.HasPrefix(toks[i-1], "[") {
		dim := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(toks[i-1], "["), "]"))
		d.dims = append([]string{dim}, d.dims...)
		i--
	}

	if i > 0 && isIdent(toks[i-1]) && !builtinKeywords[toks[i-1]] && toks[i-1] != "const" && !tagKeywords[toks[i-1]] {
		named := true
		if allowUnnamed {
			var typeWords []string
			for _, t := range toks[:i-1] {
				if t != "*" && t != "const" {
					typeWords = append(typeWords, t)
				}
			}
			if len(typeWords) == 0 || len(typeWords) == 1 && tagKeywords[typeWords[0]] {
				named = false
			}
		}
		if named {
			d.name = toks[i-1]
			i--
		}
	}

	for i > 0 && (toks[i-1] == "*" || toks[i-1] == "const") {
		if toks[i-1] == "*" {
			d.pointers++
		}
		i--
	}

	if d.name == "" && !allowUnnamed && d.bitWidth == "" {
		return d, nil, errors.New("missing declarator name")
	}
	return d, toks[:i], nil
}

func (p *headerParser) applyDeclarator(base CType, d declarator) CType {
	ct := base
	ct.Pointers += d.pointers
	ct.Dims = nil
	for _, dim := range d.dims {
		n := int64(0)
		if dim != "" {
			var err error
			if n, err = p.evalInt(dim); err != nil || n < 0 {
				n = -1
			}
		}
		ct.Dims = append(ct.Dims, int(n))
	}
	return ct
}

func (p *headerParser) parseCType(typeStr string) (CType, error) {
	return p.parseCTypeTokens(tokenizeDecl(typeStr))
}

func (p *headerParser) parseCTypeTokens(toks []string) (CType, error) {
	ct := CType{}

	var words []string
	for _, t := range toks {
		switch t {
		case "const":
			ct.IsConst = true
		case "*":
			ct.Pointers++
		default:
			words = append(words, t)
		}
	}
	if len(words) == 0 {
		return ct, errors.New("missing type")
	}

	if tagKeywords[words[0]] {
		if len(words) != 2 {
			return ct, fmt.Errorf("bad type %q", strings.Join(words, " "))
		}
		ct.Tag, ct.Name = words[0], words[1]
		if ct.Tag != "enum" {
			p.noteTag(ct.Tag, ct.Name)
		}
		return ct, nil
	}

	ct.Name = normalizeBuiltin(words)
	return ct, nil
}

// normalizeBuiltin returns the canonical spelling of a builtin type, or the
// words joined by spaces if they are not all builtin keywords.
func normalizeBuiltin(words []string) string {
	var (
		unsigned, signed bool
		longs            int
		base             string
		other            []string
	)
	for _, w := range words {
		switch w {
		case "const", "*":
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "long":
			longs++
		case "void", "char", "short", "int", "float", "double", "_Bool", "bool", "_Complex":
			if base == "" || base == "int" {
				base = w
			}
		default:
			other = append(other, w)
		}
	}
	if len(other) > 0 {
		return strings.Join(other, " ")
	}

	prefix := ""
	if unsigned {
		prefix = "unsigned "
	}
	switch base {
	case "char":
		if signed && !unsigned {
			return "signed char"
		}
		return prefix + "char"
	case "short":
		return prefix + "short"
	case "double":
		if longs > 0 {
			return "long double"
		}
		return "double"
	case "", "int":
		switch longs {
		case 0:
			return prefix + "int"
		case 1:
			return prefix + "long"
		default:
			return prefix + "long long"
		}
	case "bool":
		return "_Bool"
	}
	return base
}
