package generator

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// toGoName converts a snake_case C identifier to UpperCamelCase.
func toGoName(name string) string {
	if name == "" {
		return ""
	}

	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}

	return result.String()
}

func toLowerCamel(name string) string {
	goName := toGoName(name)
	if goName == "" {
		return ""
	}
	runes := []rune(goName)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// reservedParams are identifiers a wrapper body uses itself.
var reservedParams = map[string]bool{
	"result": true, "resultPtr": true, "err": true,
	"ffi": true, "unix": true, "unsafe": true, "lib": true,
}

// paramNames returns Go names for a function's parameters. Unnamed
// parameters become arg<i>; keywords and clashes get an underscore suffix.
func paramNames(cNames []string) []string {
	names := make([]string, len(cNames))
	used := map[string]bool{}
	for i, c := range cNames {
		n := toLowerCamel(c)
		if n == "" {
			n = "arg" + strconv.Itoa(i)
		}
		for token.IsKeyword(n) || reservedParams[n] || used[n] {
			n += "_"
		}
		used[n] = true
		names[i] = n
	}
	return names
}

// fieldNames returns exported Go names for struct fields. Unnamed fields
// become blank padding.
func fieldNames(cNames []string) []string {
	names := make([]string, len(cNames))
	used := map[string]bool{}
	for i, c := range cNames {
		n := toGoName(c)
		if n == "" {
			names[i] = "_"
			continue
		}
		for used[n] {
			n += "_"
		}
		used[n] = true
		names[i] = n
	}
	return names
}

// typeNamer hands out Go type names, preferring the name with the
// configured suffix trimmed and falling back to the full name on collision.
type typeNamer struct {
	suffix string
	used   map[string]bool
}

func newTypeNamer(suffix string, reserved ...string) *typeNamer {
	n := &typeNamer{suffix: suffix, used: map[string]bool{}}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

func (n *typeNamer) name(cName string) string {
	if strings.HasPrefix(cName, "_") {
		// Private names stay unexported and verbatim.
		return n.claim(cName)
	}
	if n.suffix != "" && strings.HasSuffix(cName, n.suffix) && len(cName) > len(n.suffix) {
		if trimmed := toGoName(strings.TrimSuffix(cName, n.suffix)); trimmed != "" && !n.used[trimmed] {
			n.used[trimmed] = true
			return trimmed
		}
	}
	return n.claim(toGoName(cName))
}

func (n *typeNamer) claim(name string) string {
	for n.used[name] {
		name += "_"
	}
	n.used[name] = true
	return name
}
