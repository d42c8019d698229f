// Package generator turns a parsed C header into a single Go file of libffi
// bindings, restricted to the declarations an allow-list selects plus the
// types they depend on.
package generator

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/rpi-ws281x/rpi-ws281x-go/allowlist"
	"github.com/rpi-ws281x/rpi-ws281x-go/parser"
)

//go:embed templates/bindings.go.tmpl
var bindingsTmpl string

var bindingsTemplate = template.Must(template.New("bindings").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(bindingsTmpl))

// Provenance identifies the tool and the native sources a file was
// generated from. It is written into the file header.
type Provenance struct {
	Tool     string
	Version  string
	Library  string
	Revision string
}

type Options struct {
	Policy     *allowlist.Policy
	Provenance Provenance
	// Logger receives debug output about the selected surface.
	Logger zerolog.Logger
}

type Generator struct {
	policy *allowlist.Policy
	prov   Provenance
	log    zerolog.Logger
	header *parser.Header
}

func New(header *parser.Header, opts Options) *Generator {
	return &Generator{
		policy: opts.Policy,
		prov:   opts.Provenance,
		log:    opts.Logger,
		header: header,
	}
}

// Generate returns the formatted bindings file. It fails without output if
// any selected declaration cannot be bound.
func (g *Generator) Generate() ([]byte, error) {
	if g.policy == nil {
		return nil, errors.New("no allow-list policy")
	}
	if g.prov.Tool == "" || g.prov.Version == "" || g.prov.Revision == "" {
		return nil, errors.New("incomplete provenance: tool, version and revision are required")
	}

	sel, err := g.selectSurface()
	if err != nil {
		return nil, fmt.Errorf("selecting declarations: %w", err)
	}
	g.log.Debug().
		Int("functions", len(sel.funcs)).
		Int("types", len(sel.order)).
		Int("constants", len(sel.consts)).
		Msg("selected surface")

	e := &emitter{g: g, sel: sel, imports: map[string]bool{}}
	model, err := e.build()
	if err != nil {
		return nil, fmt.Errorf("generating bindings: %w", err)
	}

	var buf bytes.Buffer
	if err := bindingsTemplate.Execute(&buf, model); err != nil {
		return nil, fmt.Errorf("generating bindings: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting bindings: %w", err)
	}
	return out, nil
}
