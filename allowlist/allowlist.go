// Package allowlist holds the versioned policy that decides which native
// declarations make it into the generated bindings.
package allowlist

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/token"
	"os"
	"regexp"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only configuration schema version understood.
const CurrentVersion = 1

//go:embed default.yaml
var defaultConfig []byte

// Target describes the C data model the bindings are generated for.
type Target struct {
	LongBits    int  `yaml:"long_bits"`
	PointerBits int  `yaml:"pointer_bits"`
	CharSigned  bool `yaml:"char_signed"`
}

// Config is the on-disk form of the allow-list.
type Config struct {
	Version        int      `yaml:"version"`
	Library        string   `yaml:"library"`
	Package        string   `yaml:"package"`
	Functions      []string `yaml:"functions"`
	Vars           []string `yaml:"vars"`
	Types          []string `yaml:"types"`
	ClosedEnums    []string `yaml:"closed_enums"`
	TrimTypeSuffix string   `yaml:"trim_type_suffix"`
	Target         Target   `yaml:"target"`
}

// Default returns the allow-list compiled into the binary.
func Default() *Config {
	c, err := Parse(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("embedded allow-list: %v", err))
	}
	return c
}

// Load reads a configuration file from path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML configuration. Unknown keys are rejected so that a
// misspelled class name cannot silently widen or narrow the surface.
func Parse(b []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding allow-list: %w", err)
	}
	if c.Target.LongBits == 0 {
		c.Target.LongBits = 64
	}
	if c.Target.PointerBits == 0 {
		c.Target.PointerBits = 64
	}
	return &c, nil
}

// Policy is a validated, compiled Config.
type Policy struct {
	Library        string
	Package        string
	TrimTypeSuffix string
	Target         Target

	functions   []*regexp.Regexp
	vars        []*regexp.Regexp
	types       []*regexp.Regexp
	closedEnums []*regexp.Regexp
}

// Compile validates the configuration and compiles its patterns. Every
// problem found is reported, not just the first.
func (c *Config) Compile() (*Policy, error) {
	var err error
	if c.Version != CurrentVersion {
		err = multierr.Append(err, fmt.Errorf("unsupported version %d, want %d", c.Version, CurrentVersion))
	}
	if c.Library == "" {
		err = multierr.Append(err, errors.New("library must be set"))
	}
	if !token.IsIdentifier(c.Package) {
		err = multierr.Append(err, fmt.Errorf("package %q is not a valid Go identifier", c.Package))
	}
	for _, bits := range []struct {
		name string
		v    int
	}{{"long_bits", c.Target.LongBits}, {"pointer_bits", c.Target.PointerBits}} {
		if bits.v != 32 && bits.v != 64 {
			err = multierr.Append(err, fmt.Errorf("target.%s must be 32 or 64, got %d", bits.name, bits.v))
		}
	}

	p := &Policy{
		Library:        c.Library,
		Package:        c.Package,
		TrimTypeSuffix: c.TrimTypeSuffix,
		Target:         c.Target,
	}
	var cerr error
	p.functions, cerr = compileAll("functions", c.Functions)
	err = multierr.Append(err, cerr)
	p.vars, cerr = compileAll("vars", c.Vars)
	err = multierr.Append(err, cerr)
	p.types, cerr = compileAll("types", c.Types)
	err = multierr.Append(err, cerr)
	p.closedEnums, cerr = compileAll("closed_enums", c.ClosedEnums)
	err = multierr.Append(err, cerr)

	if err != nil {
		return nil, err
	}
	return p, nil
}

func compileAll(class string, patterns []string) ([]*regexp.Regexp, error) {
	var (
		res []*regexp.Regexp
		err error
	)
	for i, pat := range patterns {
		if pat == "" {
			err = multierr.Append(err, fmt.Errorf("%s[%d]: empty pattern", class, i))
			continue
		}
		re, cerr := regexp.Compile(`^(?:` + pat + `)$`)
		if cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%s[%d]: %w", class, i, cerr))
			continue
		}
		res = append(res, re)
	}
	return res, err
}

func matchAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Function reports whether a function name is allow-listed.
func (p *Policy) Function(name string) bool { return matchAny(p.functions, name) }

// Var reports whether a constant or variable name is allow-listed.
func (p *Policy) Var(name string) bool { return matchAny(p.vars, name) }

// Type reports whether a type name is allow-listed.
func (p *Policy) Type(name string) bool { return matchAny(p.types, name) }

// ClosedEnum reports whether the enum is rendered as a closed set.
func (p *Policy) ClosedEnum(name string) bool { return matchAny(p.closedEnums, name) }
