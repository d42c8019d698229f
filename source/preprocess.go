package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/shlex"
)

// DefaultPreprocessor is used when Preprocessor.Command is empty.
const DefaultPreprocessor = "cpp"

// Preprocessor expands a C header with the system C preprocessor, keeping
// macro definitions in the output so that constants survive expansion.
type Preprocessor struct {
	// Command is the preprocessor invocation, split with shell quoting rules,
	// e.g. "cpp" or "arm-linux-gnueabihf-gcc -E".
	Command string
	// IncludeDirs are passed as -I flags, in order.
	IncludeDirs []string
	// Defines are passed as -D flags, in order.
	Defines []string

	Runner Runner
}

// Args returns the full command line used to preprocess header.
func (p *Preprocessor) Args(header string) ([]string, error) {
	command := p.Command
	if command == "" {
		command = DefaultPreprocessor
	}
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parsing preprocessor command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, errors.New("empty preprocessor command")
	}
	// -dD keeps #define lines, -P drops line markers.
	args = append(args, "-dD", "-P", "-x", "c")
	for _, d := range p.Defines {
		args = append(args, "-D"+d)
	}
	for _, dir := range p.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	return append(args, header), nil
}

// Run preprocesses header and returns the expanded translation unit.
func (p *Preprocessor) Run(ctx context.Context, header string) (string, error) {
	if _, err := os.Stat(header); err != nil {
		return "", fmt.Errorf("reading header: %w", err)
	}
	args, err := p.Args(header)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := p.Runner.Run(ctx, args, &out); err != nil {
		return "", fmt.Errorf("preprocessing %s: %w", header, err)
	}
	return out.String(), nil
}
