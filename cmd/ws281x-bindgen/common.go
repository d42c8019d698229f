package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/rpi-ws281x/rpi-ws281x-go/allowlist"
	"github.com/rpi-ws281x/rpi-ws281x-go/generator"
	"github.com/rpi-ws281x/rpi-ws281x-go/parser"
	"github.com/rpi-ws281x/rpi-ws281x-go/source"
)

// logOutput receives the console log of every subcommand.
var logOutput io.Writer = os.Stderr

type stringsFlag []string

func (s *stringsFlag) String() string { return strings.Join(*s, ",") }

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// genFlags are the inputs shared by generate and check.
type genFlags struct {
	config   string
	header   string
	source   string
	includes stringsFlag
	cpp      string
	output   string
	verbose  bool
}

func (g *genFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&g.config, "config", "", "allow-list YAML file; the embedded default when empty")
	f.StringVar(&g.header, "header", "rpi_ws281x/ws2811.h", "native header to bind")
	f.StringVar(&g.source, "source", "rpi_ws281x", "git checkout of the native library")
	f.Var(&g.includes, "I", "additional include directory, may be repeated")
	f.StringVar(&g.cpp, "cpp", source.DefaultPreprocessor, "C preprocessor command")
	f.StringVar(&g.output, "o", "sys/bindings.go", "generated file")
	f.BoolVar(&g.verbose, "v", false, "log debug output")
}

func (g *genFlags) logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if g.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: logOutput, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func (g *genFlags) policy() (*allowlist.Policy, error) {
	cfg := allowlist.Default()
	if g.config != "" {
		var err error
		if cfg, err = allowlist.Load(g.config); err != nil {
			return nil, err
		}
	}
	return cfg.Compile()
}

// preprocessError marks a failure of the C preprocessor, whose exit status
// becomes the command's.
type preprocessError struct{ err error }

func (e *preprocessError) Error() string { return e.err.Error() }
func (e *preprocessError) Unwrap() error { return e.err }

// generate runs the whole pipeline in memory. Nothing is written here, so a
// failure at any step leaves the output file as it was.
func (g *genFlags) generate(ctx context.Context) ([]byte, error) {
	log := zerolog.Ctx(ctx)

	policy, err := g.policy()
	if err != nil {
		return nil, fmt.Errorf("loading allow-list: %w", err)
	}

	rev, err := source.Checkout{Dir: g.source}.Revision(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("revision", rev).Msg("resolved native checkout")

	pp := source.Preprocessor{Command: g.cpp, IncludeDirs: g.includes}
	text, err := pp.Run(ctx, g.header)
	if err != nil {
		return nil, &preprocessError{err}
	}

	header, err := parser.ParseWithModel(text, generator.DataModel(policy))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", g.header, err)
	}

	gen := generator.New(header, generator.Options{
		Policy: policy,
		Provenance: generator.Provenance{
			Tool:     toolName,
			Version:  toolVersion,
			Library:  libraryName,
			Revision: rev,
		},
		Logger: *log,
	})
	return gen.Generate()
}

// exitStatus maps err to the process exit status: the preprocessor's own
// status when it ran and failed, otherwise a generic failure.
func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	var pe *preprocessError
	var te *source.ToolError
	if errors.As(err, &pe) && errors.As(pe.err, &te) && te.ExitCode > 0 {
		return subcommands.ExitStatus(te.ExitCode)
	}
	return subcommands.ExitFailure
}
