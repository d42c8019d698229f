// Command ws281x-bindgen generates package sys from the rpi_ws281x header.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

const (
	toolName    = "ws281x-bindgen"
	toolVersion = "0.3.0"
	libraryName = "rpi_ws281x"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&GenerateCommand{}, "")
	subcommands.Register(&CheckCommand{}, "")

	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := subcommands.Execute(ctx)
	stop()
	os.Exit(int(status))
}
