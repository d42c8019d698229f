package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// CheckCommand fails when the committed bindings are not what generate
// would produce.
type CheckCommand struct {
	genFlags
}

func (*CheckCommand) Name() string {
	return "check"
}

func (*CheckCommand) Usage() string {
	return "check [flags]"
}

func (*CheckCommand) Synopsis() string {
	return "verifies the sys bindings are up to date"
}

func (cmd *CheckCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := cmd.logger()
	ctx = log.WithContext(ctx)
	if err := cmd.execute(ctx); err != nil {
		log.Error().Err(err).Msg("check failed")
		return exitStatus(err)
	}
	return subcommands.ExitSuccess
}

func (cmd *CheckCommand) execute(ctx context.Context) error {
	want, err := cmd.generate(ctx)
	if err != nil {
		return err
	}
	got, err := os.ReadFile(cmd.output)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s is out of date; run go generate ./sys", cmd.output)
	}
	return nil
}
