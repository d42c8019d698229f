package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/rpi-ws281x/rpi-ws281x-go/generator"
)

type GenerateCommand struct {
	genFlags
}

func (*GenerateCommand) Name() string {
	return "generate"
}

func (*GenerateCommand) Usage() string {
	return "generate [flags]"
}

func (*GenerateCommand) Synopsis() string {
	return "regenerates the sys bindings from the native header"
}

func (cmd *GenerateCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := cmd.logger()
	ctx = log.WithContext(ctx)
	if err := cmd.execute(ctx); err != nil {
		log.Error().Err(err).Msg("generation failed")
		return exitStatus(err)
	}
	return subcommands.ExitSuccess
}

func (cmd *GenerateCommand) execute(ctx context.Context) error {
	content, err := cmd.generate(ctx)
	if err != nil {
		return err
	}
	if err := generator.WriteFile(cmd.output, content); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("output", cmd.output).Int("bytes", len(content)).Msg("bindings written")
	return nil
}
