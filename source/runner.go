// Package source runs the external tools the generator depends on: the C
// preprocessor that expands the native header and git, which identifies the
// revision of the native checkout.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ToolError reports an external tool that could not be started or exited
// unsuccessfully.
type ToolError struct {
	Tool string
	// ExitCode is the tool's exit status, or -1 if it never ran.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Tool, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Runner runs commands as local subprocesses.
type Runner struct {
	// Dir is the working directory of the subprocesses; if unspecified, that
	// of the current process will be used.
	Dir string

	// Env is the environment of the subprocess, in the usual "KEY=value"
	// form. A nil Env inherits the current environment.
	Env []string
}

// Run runs command to completion, or until ctx is done. Output is written to
// stdout; stderr is captured into the returned *ToolError on failure.
func (r *Runner) Run(ctx context.Context, command []string, stdout io.Writer) error {
	if len(command) == 0 {
		return errors.New("empty command")
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	zerolog.Ctx(ctx).Debug().Strs("args", command).Str("dir", r.Dir).Msg("starting")
	if err := cmd.Run(); err != nil {
		te := &ToolError{Tool: command[0], ExitCode: -1, Stderr: stderr.String(), Err: err}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			te.ExitCode = ee.ExitCode()
		}
		return te
	}
	return nil
}
