// Package sign drives the external signing tool through the sign,
// notarize, and staple stages.
package sign

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/harwoodcs/lacquer/internal/metrics"
)

// Runner executes the external tool once. Implementations must block
// until the process exits.
type Runner interface {
	Run(ctx context.Context, exe string, args []string) error
}

// ExecRunner runs the tool as a child process, streaming its output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, exe string, args []string) error {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", exe, args[0], err)
	}
	return nil
}

// Pipeline runs the requested stages over a file list, strictly in
// order: every file is signed, then every file is notarized, then every
// file is stapled. The first failing invocation aborts the rest; files
// already processed are not rolled back.
type Pipeline struct {
	Tool   string // absolute path to the rcodesign executable
	Opts   Options
	Runner Runner
	Log    zerolog.Logger
}

// Run executes the configured stages for all files.
func (p *Pipeline) Run(ctx context.Context, files []string) error {
	if p.Opts.Sign {
		for _, file := range files {
			p.Log.Info().Str("file", file).Msg("signing")
			if err := p.Runner.Run(ctx, p.Tool, SignArgs(p.Opts, file)); err != nil {
				return fmt.Errorf("signing %s: %w", file, err)
			}
			metrics.FileSigned()
		}
	}

	if p.Opts.Notarize {
		for _, file := range files {
			p.Log.Info().Str("file", file).Msg("submitting for notarization")
			if err := p.Runner.Run(ctx, p.Tool, NotarizeArgs(p.Opts, file)); err != nil {
				return fmt.Errorf("notarizing %s: %w", file, err)
			}
			metrics.FileNotarized()
		}
	}

	if p.Opts.Staple {
		for _, file := range files {
			p.Log.Info().Str("file", file).Msg("stapling")
			if err := p.Runner.Run(ctx, p.Tool, StapleArgs(file)); err != nil {
				return fmt.Errorf("stapling %s: %w", file, err)
			}
			metrics.FileStapled()
		}
	}

	return nil
}
