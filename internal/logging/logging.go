// Package logging configures the process-wide logger. Output goes to a
// human-readable console writer; when running under GitHub Actions,
// warnings and errors are additionally mirrored as workflow commands so
// they surface as annotations on the run.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a logger writing to stderr.
func Setup(verbose bool) zerolog.Logger {
	return New(os.Stderr, os.Stdout, verbose)
}

// New builds a logger writing console output to out. Workflow commands,
// when enabled by the environment, go to cmdOut (stdout, where the runner
// scans for them).
func New(out, cmdOut io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}

	logger := zerolog.New(console).Level(level).With().Timestamp().Logger()
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		logger = logger.Hook(WorkflowHook{Out: cmdOut})
	}
	return logger
}

// WorkflowHook mirrors warn and error events as GitHub Actions workflow
// commands.
type WorkflowHook struct {
	Out io.Writer
}

// Run implements zerolog.Hook.
func (h WorkflowHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if msg == "" {
		return
	}
	switch level {
	case zerolog.WarnLevel:
		fmt.Fprintf(h.Out, "::warning::%s\n", msg)
	case zerolog.ErrorLevel, zerolog.FatalLevel:
		fmt.Fprintf(h.Out, "::error::%s\n", msg)
	}
}
