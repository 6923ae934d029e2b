package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWorkflowHook_Warning(t *testing.T) {
	var cmds bytes.Buffer
	logger := zerolog.New(&bytes.Buffer{}).Hook(WorkflowHook{Out: &cmds})

	logger.Warn().Msg("something looks off")

	got := cmds.String()
	if got != "::warning::something looks off\n" {
		t.Errorf("workflow output = %q, want warning command", got)
	}
}

func TestWorkflowHook_Error(t *testing.T) {
	var cmds bytes.Buffer
	logger := zerolog.New(&bytes.Buffer{}).Hook(WorkflowHook{Out: &cmds})

	logger.Error().Msg("it broke")

	if !strings.HasPrefix(cmds.String(), "::error::") {
		t.Errorf("workflow output = %q, want error command", cmds.String())
	}
}

func TestWorkflowHook_InfoNotMirrored(t *testing.T) {
	var cmds bytes.Buffer
	logger := zerolog.New(&bytes.Buffer{}).Hook(WorkflowHook{Out: &cmds})

	logger.Info().Msg("routine progress")

	if cmds.Len() != 0 {
		t.Errorf("workflow output = %q, want none for info level", cmds.String())
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var out bytes.Buffer
	logger := New(&out, &bytes.Buffer{}, true)

	logger.Debug().Msg("debug detail")

	if !strings.Contains(out.String(), "debug detail") {
		t.Errorf("debug output missing: %q", out.String())
	}
}

func TestNew_QuietSuppressesDebug(t *testing.T) {
	var out bytes.Buffer
	logger := New(&out, &bytes.Buffer{}, false)

	logger.Debug().Msg("debug detail")

	if strings.Contains(out.String(), "debug detail") {
		t.Errorf("debug output present at info level: %q", out.String())
	}
}
