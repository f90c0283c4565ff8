package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestExtend(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf)
	log.Extend(log.With().Str("export", "42")).Info().Msg("done")

	out := buf.String()
	if !strings.Contains(out, `"export":"42"`) || !strings.Contains(out, `"message":"done"`) {
		t.Errorf("unexpected log line %v", out)
	}
}

func TestLevel(t *testing.T) {
	defer SetGlobalLevel(InfoLevel)

	var buf bytes.Buffer
	log := NewWriter(&buf)
	SetGlobalLevel(WarnLevel)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("level is ignored: %v", out)
	}
}
