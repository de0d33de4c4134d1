package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("expected logger to be enabled")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)
	ctx := WithContext(context.Background(), log)

	ctxLog := FromContext(ctx)
	ctxLog.Info().Msg("via context")

	if !strings.Contains(buf.String(), "via context") {
		t.Errorf("expected log output from context logger, got: %s", buf.String())
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() == zerolog.Disabled {
		t.Error("expected default logger to be enabled")
	}
}

func TestWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithComponent(NewWithWriter(buf), "pipeline")

	log.Info().Msg("tagged")

	out := buf.String()
	if !strings.Contains(out, "component") || !strings.Contains(out, "pipeline") {
		t.Errorf("expected component field in output, got: %s", out)
	}
}
