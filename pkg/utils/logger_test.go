package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelWarn, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible warning")
	logger.Error("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("messages below the level must be suppressed")
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "visible error") {
		t.Error("messages at or above the level must be written")
	}
}

func TestDefaultLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.WithField("dataset", "jets").Info("exploding")

	out := buf.String()
	if !strings.Contains(out, "dataset=jets") {
		t.Errorf("expected attached field in output: %s", out)
	}
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("expected level tag in output: %s", out)
	}
}

func TestDefaultLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.Info("emitted %d repeats in %s", 42, "phase fill")
	if !strings.Contains(buf.String(), "emitted 42 repeats in phase fill") {
		t.Errorf("printf formatting failed: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"ERROR":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNullLogger(t *testing.T) {
	var l Logger = &NullLogger{}
	// Must be safe to call and chain without output or panics.
	l.WithField("k", "v").WithFields(map[string]interface{}{"a": 1}).Info("dropped")
}

func TestGlobalLogger(t *testing.T) {
	orig := GetGlobalLogger()
	defer SetGlobalLogger(orig)

	null := &NullLogger{}
	SetGlobalLogger(null)
	if GetGlobalLogger() != null {
		t.Error("global logger not swapped")
	}
}
