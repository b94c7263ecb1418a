package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
	"github.com/njchilds90/gocalc/numeric"
	"github.com/njchilds90/gocalc/symbolic"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("%q: want %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"
	logger, err := logging.New(cfg, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	logger.Warn("kept", "op", "solve")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 record, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "kept" || rec["op"] != "solve" {
		t.Errorf("want kept/solve, got %v", rec)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(config.Default(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello", "n", 2)
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "n=2") {
		t.Errorf("want text record, got %q", buf.String())
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "xml"
	if _, err := logging.New(cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatErrorAndHint(t *testing.T) {
	if got := logging.FormatError("solve", nil); got != "" {
		t.Errorf("want empty, got %q", got)
	}
	if got := logging.FormatError("", errors.New("boom")); got != "boom" {
		t.Errorf("want boom, got %q", got)
	}

	o := calc.New(symbolic.NewEngine(), numeric.NewEngine())
	_, err := o.Solve(context.Background(), "x + 1", "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if h := logging.Hint(err); !strings.Contains(h, "exactly one '='") {
		t.Errorf("want equation hint, got %q", h)
	}
	if h := logging.Hint(errors.New("plain")); h != "" {
		t.Errorf("want no hint, got %q", h)
	}
}

func TestPresentError(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer
	o := calc.New(symbolic.NewEngine(), numeric.NewEngine())
	_, err := o.Differentiate(context.Background(), "2+3", "")
	logging.PresentError(&buf, "differentiate", err)

	out := buf.String()
	if !strings.Contains(out, "differentiate: ") {
		t.Errorf("want context prefix, got %q", out)
	}
	if !strings.Contains(out, "hint: the input is a constant") {
		t.Errorf("want hint, got %q", out)
	}
}
