package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/config"
)

// isolate points the config dir at a fresh temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	for _, k := range []string{
		"GOCALC_LOG_LEVEL", "GOCALC_LOG_FORMAT", "GOCALC_ADDR", "GOCALC_OPERATIONS",
		"GOCALC_LIMIT_APPROACH", "GOCALC_LIMIT_DIRECTION", "GOCALC_MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
	return base
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	isolate(t)
	c, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, config.Default()) {
		t.Errorf("want defaults, got %+v", c)
	}
	if c.Server.ReadTimeout() != 15*time.Second {
		t.Errorf("want 15s, got %s", c.Server.ReadTimeout())
	}
}

func TestSaveThenLoad(t *testing.T) {
	base := isolate(t)
	c := config.Default()
	c.LogLevel = "debug"
	c.Batch.Operations = []string{"evaluate", "solve"}
	if err := config.Save(c); err != nil {
		t.Fatal(err)
	}

	p := filepath.Join(base, "gocalc", "config.json")
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("want 0600, got %o", info.Mode().Perm())
	}

	got, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Errorf("want %+v, got %+v", c, got)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	base := isolate(t)
	dir := filepath.Join(base, "gocalc")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"log_format":"json"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.LogFormat != "json" || c.LogLevel != "info" || c.Server.Addr != ":8080" {
		t.Errorf("want json format over defaults, got %+v", c)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	base := isolate(t)
	dir := filepath.Join(base, "gocalc")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GOCALC_LOG_LEVEL", "warn")
	t.Setenv("GOCALC_ADDR", "127.0.0.1:9090")
	t.Setenv("GOCALC_OPERATIONS", "evaluate, limit ,")
	t.Setenv("GOCALC_LIMIT_DIRECTION", "right")
	t.Setenv("GOCALC_MAX_BODY_BYTES", "2048")

	c, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.LogLevel != "warn" || c.Server.Addr != "127.0.0.1:9090" || c.Server.MaxBodyBytes != 2048 {
		t.Errorf("want env overrides applied, got %+v", c)
	}
	ops, err := c.Batch.ParsedOperations()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ops, []calc.Operation{calc.OpEvaluate, calc.OpLimit}) {
		t.Errorf("want [evaluate limit], got %v", ops)
	}
	d, err := c.Batch.Direction()
	if err != nil || d != calc.FromRight {
		t.Errorf("want right, got %q (%v)", d, err)
	}
}

func TestLoad_InvalidMaxBody(t *testing.T) {
	isolate(t)
	t.Setenv("GOCALC_MAX_BODY_BYTES", "lots")
	if _, err := config.Load(); err == nil {
		t.Error("expected error for invalid GOCALC_MAX_BODY_BYTES")
	}
}

func TestBatchConfig_Invalid(t *testing.T) {
	b := config.BatchConfig{Operations: []string{"plot"}, LimitDirection: "up"}
	if _, err := b.ParsedOperations(); err == nil {
		t.Error("expected error for unknown operation")
	}
	if _, err := b.Direction(); err == nil {
		t.Error("expected error for unknown direction")
	}
}
