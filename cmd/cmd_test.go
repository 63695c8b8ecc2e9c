package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jdlms/fpa-forecast/internal/config"
)

const dataset = `[
	{"id": 1, "source": "tooling", "vendor": "GitHub", "properAccount": "6100", "department": "Engineering", "fyTotal": 48000, "monthly": {"2024-02": 4000}},
	{"id": 2, "source": "tooling", "vendor": "Figma", "properAccount": "6100", "department": "Design", "fyTotal": 14400, "monthly": {"2024-09": 1200}},
	{"id": 3, "source": "ps", "vendor": "Deloitte", "properAccount": "6200", "department": "Finance", "fyTotal": 120000}
]`

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"FORECAST_DATASETS", "FORECAST_TAB", "FORECAST_SORT", "FORECAST_SORT_DIRECTION", "FORECAST_GROUP", "FORECAST_VARIANT", "FORECAST_LOG_FILE", "FORECAST_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return dir
}

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestListPrintsFilteredView(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "forecast.json")
	if err := os.WriteFile(path, []byte(dataset), 0o644); err != nil {
		t.Fatal(err)
	}

	out := run(t, "", "list",
		"--dataset", path,
		"--log-file", filepath.Join(dir, "forecast.log"),
		"--style", "raw",
		"--search", "git",
	)

	if !strings.Contains(out, "# Tooling") || !strings.Contains(out, "1 item found") {
		t.Errorf("unexpected report:\n%s", out)
	}
	if !strings.Contains(out, "GitHub") || strings.Contains(out, "Figma") || strings.Contains(out, "Deloitte") {
		t.Errorf("filter not applied:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "forecast.log")); err != nil {
		t.Errorf("log file not written: %v", err)
	}
}

func TestListFailedLoadPrintsEmptyView(t *testing.T) {
	dir := isolate(t)

	out := run(t, "", "list",
		"--dataset", filepath.Join(dir, "missing.json"),
		"--log-file", filepath.Join(dir, "forecast.log"),
		"--style", "raw",
		"--search", "",
	)

	if !strings.Contains(out, "failed to load data") {
		t.Errorf("load error not reported:\n%s", out)
	}
	if !strings.Contains(out, "0 items found") || !strings.Contains(out, "_No records match the current selection._") {
		t.Errorf("expected the empty view:\n%s", out)
	}
}

func TestInitWritesDefaultConfig(t *testing.T) {
	dir := isolate(t)

	out := run(t, "", "init", "--force", "--dataset", "data/vendors.json")
	path := filepath.Join(dir, "fpa-forecast", "config.yaml")
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if len(cfg.Datasets) != 1 || cfg.Datasets[0] != "data/vendors.json" {
		t.Errorf("datasets = %v", cfg.Datasets)
	}

	// Existing config and a "no" answer leaves the file alone
	initForce = false
	out = run(t, "n\n", "init")
	if !strings.Contains(out, "cancelled") {
		t.Errorf("output = %q", out)
	}
}
