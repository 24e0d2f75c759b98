package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tmc/internal/progress"
)

func TestInitializeLoadsDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyServerURL); got != DefaultServerURL {
		t.Fatalf("expected default %s to be %q, got %q", KeyServerURL, DefaultServerURL, got)
	}
	if GetBool(KeyTestMode) {
		t.Fatalf("expected default %s to be false", KeyTestMode)
	}
	if got := GetString(KeyOutputFormat); got != "rich" {
		t.Fatalf("expected default %s to be rich, got %q", KeyOutputFormat, got)
	}
	if got := GetDuration(KeyProgressTickInterval, time.Second); got != progress.DefaultTickInterval {
		t.Fatalf("expected default tick interval %s, got %s", progress.DefaultTickInterval, got)
	}
	if got := GetDuration(KeyProgressSimulatorDelay, time.Second); got != progress.DefaultSimulatorDelay {
		t.Fatalf("expected default simulator delay %s, got %s", progress.DefaultSimulatorDelay, got)
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "course")
	exerciseDir := filepath.Join(projectDir, "part01-ex01")
	mustMkdir(t, exerciseDir)
	writeFile(t, filepath.Join(projectDir, ".tmc", "config.yaml"), `
server:
  url: https://project.example
progress:
  style: spinner
`)

	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, `
server:
  url: https://user.example
auth:
  token: user-token
progress:
  style: bar
`)

	if err := Initialize(
		WithWorkingDir(exerciseDir),
		WithUserConfig(userCfg),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyServerURL); got != "https://project.example" {
		t.Fatalf("expected project config to win for %s, got %q", KeyServerURL, got)
	}
	if got := GetString(KeyProgressStyle); got != "spinner" {
		t.Fatalf("expected project progress style, got %q", got)
	}
	if got := GetString(KeyAuthToken); got != "user-token" {
		t.Fatalf("expected user token to survive merge, got %q", got)
	}
}

func TestEnvironmentAndOverridesPrecedence(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectCfg := filepath.Join(tmp, ".tmc", "config.yaml")
	writeFile(t, projectCfg, `
test-mode: false
progress:
  tick-interval: 200ms
`)

	t.Setenv("TMC_TEST_MODE", "true")
	t.Setenv("TMC_PROGRESS_TICK_INTERVAL", "10ms")

	if err := Initialize(
		WithWorkingDir(tmp),
		WithProjectConfig(projectCfg),
		WithUserConfig(filepath.Join(tmp, "missing.yaml")),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if !GetBool(KeyTestMode) {
		t.Fatalf("expected environment variable to override %s", KeyTestMode)
	}
	if got := GetDuration(KeyProgressTickInterval, time.Second); got != 10*time.Millisecond {
		t.Fatalf("expected env override for %s, got %s", KeyProgressTickInterval, got)
	}

	if err := ApplyOverrides(map[string]any{KeyTestMode: false}); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if GetBool(KeyTestMode) {
		t.Fatalf("expected CLI override to set %s=false", KeyTestMode)
	}
}

func TestGetDurationFallsBackOnNonPositive(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if err := Set(KeySubmissionPollInterval, "0s"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if got := GetDuration(KeySubmissionPollInterval, 3*time.Second); got != 3*time.Second {
		t.Fatalf("expected fallback for zero duration, got %s", got)
	}
}

func TestHistoryPath(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	path, err := HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath returned error: %v", err)
	}
	if filepath.Base(path) != "history.db" {
		t.Fatalf("expected default history.db, got %q", path)
	}

	custom := filepath.Join(tmp, "h.db")
	if err := Set(KeyHistoryPath, custom); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if path, _ := HistoryPath(); path != custom {
		t.Fatalf("expected configured history path %q, got %q", custom, path)
	}
}

func TestProjectConfigDirectoryIsError(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	mustMkdir(t, filepath.Join(tmp, ".tmc", "config.yaml"))

	err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")))
	if err == nil {
		t.Fatal("expected error when project config path is a directory")
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
