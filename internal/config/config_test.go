package config

import (
	"os"
	"path/filepath"
	"testing"

	"rosterlens/internal/actionplan"
	"rosterlens/internal/model"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if info.FileFound || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port || cfg.ParseMode() != model.ParseModeLenient {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile_OverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
port = 8088

[import]
default_mode = "strict"
sample_size = 5

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("ROSTERLENS_LOG_FORMAT", "console")
	t.Setenv("ROSTERLENS_DATA_DIR", "/tmp/rl")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 8088 || cfg.ParseMode() != model.ParseModeStrict || cfg.Import.SampleSize != 5 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Import.MaxUploadMB != 20 {
		t.Fatalf("unset keys should keep defaults, got %d", cfg.Import.MaxUploadMB)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" || cfg.Data.DataDir != "/tmp/rl" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[server\nport = "), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, _, err := LoadFile(bad); err == nil {
		t.Fatalf("malformed toml should fail")
	}

	mode := filepath.Join(dir, "mode.toml")
	if err := os.WriteFile(mode, []byte("[import]\ndefault_mode = \"loose\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, _, err := LoadFile(mode); err == nil {
		t.Fatalf("unknown parse mode should fail validation")
	}

	t.Setenv("ROSTERLENS_PORT", "abc")
	if _, _, err := LoadFile(filepath.Join(dir, "none.toml")); err == nil {
		t.Fatalf("non-numeric port should fail")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Import.AliasFile = "aliases.toml"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !isPortSpecifiedInToml(data) {
		t.Fatalf("saved config should carry server.port")
	}
}

func TestLoggerOptions_DevModeConsole(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Log.Format = ""
	cfg.Server.DevMode = true
	if got := cfg.LoggerOptions().Format; got != "console" {
		t.Fatalf("dev mode should default to console, got %q", got)
	}
}

func TestEnsureDataDir_Absolute(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}
	if _, err := os.Stat(UploadDir(dir)); err != nil {
		t.Fatalf("upload dir missing: %v", err)
	}
}

func TestLoadFile_ActionPlanAttach(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[actionplan]\nattach = \"first_turn\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	v := &model.ValidationResult{TotalIssues: 1}
	if actionplan.New(actionplan.WithAttachPolicy(cfg.AttachPolicy())).BuildFor(v, "why?", true) != nil {
		t.Fatalf("first_turn policy should skip follow-ups")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[actionplan]\nattach = \"sometimes\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, _, err := LoadFile(bad); err == nil {
		t.Fatalf("unknown attach policy should fail validation")
	}

	t.Setenv("ROSTERLENS_PLAN_ATTACH", "FIRST_TURN")
	cfg, _, err = LoadFile(filepath.Join(dir, "none.toml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ActionPlan.Attach != actionplan.AttachFirstTurn {
		t.Fatalf("env override not applied: %q", cfg.ActionPlan.Attach)
	}
}
