package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
fetch:
  timeout: 3s
summary:
  default_lines: 5
  default_threshold: 0.7
  default_deep: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %s", cfg.Server.Addr())
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Fetch.Timeout != 3*time.Second {
		t.Errorf("fetch timeout = %v, want 3s", cfg.Fetch.Timeout)
	}
	if cfg.Summary.DefaultLines != 5 || !cfg.Summary.DefaultDeep {
		t.Errorf("unexpected summary config: %+v", cfg.Summary)
	}
	if got := cfg.Summary.ThresholdOrDefault(); got != 0.7 {
		t.Errorf("threshold = %v, want 0.7", got)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
storage:
  database_path: "test.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_zeroThresholdKept(t *testing.T) {
	path := writeConfig(t, "summary:\n  default_threshold: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Summary.ThresholdOrDefault(); got != 0 {
		t.Errorf("threshold = %v, want explicit 0 kept", got)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative threshold", "summary:\n  default_threshold: -1\n"},
		{"negative lines", "summary:\n  default_lines: -2\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/db/articles.db"
import:
  directories: ["./dev/articles"]
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "articles.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Import.Directories) != 1 {
		t.Fatalf("import directories: got %d", len(cfg.Import.Directories))
	}
	wantDir := filepath.Join(dir, "dev", "articles")
	if cfg.Import.Directories[0] != wantDir {
		t.Errorf("import directory = %s, want %s", cfg.Import.Directories[0], wantDir)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		path string
		want string
	}{
		{"/abs/path", "/abs/path"},
		{"./rel", "/cfg/rel"},
		{".", "/cfg"},
		{"data/db", filepath.Join(home, "data/db")},
	}
	for _, tt := range tests {
		if got := expandPath(tt.path, "/cfg"); got != tt.want {
			t.Errorf("expandPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Summary.DefaultLines != 100 {
		t.Errorf("default lines: got %d", cfg.Summary.DefaultLines)
	}
	if got := cfg.Summary.ThresholdOrDefault(); got != 0.5 {
		t.Errorf("default threshold: got %v", got)
	}
	if cfg.Summary.DefaultDeep {
		t.Error("deep should default to false")
	}
	if cfg.Fetch.BaseURL != "https://en.wikipedia.org/w/api.php" {
		t.Errorf("default base url: got %s", cfg.Fetch.BaseURL)
	}
	if cfg.Fetch.Timeout != 15*time.Second {
		t.Errorf("default timeout: got %v", cfg.Fetch.Timeout)
	}
	if len(cfg.Import.Extensions) != 3 || cfg.Import.Extensions[0] != ".yaml" {
		t.Errorf("import extensions: got %v", cfg.Import.Extensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate_NaNThreshold(t *testing.T) {
	nan := math.NaN()
	cfg := &Config{Summary: SummaryConfig{DefaultThreshold: &nan}}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for NaN threshold")
	}
}

func TestApplyDefaults_ImportRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Import: ImportConfig{Directories: []string{"/tmp/articles"}}}
	ApplyDefaults(cfg)
	if cfg.Import.Recursive == nil || !*cfg.Import.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestImportConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		i := &ImportConfig{}
		if got := i.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		i := &ImportConfig{Recursive: &f}
		if got := i.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
		Fetch:   FetchConfig{Timeout: 7 * time.Second},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Fetch.Timeout != 7*time.Second {
		t.Errorf("loaded timeout: got %v", loaded.Fetch.Timeout)
	}
}
