package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestNewConfig tests default configuration values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("expected BatchSize %d, got %d", DefaultBatchSize, cfg.BatchSize)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("expected MaxFileSize %d, got %d", DefaultMaxFileSize, cfg.MaxFileSize)
	}
	if cfg.WatchDebounce != DefaultWatchDebounce {
		t.Errorf("expected WatchDebounce %v, got %v", DefaultWatchDebounce, cfg.WatchDebounce)
	}
	if cfg.Verbose {
		t.Error("expected Verbose to default to false")
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"/tmp/project"}
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing targets",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "negative batch size",
			mutate:  func(c *Config) { c.BatchSize = -1 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative max file size",
			mutate:  func(c *Config) { c.MaxFileSize = -1 },
			wantErr: ErrInvalidMaxFileSize,
		},
		{
			name:    "unknown fail-on level",
			mutate:  func(c *Config) { c.FailOn = "severe" },
			wantErr: ErrInvalidFailOn,
		},
		{
			name:    "valid fail-on level",
			mutate:  func(c *Config) { c.FailOn = "high" },
			wantErr: nil,
		},
		{
			name:    "uppercase fail-on level",
			mutate:  func(c *Config) { c.FailOn = "CRITICAL" },
			wantErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestXDGDirs tests the XDG path helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected data dir ending in %q, got %q", AppName, dir)
	}
	if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected config dir ending in %q, got %q", AppName, dir)
	}
}

// TestLoadConfigFile tests YAML configuration loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and projects", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, ".swiftaudit")
		content := `defaults:
  excludedDirs:
    - Generated
  rules:
    - forceunwrap
projects:
  /tmp/app:
    rules:
      - retaincycle
    layerRoots:
      features: Modules
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cf.Defaults.ExcludedDirs) != 1 || cf.Defaults.ExcludedDirs[0] != "Generated" {
			t.Errorf("unexpected defaults %v", cf.Defaults.ExcludedDirs)
		}
		if _, ok := cf.Projects["/tmp/app"]; !ok {
			t.Error("expected /tmp/app project entry")
		}
	})

	t.Run("returns ErrConfigNotFound for missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("errors on invalid YAML", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "bad.yaml")
		if err := os.WriteFile(path, []byte("defaults: [not: a: map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests configuration file resolution.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path when it exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(path, []byte("defaults: {}\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for missing explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.yaml")
		if got := FindConfigFile(path); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestGetProjectConfig tests per-root configuration merging.
func TestGetProjectConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: ProjectConfig{
			ExcludedDirs: []string{"Generated"},
			Rules:        []string{"forceunwrap"},
			LayerRoots:   map[string]string{"core": "Core"},
		},
		Projects: map[string]ProjectConfig{
			"/tmp/app": {
				ExcludedDirs: []string{"Vendor"},
				Rules:        []string{"retaincycle"},
				LayerRoots:   map[string]string{"features": "Modules"},
			},
		},
	}

	t.Run("unknown root gets defaults", func(t *testing.T) {
		t.Parallel()
		pc := cf.GetProjectConfig("/tmp/other")
		if len(pc.ExcludedDirs) != 1 || pc.ExcludedDirs[0] != "Generated" {
			t.Errorf("unexpected excluded dirs %v", pc.ExcludedDirs)
		}
		if len(pc.Rules) != 1 || pc.Rules[0] != "forceunwrap" {
			t.Errorf("unexpected rules %v", pc.Rules)
		}
	})

	t.Run("project entry merges over defaults", func(t *testing.T) {
		t.Parallel()
		pc := cf.GetProjectConfig("/tmp/app")

		// Exclusions accumulate, rules replace
		if len(pc.ExcludedDirs) != 2 {
			t.Errorf("expected 2 excluded dirs, got %v", pc.ExcludedDirs)
		}
		if len(pc.Rules) != 1 || pc.Rules[0] != "retaincycle" {
			t.Errorf("expected project rules to replace defaults, got %v", pc.Rules)
		}
		if pc.LayerRoots["core"] != "Core" || pc.LayerRoots["features"] != "Modules" {
			t.Errorf("expected merged layer roots, got %v", pc.LayerRoots)
		}
	})

	t.Run("spacing tolerance overrides defaults", func(t *testing.T) {
		t.Parallel()
		tcf := &File{
			Defaults: ProjectConfig{SpacingTolerance: 1},
			Projects: map[string]ProjectConfig{
				"/tmp/app": {SpacingTolerance: 3},
			},
		}
		if got := tcf.GetProjectConfig("/tmp/app").SpacingTolerance; got != 3 {
			t.Errorf("expected project tolerance 3, got %d", got)
		}
		if got := tcf.GetProjectConfig("/tmp/other").SpacingTolerance; got != 1 {
			t.Errorf("expected default tolerance 1, got %d", got)
		}
	})

	t.Run("nil file yields empty config", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		pc := cfg.ProjectConfig("/tmp/app")
		if len(pc.Rules) != 0 || len(pc.ExcludedDirs) != 0 {
			t.Errorf("expected empty project config, got %+v", pc)
		}
	})
}
