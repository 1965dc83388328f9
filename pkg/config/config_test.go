package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "hangman.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "words.txt", cfg.Words.Path)
	assert.False(t, cfg.Words.Strict)
	assert.Empty(t, cfg.Scenarios.Path)
	assert.Equal(t, 14, cfg.Report.TopN)
	assert.Equal(t, 0, cfg.Workers)
	assert.Empty(t, cfg.DB.Path)
	assert.Equal(t, 500, cfg.DB.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), `
words:
  path: "/data/five.txt"
  strict: true
scenarios:
  path: "states.yaml"
report:
  top_n: 5
workers: 3
db:
  path: "runs.db"
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/five.txt", cfg.Words.Path)
	assert.True(t, cfg.Words.Strict)
	assert.Equal(t, "states.yaml", cfg.Scenarios.Path)
	assert.Equal(t, 5, cfg.Report.TopN)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "runs.db", cfg.DB.Path)
	assert.Equal(t, 500, cfg.DB.BatchSize, "unset fields keep their defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "report:\n  top_n: 5\n")
	t.Setenv("HANGMAN_REPORT_TOP_N", "7")
	t.Setenv("HANGMAN_WORDS_PATH", "env.txt")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Report.TopN)
	assert.Equal(t, "env.txt", cfg.Words.Path)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "workers: 2\n")
	t.Setenv(EnvPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Words:  WordsConfig{Path: "words.txt"},
			Report: ReportConfig{TopN: 14},
			DB:     DBConfig{BatchSize: 500},
			Log:    LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"upper-case level", func(c *Config) { c.Log.Level = "WARN" }, false},
		{"empty words path", func(c *Config) { c.Words.Path = " " }, true},
		{"zero top", func(c *Config) { c.Report.TopN = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"zero batch", func(c *Config) { c.DB.BatchSize = 0 }, true},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "report:\n  top_n: -1\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "top_n")
}
