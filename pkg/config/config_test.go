package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, 0, config.Osu.DefaultMode)
	assert.Equal(t, 60, config.Osu.RequestsPerMinute)
	assert.Equal(t, 2, config.Osu.MaxAttempts)
	assert.Equal(t, 200, config.Osu.BestScoreCap)
	assert.Equal(t, "en", config.Localization.DefaultLanguage)
	assert.Contains(t, config.Localization.SupportedLanguages, "zh_TW")
	assert.Equal(t, "private", config.Storage.DataDir)
	assert.Equal(t, "copypastas.json", config.Storage.CopypastaFile)
	assert.Equal(t, 10000, config.Tracker.MaxSize)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
osu:
  default_mode: 3
  requests_per_minute: 30
  best_score_cap: 100
localization:
  default_language: zh_TW
storage:
  data_dir: /var/lib/osubot
logging:
  level: debug
  format: json
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, config.Osu.DefaultMode)
	assert.Equal(t, 30, config.Osu.RequestsPerMinute)
	assert.Equal(t, 100, config.Osu.BestScoreCap)
	assert.Equal(t, "zh_TW", config.Localization.DefaultLanguage)
	assert.Equal(t, "/var/lib/osubot", config.Storage.DataDir)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, 2, config.Osu.MaxAttempts)
	assert.Equal(t, 10000, config.Tracker.MaxSize)
	assert.Equal(t, "copypastas.json", config.Storage.CopypastaFile)
}

func TestLoadConfig_SupportedLanguages(t *testing.T) {
	path := writeConfig(t, `
localization:
  supported_languages:
    ja: 日本語
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "日本語", config.Localization.SupportedLanguages["ja"])
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
osu:
  default_mode: "not a number"
  broken_yaml: [ unclosed bracket
`)

	config, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, config)
}
