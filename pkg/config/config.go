package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Osu struct {
		DefaultMode       int     `yaml:"default_mode"`
		RequestsPerMinute int     `yaml:"requests_per_minute"`
		MaxAttempts       int     `yaml:"max_attempts"`
		BackoffSeconds    float64 `yaml:"backoff_seconds"`
		UserCacheSeconds  int     `yaml:"user_cache_seconds"`
		MapCacheSeconds   int     `yaml:"map_cache_seconds"`
		BestScoreCap      int     `yaml:"best_score_cap"`
	} `yaml:"osu"`
	Localization struct {
		DefaultLanguage    string            `yaml:"default_language"`
		SupportedLanguages map[string]string `yaml:"supported_languages"`
	} `yaml:"localization"`
	Storage struct {
		DataDir       string `yaml:"data_dir"`
		CopypastaFile string `yaml:"copypasta_file"`
	} `yaml:"storage"`
	Tracker struct {
		MaxSize int `yaml:"max_size"`
	} `yaml:"tracker"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"logging"`
}

// LoadConfig reads path. A missing file yields the defaults; keys absent
// from an existing file keep their defaults too.
func LoadConfig(path string) (*Config, error) {
	config := defaults()

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func defaults() *Config {
	config := &Config{}
	config.Osu.DefaultMode = 0
	config.Osu.RequestsPerMinute = 60
	config.Osu.MaxAttempts = 2
	config.Osu.BackoffSeconds = 0.5
	config.Osu.UserCacheSeconds = 60
	config.Osu.MapCacheSeconds = 3600
	config.Osu.BestScoreCap = 200
	config.Localization.DefaultLanguage = "en"
	config.Localization.SupportedLanguages = map[string]string{
		"en":    "English",
		"zh_TW": "繁體中文",
	}
	config.Storage.DataDir = "private"
	config.Storage.CopypastaFile = "copypastas.json"
	config.Tracker.MaxSize = 10000
	config.Logging.Level = "info"
	config.Logging.Format = "console"
	return config
}
