// Package config loads the hangman configuration from YAML and the environment.
package config

// Config is the root configuration.
type Config struct {
	Words     WordsConfig     `yaml:"words"`
	Scenarios ScenariosConfig `yaml:"scenarios"`
	Report    ReportConfig    `yaml:"report"`
	// Workers is the scenario pool size; 0 means one per CPU.
	Workers int       `yaml:"workers" env:"HANGMAN_WORKERS" env-default:"0"`
	DB      DBConfig  `yaml:"db"`
	Log     LogConfig `yaml:"log"`
}

// WordsConfig locates the word list.
type WordsConfig struct {
	Path string `yaml:"path"   env:"HANGMAN_WORDS_PATH"   env-default:"words.txt"`
	// URL is downloaded to Path when Path does not exist.
	URL    string `yaml:"url"    env:"HANGMAN_WORDS_URL"`
	Strict bool   `yaml:"strict" env:"HANGMAN_WORDS_STRICT"`
}

// ScenariosConfig locates the scenario table; empty Path uses the built-in table.
type ScenariosConfig struct {
	Path string `yaml:"path" env:"HANGMAN_SCENARIOS_PATH"`
}

// ReportConfig shapes the word ranking report.
type ReportConfig struct {
	TopN int `yaml:"top_n" env:"HANGMAN_REPORT_TOP_N" env-default:"14"`
}

// DBConfig configures the optional sqlite run log; empty Path disables it.
type DBConfig struct {
	Path      string `yaml:"path"       env:"HANGMAN_DB_PATH"`
	BatchSize int    `yaml:"batch_size" env:"HANGMAN_DB_BATCH_SIZE" env-default:"500"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level"  env:"HANGMAN_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"HANGMAN_LOG_FORMAT" env-default:"text"`
}
