// Package config loads glossa's configuration from a YAML file and
// GLOSSA_* environment variables.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Annotate   AnnotateConfig   `yaml:"annotate"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// DictionaryConfig says where dictionaries come from. When neither file
// path is set the persisted store is used.
type DictionaryConfig struct {
	PhrasesPath string        `yaml:"phrases_path" env:"GLOSSA_PHRASES_PATH"`
	WordsPath   string        `yaml:"words_path"   env:"GLOSSA_WORDS_PATH"`
	DBPath      string        `yaml:"db_path"      env:"GLOSSA_DB_PATH"` // empty: .glossa/glossa.db
	Watch       bool          `yaml:"watch"        env:"GLOSSA_WATCH"        env-default:"false"`
	WatchSettle time.Duration `yaml:"watch_settle" env:"GLOSSA_WATCH_SETTLE" env-default:"200ms"`
}

// FromFiles reports whether dictionaries are read from JSON files rather
// than from the store.
func (c DictionaryConfig) FromFiles() bool {
	return c.PhrasesPath != "" || c.WordsPath != ""
}

// AnnotateConfig holds scan and splice settings.
type AnnotateConfig struct {
	MaxInputBytes int    `yaml:"max_input_bytes" env:"GLOSSA_MAX_INPUT_BYTES" env-default:"1048576"`
	ClassPrefix   string `yaml:"class_prefix"    env:"GLOSSA_CLASS_PREFIX"    env-default:"glossa"`
	NestedSenses  bool   `yaml:"nested_senses"   env:"GLOSSA_NESTED_SENSES"   env-default:"false"`
	Sanitize      bool   `yaml:"sanitize"        env:"GLOSSA_SANITIZE"        env-default:"true"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"GLOSSA_SERVER_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"GLOSSA_SERVER_PORT"             env-default:"0"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"GLOSSA_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"GLOSSA_SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"GLOSSA_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"GLOSSA_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"GLOSSA_LOG_FORMAT" env-default:"text"`
}
