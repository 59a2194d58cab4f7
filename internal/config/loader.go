package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "rasterloc"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "RASTERLOC"
)

// Loader loads configuration from files, environment variables and bound
// flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader over the global viper instance so cobra flag
// bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewIsolatedLoader returns a loader over a private viper instance, used by
// tests that must not leak state into the global one.
func NewIsolatedLoader() *Loader {
	return &Loader{v: viper.New()}
}

// GetViper exposes the underlying viper instance for flag binding and
// re-unmarshaling after flags are parsed.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// Load reads configuration from the search paths and environment, then
// validates it. A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.load("")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithFile loads configuration from an explicit file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}
	cfg, err := l.load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found: defaults and env vars apply.
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "rasterloc"))
	}
	l.v.AddConfigPath("/etc/rasterloc")
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults() {
	def := Default()

	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)
	l.v.SetDefault("source_language", def.SourceLanguage)
	l.v.SetDefault("target_language", def.TargetLanguage)
	l.v.SetDefault("min_word_count", def.MinWordCount)

	l.v.SetDefault("translator.backend", def.Translator.Backend)
	l.v.SetDefault("translator.max_retries", def.Translator.MaxRetries)

	l.v.SetDefault("qe.threshold", def.QE.Threshold)
	l.v.SetDefault("qe.timeout", def.QE.Timeout)

	l.v.SetDefault("output.dir", def.Output.Dir)
	l.v.SetDefault("output.package_dir", def.Output.PackageDir)
	l.v.SetDefault("output.noloc_dir", def.Output.NoLocDir)
	l.v.SetDefault("output.run_log", def.Output.RunLog)
	l.v.SetDefault("output.package", def.Output.Package)

	l.v.SetDefault("server.host", def.Server.Host)
	l.v.SetDefault("server.port", def.Server.Port)
	l.v.SetDefault("server.cors_origin", def.Server.CORSOrigin)
	l.v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	l.v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	l.v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	l.v.SetDefault("server.max_upload_bytes", def.Server.MaxUploadBytes)
}
