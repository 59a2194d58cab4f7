// Package config defines and loads the rasterloc application configuration
// from config files, environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/rasterloc/rasterloc/internal/qe"
	"github.com/rasterloc/rasterloc/internal/translator"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// SourceLanguage and TargetLanguage are BCP-47 tags.
	SourceLanguage string `mapstructure:"source_language" yaml:"source_language" json:"source_language"`
	TargetLanguage string `mapstructure:"target_language" yaml:"target_language" json:"target_language"`

	// MinWordCount is the minimum number of detected words before an asset
	// is considered localizable.
	MinWordCount int `mapstructure:"min_word_count" yaml:"min_word_count" json:"min_word_count"`

	Translator TranslatorConfig `mapstructure:"translator" yaml:"translator" json:"translator"`
	QE         QEConfig         `mapstructure:"qe" yaml:"qe" json:"qe"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output" json:"output"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
}

// TranslatorConfig selects and parameterizes the translation backend.
type TranslatorConfig struct {
	Backend    string            `mapstructure:"backend" yaml:"backend" json:"backend"`
	Model      string            `mapstructure:"model" yaml:"model" json:"model"`
	Endpoint   string            `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	APIKey     string            `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	Glossary   map[string]string `mapstructure:"glossary" yaml:"glossary" json:"glossary"`
	MaxRetries uint64            `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
}

// QEConfig parameterizes optional quality-estimation scoring.
type QEConfig struct {
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	BearerToken string        `mapstructure:"bearer_token" yaml:"bearer_token" json:"bearer_token"`
	Threshold   float64       `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// OutputConfig controls where results land.
type OutputConfig struct {
	Dir        string `mapstructure:"dir" yaml:"dir" json:"dir"`
	PackageDir string `mapstructure:"package_dir" yaml:"package_dir" json:"package_dir"`
	NoLocDir   string `mapstructure:"noloc_dir" yaml:"noloc_dir" json:"noloc_dir"`
	RunLog     string `mapstructure:"run_log" yaml:"run_log" json:"run_log"`
	// Package toggles review zip creation.
	Package bool `mapstructure:"package" yaml:"package" json:"package"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host" json:"host"`
	Port            int           `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string        `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes" json:"max_upload_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		SourceLanguage: "en-US",
		TargetLanguage: "it-IT",
		MinWordCount:   3,
		Translator: TranslatorConfig{
			Backend:    string(translator.BackendStub),
			MaxRetries: 3,
		},
		QE: QEConfig{
			Threshold: 0.7,
			Timeout:   30 * time.Second,
		},
		Output: OutputConfig{
			Dir:        "output/localized",
			PackageDir: "output/packages",
			NoLocDir:   "output/no-loc",
			RunLog:     "output/metrics.jsonl",
			Package:    true,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}

	if _, err := language.Parse(c.SourceLanguage); err != nil {
		return fmt.Errorf("invalid source language %q: %w", c.SourceLanguage, err)
	}
	if _, err := language.Parse(c.TargetLanguage); err != nil {
		return fmt.Errorf("invalid target language %q: %w", c.TargetLanguage, err)
	}
	if c.MinWordCount < 0 {
		return fmt.Errorf("min_word_count must not be negative: %d", c.MinWordCount)
	}

	switch translator.Backend(c.Translator.Backend) {
	case translator.BackendStub, translator.BackendOpenAI, "":
	default:
		return fmt.Errorf("invalid translator backend: %q", c.Translator.Backend)
	}

	if c.QE.Threshold < 0 || c.QE.Threshold > 1 {
		return fmt.Errorf("qe threshold must be in [0,1]: %v", c.QE.Threshold)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// Languages parses the configured language pair. Call Validate first.
func (c *Config) Languages() (source, target language.Tag, err error) {
	source, err = language.Parse(c.SourceLanguage)
	if err != nil {
		return language.Und, language.Und, err
	}
	target, err = language.Parse(c.TargetLanguage)
	if err != nil {
		return language.Und, language.Und, err
	}
	return source, target, nil
}

// TranslatorOptions maps the config onto translator.Config.
func (c *Config) TranslatorOptions() translator.Config {
	return translator.Config{
		Backend:    translator.Backend(c.Translator.Backend),
		Model:      c.Translator.Model,
		Endpoint:   c.Translator.Endpoint,
		APIKey:     c.Translator.APIKey,
		Glossary:   c.Translator.Glossary,
		MaxRetries: c.Translator.MaxRetries,
	}
}

// QEOptions maps the config onto qe.Config.
func (c *Config) QEOptions() qe.Config {
	return qe.Config{
		Endpoint:    c.QE.Endpoint,
		BearerToken: c.QE.BearerToken,
		Threshold:   c.QE.Threshold,
		Timeout:     c.QE.Timeout,
		MaxRetries:  2,
	}
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
