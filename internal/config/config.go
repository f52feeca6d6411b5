// Package config loads minerpick settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`

	InputDir  string `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	DefaultProvider string `mapstructure:"default_provider" yaml:"default_provider"`

	MineruAPIURL   string        `mapstructure:"mineru_api_url" yaml:"mineru_api_url"`
	MineruAPIKey   string        `mapstructure:"mineru_api_key" yaml:"mineru_api_key"`
	MineruTimeout  time.Duration `mapstructure:"mineru_timeout" yaml:"mineru_timeout"`
	MineruLimit    float64       `mapstructure:"mineru_limit" yaml:"mineru_limit"` // requests per second, 0 is unlimited
	MineruInsecure bool          `mapstructure:"mineru_insecure" yaml:"mineru_insecure"`

	DetectorURL         string `mapstructure:"detector_url" yaml:"detector_url"`
	DetectorToken       string `mapstructure:"detector_token" yaml:"detector_token"`
	DetectorConcurrency int    `mapstructure:"detector_concurrency" yaml:"detector_concurrency"`
	DetectorAttempts    int    `mapstructure:"detector_attempts" yaml:"detector_attempts"`

	GeminiAPIKey string `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model" yaml:"gemini_model"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Host: "0.0.0.0",
		Port: 8000,

		InputDir:  "./input",
		OutputDir: "./output",
		StaticDir: "./static",

		LogLevel: "info",

		DefaultProvider: "mineru",

		MineruAPIURL:  "http://localhost:8000",
		MineruTimeout: 300 * time.Second,

		DetectorConcurrency: 4,
		DetectorAttempts:    3,

		GeminiModel: "gemini-2.5-flash",
	}
}

// Load reads cfgFile, or minerpick.yaml from the working directory or
// $HOME/.minerpick when cfgFile is empty. A missing default file is not an
// error. Environment variables prefixed with MINERPICK_ override the file.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v, Default())

	v.SetEnvPrefix("MINERPICK")
	v.AutomaticEnv()

	// the service's own variable names
	v.BindEnv("mineru_api_url", "MINERPICK_MINERU_API_URL", "MINERU_API_URL")
	v.BindEnv("mineru_api_key", "MINERPICK_MINERU_API_KEY", "MINERU_API_KEY")
	v.BindEnv("gemini_api_key", "MINERPICK_GEMINI_API_KEY", "GEMINI_API_KEY")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("minerpick")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.minerpick")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("default_provider", d.DefaultProvider)
	v.SetDefault("mineru_api_url", d.MineruAPIURL)
	v.SetDefault("mineru_api_key", d.MineruAPIKey)
	v.SetDefault("mineru_timeout", d.MineruTimeout)
	v.SetDefault("mineru_limit", d.MineruLimit)
	v.SetDefault("mineru_insecure", d.MineruInsecure)
	v.SetDefault("detector_url", d.DetectorURL)
	v.SetDefault("detector_token", d.DetectorToken)
	v.SetDefault("detector_concurrency", d.DetectorConcurrency)
	v.SetDefault("detector_attempts", d.DetectorAttempts)
	v.SetDefault("gemini_api_key", d.GeminiAPIKey)
	v.SetDefault("gemini_model", d.GeminiModel)
}

// Ensure creates the input and output directories.
func (c *Config) Ensure() error {
	for _, dir := range []string{c.InputDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Level maps log_level to a slog level. Unknown values mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# minerpick configuration
# Every key can be overridden with a MINERPICK_ environment variable,
# e.g. MINERPICK_PORT=9000. MINERU_API_URL and MINERU_API_KEY are read too.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
