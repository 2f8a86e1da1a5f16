// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the clinic backend used when nothing else is configured.
const DefaultAPIURL = "https://backend-cristalex-dent.onrender.com/"

// Config holds all configuration values for clinicadmin.
// It is passed explicitly to every component that needs it.
type Config struct {
	APIURL    string   `mapstructure:"api_url" yaml:"api_url"`
	APIToken  string   `mapstructure:"api_token" yaml:"api_token,omitempty"`
	Timeout   int      `mapstructure:"timeout" yaml:"timeout"` // seconds
	DataDir   string   `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel  string   `mapstructure:"log_level" yaml:"log_level"`
	LogFile   string   `mapstructure:"log_file" yaml:"log_file,omitempty"`
	Locales   []string `mapstructure:"locales" yaml:"locales"`
	StripHTML bool     `mapstructure:"strip_html" yaml:"strip_html"`
	PageSize  int      `mapstructure:"page_size" yaml:"page_size"`
	Session   string   `mapstructure:"session" yaml:"session"`
}

// Default returns the configuration used when no file or env var overrides it.
func Default() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		Timeout:   30,
		DataDir:   ".clinicadmin",
		LogLevel:  "info",
		Locales:   []string{"en", "ro", "ru"},
		StripHTML: true,
		PageSize:  10,
		Session:   "default",
	}
}

// Load loads configuration with full precedence:
// CLI flags (applied by the caller) > ENV vars > .env > project config > XDG global config > defaults
func Load() (*Config, error) {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("clinicadmin")

	def := Default()
	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("api_token", "")
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("locales", def.Locales)
	v.SetDefault("strip_html", def.StripHTML)
	v.SetDefault("page_size", def.PageSize)
	v.SetDefault("session", def.Session)

	v.SetEnvPrefix("CLINICADMIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"api_url", "api_token", "timeout", "data_dir", "log_level",
		"log_file", "locales", "strip_html", "page_size", "session",
	} {
		if err := v.BindEnv(key, "CLINICADMIN_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Locales = normalizeLocales(cfg.Locales)

	return &cfg, nil
}

// Validate reports the first setting that would break the API client or wizards.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q is not an absolute URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}
	if len(c.Locales) == 0 {
		return fmt.Errorf("at least one locale is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	return nil
}

// RequestTimeout returns Timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// NATSDir is where the embedded JetStream keeps drafts and history.
func (c *Config) NATSDir() string {
	return filepath.Join(c.DataDir, "nats")
}

func normalizeLocales(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		// A single env value may carry a comma separated list.
		for _, part := range strings.Split(raw, ",") {
			loc := strings.ToLower(strings.TrimSpace(part))
			if loc == "" || seen[loc] {
				continue
			}
			seen[loc] = true
			out = append(out, loc)
		}
	}
	return out
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns ~/.config/clinicadmin/clinicadmin.yml or
// $XDG_CONFIG_HOME/clinicadmin/clinicadmin.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clinicadmin", "clinicadmin.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "clinicadmin", "clinicadmin.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "clinicadmin.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
