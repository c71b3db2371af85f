package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/serveropenmc/openmc/internal/redact"
)

// Config represents the openmc configuration.
type Config struct {
	Owner       string          `yaml:"owner"`
	Repo        string          `yaml:"repo"`
	WebsiteRepo string          `yaml:"websiteRepo"`
	Org         string          `yaml:"org"`
	Format      string          `yaml:"format"`
	GitHub      GitHubConfig    `yaml:"github"`
	Cache       CacheConfig     `yaml:"cache"`
	Changelog   ChangelogConfig `yaml:"changelog"`
	Log         LogConfig       `yaml:"log"`
	Watch       WatchConfig     `yaml:"watch"`
}

// GitHubConfig controls access to the GitHub REST API.
type GitHubConfig struct {
	APIURL  string        `yaml:"apiUrl"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
	// Coalesce shares one in-flight request between concurrent cache misses.
	Coalesce bool `yaml:"coalesce"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir,omitempty"`
	RedisURL   string `yaml:"redisUrl,omitempty"`
	SQLitePath string `yaml:"sqlitePath,omitempty"`
}

// ChangelogConfig controls release-note rendering.
type ChangelogConfig struct {
	Locale string `yaml:"locale"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WatchConfig controls `openmc watch`.
type WatchConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MetricsAddr string        `yaml:"metricsAddr,omitempty"`
}

var (
	validFormats    = []string{"text", "json", "markdown", "html"}
	validBackends   = []string{"memory", "file", "redis", "sqlite"}
	validLogFormats = []string{"text", "json"}
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Owner:       "ServerOpenMC",
		Repo:        "PluginV2",
		WebsiteRepo: "Website",
		Org:         "ServerOpenMC",
		Format:      "text",
		GitHub: GitHubConfig{
			APIURL:  "https://api.github.com",
			Timeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "file",
		},
		Changelog: ChangelogConfig{
			Locale: "en",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Interval: 5 * time.Minute,
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Owner == "" || c.Repo == "" {
		return errors.New("owner and repo must be set")
	}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(validFormats, ", "))
	}
	if !contains(validBackends, c.Cache.Backend) {
		return fmt.Errorf("invalid cache backend %q (want one of %s)", c.Cache.Backend, strings.Join(validBackends, ", "))
	}
	if !contains(validLogFormats, c.Log.Format) {
		return fmt.Errorf("invalid log format %q (want one of %s)", c.Log.Format, strings.Join(validLogFormats, ", "))
	}
	if c.GitHub.Timeout <= 0 {
		return errors.New("github timeout must be positive")
	}
	if c.Watch.Interval <= 0 {
		return errors.New("watch interval must be positive")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.GitHub.Token = redact.Token(c.GitHub.Token)
	c.Cache.RedisURL = redact.URL(c.Cache.RedisURL)
	return c
}

// ConfigDir returns the platform-appropriate config directory for openmc.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "openmc"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "openmc"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "openmc"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "openmc"), nil
	default:
		return filepath.Join(home, ".config", "openmc"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file. The file may hold a token, so
// it is only readable by the owner.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// A .env file in the working directory is read into the environment first;
// it never replaces variables that are already set.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("reading %s: %w", path, err)
}

func mergeFile(dst *Config, src Config) {
	setString(&dst.Owner, src.Owner)
	setString(&dst.Repo, src.Repo)
	setString(&dst.WebsiteRepo, src.WebsiteRepo)
	setString(&dst.Org, src.Org)
	setString(&dst.Format, src.Format)
	setString(&dst.GitHub.APIURL, src.GitHub.APIURL)
	setString(&dst.GitHub.Token, src.GitHub.Token)
	if src.GitHub.Timeout > 0 {
		dst.GitHub.Timeout = src.GitHub.Timeout
	}
	// A YAML false is indistinguishable from an absent key; the default is
	// false, so only true can change anything.
	dst.GitHub.Coalesce = src.GitHub.Coalesce || dst.GitHub.Coalesce
	setString(&dst.Cache.Backend, src.Cache.Backend)
	setString(&dst.Cache.Dir, src.Cache.Dir)
	setString(&dst.Cache.RedisURL, src.Cache.RedisURL)
	setString(&dst.Cache.SQLitePath, src.Cache.SQLitePath)
	setString(&dst.Changelog.Locale, src.Changelog.Locale)
	setString(&dst.Log.Level, src.Log.Level)
	setString(&dst.Log.Format, src.Log.Format)
	if src.Watch.Interval > 0 {
		dst.Watch.Interval = src.Watch.Interval
	}
	setString(&dst.Watch.MetricsAddr, src.Watch.MetricsAddr)
}

// envKeys maps environment variables to SetField keys.
var envKeys = []struct{ env, key string }{
	{"OPENMC_OWNER", "owner"},
	{"OPENMC_REPO", "repo"},
	{"OPENMC_WEBSITE_REPO", "websiteRepo"},
	{"OPENMC_ORG", "org"},
	{"OPENMC_FORMAT", "format"},
	{"GITHUB_API_URL", "github.apiUrl"},
	{"GITHUB_TOKEN", "github.token"},
	{"OPENMC_HTTP_TIMEOUT", "github.timeout"},
	{"OPENMC_COALESCE", "github.coalesce"},
	{"OPENMC_CACHE_BACKEND", "cache.backend"},
	{"OPENMC_CACHE_DIR", "cache.dir"},
	{"OPENMC_REDIS_URL", "cache.redisUrl"},
	{"OPENMC_SQLITE_PATH", "cache.sqlitePath"},
	{"OPENMC_LOCALE", "changelog.locale"},
	{"OPENMC_LOG_LEVEL", "log.level"},
	{"OPENMC_LOG_FORMAT", "log.format"},
	{"OPENMC_WATCH_INTERVAL", "watch.interval"},
	{"OPENMC_METRICS_ADDR", "watch.metricsAddr"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField.
func Keys() []string {
	keys := make([]string, 0, len(envKeys))
	for _, e := range envKeys {
		keys = append(keys, e.key)
	}
	return keys
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "owner":
		cfg.Owner = value
	case "repo":
		cfg.Repo = value
	case "websiteRepo":
		cfg.WebsiteRepo = value
	case "org":
		cfg.Org = value
	case "format":
		cfg.Format = value
	case "github.apiUrl":
		cfg.GitHub.APIURL = strings.TrimRight(value, "/")
	case "github.token":
		cfg.GitHub.Token = value
	case "github.timeout":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("github.timeout must be a duration: %w", err)
		}
		cfg.GitHub.Timeout = d
	case "github.coalesce":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("github.coalesce must be a boolean: %w", err)
		}
		cfg.GitHub.Coalesce = b
	case "cache.backend":
		cfg.Cache.Backend = strings.ToLower(value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.redisUrl":
		cfg.Cache.RedisURL = value
	case "cache.sqlitePath":
		cfg.Cache.SQLitePath = value
	case "changelog.locale":
		cfg.Changelog.Locale = value
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "watch.interval":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("watch.interval must be a duration: %w", err)
		}
		cfg.Watch.Interval = d
	case "watch.metricsAddr":
		cfg.Watch.MetricsAddr = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// parseDuration accepts Go durations ("90s", "5m") and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
