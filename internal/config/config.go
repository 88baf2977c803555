package config

import (
	"bytes"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	KeyPageURL     = "page.url"
	KeyDownloadURL = "download.url"
	KeyCachePath   = "cache.path"
	KeyLatestPath  = "latest.path"
	KeyOutputPath  = "output.path"
	KeyTimeout     = "http.timeout"
	KeyHeaders     = "http.headers"
	KeyCookies     = "http.cookies"

	envPrefix = "APKWATCH"
)

const (
	DefaultPageURL     = "https://apkpure.com/hoyolab/com.mihoyo.hoyolab/download"
	DefaultDownloadURL = "https://d.apkpure.com/b/XAPK/com.mihoyo.hoyolab?version=latest"
	DefaultCachePath   = "cache.json"
	DefaultLatestPath  = "latest"
	DefaultOutputPath  = "hoyolab.xapk"
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/122.0.0.0 Safari/537.36"
)

// DefaultHeaders is the browser-like header set sent with every request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      DefaultUserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://apkpure.com/",
		"Connection":      "keep-alive",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
		"DNT":             "1",
	}
}

// Config is built once at startup and handed to each component. Treat it as
// read-only after Load returns.
type Config struct {
	PageURL     string
	DownloadURL string
	CachePath   string
	LatestPath  string
	OutputPath  string
	Timeout     time.Duration
	Headers     map[string]string
	Cookies     map[string]string
}

type loadSettings struct {
	configFile string
	overrides  map[string]any
}

// Option configures Load.
type Option func(*loadSettings)

// WithConfigFile merges the YAML file at path over the defaults. A missing
// file is ignored.
func WithConfigFile(path string) Option {
	return func(s *loadSettings) {
		s.configFile = path
	}
}

// WithOverride sets key after every other source, typically from a CLI flag.
func WithOverride(key string, value any) Option {
	return func(s *loadSettings) {
		if s.overrides == nil {
			s.overrides = map[string]any{}
		}
		s.overrides[key] = value
	}
}

// Load resolves configuration using the precedence:
// defaults < config file < environment variables < overrides.
func Load(opts ...Option) (*Config, error) {
	settings := loadSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, settings.configFile); err != nil {
		return nil, errors.Wrap(err, "load config file")
	}
	for k, val := range settings.overrides {
		v.Set(k, val)
	}

	cfg := &Config{
		PageURL:     strings.TrimSpace(v.GetString(KeyPageURL)),
		DownloadURL: strings.TrimSpace(v.GetString(KeyDownloadURL)),
		CachePath:   strings.TrimSpace(v.GetString(KeyCachePath)),
		LatestPath:  strings.TrimSpace(v.GetString(KeyLatestPath)),
		OutputPath:  strings.TrimSpace(v.GetString(KeyOutputPath)),
		Timeout:     v.GetDuration(KeyTimeout),
		Headers:     v.GetStringMapString(KeyHeaders),
		Cookies:     v.GetStringMapString(KeyCookies),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or invalid setting.
func (c Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{KeyPageURL, c.PageURL},
		{KeyDownloadURL, c.DownloadURL},
		{KeyCachePath, c.CachePath},
		{KeyLatestPath, c.LatestPath},
		{KeyOutputPath, c.OutputPath},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Errorf("invalid config: %s is empty", r.key)
		}
	}
	if c.Timeout <= 0 {
		return errors.Errorf("invalid config: %s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPageURL, DefaultPageURL)
	v.SetDefault(KeyDownloadURL, DefaultDownloadURL)
	v.SetDefault(KeyCachePath, DefaultCachePath)
	v.SetDefault(KeyLatestPath, DefaultLatestPath)
	v.SetDefault(KeyOutputPath, DefaultOutputPath)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyHeaders, DefaultHeaders())
	v.SetDefault(KeyCookies, map[string]string{})
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return errors.Errorf("config path %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}
