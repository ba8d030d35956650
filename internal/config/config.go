package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PublishConfig holds the object storage settings for publishing a repo.
type PublishConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Config holds all configuration for the application.
type Config struct {
	// RepoPath is the root directory of the repo being managed.
	RepoPath string `yaml:"-"`

	// Stores are the store names to load, in routing order.
	Stores []string `yaml:"stores"`

	// TempDir is used for downloaded artifacts; generated when empty.
	TempDir string `yaml:"temp_dir"`

	// Signing settings.
	SigningKey        string `yaml:"signing_key"`
	SigningPassphrase string `yaml:"signing_passphrase"`

	// WithSources makes save populate the src tree from source rpms.
	WithSources bool `yaml:"with_sources"`

	// VerifySSL controls certificate checks on downloads.
	VerifySSL bool `yaml:"verify_ssl"`

	// DownloadRetries is the retry count for artifact downloads.
	DownloadRetries int `yaml:"download_retries"`

	// ExtraDistros are distros always present in the rpm tree.
	ExtraDistros []string `yaml:"distros"`

	// Publish configures the object storage target of the publish command.
	Publish PublishConfig `yaml:"publish"`

	// Noop makes destructive operations only report what they would do.
	Noop bool `yaml:"-"`

	// Flags holds the parsed command-line flags.
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags shared across commands.
type Flags struct {
	Verbose     bool
	Noop        bool
	ConfigPath  string
	Options     []string
	TempDir     string
	Stores      string
	Key         string
	Passphrase  string
	WithSources bool
	OnlyIfNewer bool
	KeepLatest  int
	Keep        int
	WithPatches bool
	CIConfig    string
}

// New creates a Config with defaults.
func New() *Config {
	cfg := &Config{
		VerifySSL:       true,
		DownloadRetries: DefaultDownloadRetries,
	}
	cfg.Stores = make([]string, len(DefaultStores))
	copy(cfg.Stores, DefaultStores)
	return cfg
}

// Load builds a Config from the optional YAML config file and the parsed
// flags. Flags win over the file, file wins over defaults.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags

	path := flags.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	for _, option := range flags.Options {
		if err := cfg.applyOption(option); err != nil {
			return nil, err
		}
	}

	cfg.Noop = flags.Noop
	if flags.TempDir != "" {
		cfg.TempDir = flags.TempDir
	}
	if flags.Stores != "" {
		cfg.Stores = splitList(flags.Stores)
	}
	if flags.WithSources {
		cfg.WithSources = true
	}
	if flags.Key != "" {
		cfg.SigningKey = flags.Key
		cfg.SigningPassphrase = flags.Passphrase
	}
	// A key configured without a passphrase gets prompted for one, whether it
	// came from the file, an option or a flag.
	if cfg.SigningKey != "" && cfg.SigningPassphrase == "" {
		cfg.SigningPassphrase = AskPassphrase
	}
	return cfg, nil
}

// applyOption applies one extra -o name=value override, as in the config
// file.
func (c *Config) applyOption(option string) error {
	name, value, found := strings.Cut(option, "=")
	if !found {
		return fmt.Errorf("invalid option %q, want name=value", option)
	}
	switch name {
	case "stores":
		c.Stores = splitList(value)
	case "temp_dir":
		c.TempDir = value
	case "signing_key":
		c.SigningKey = value
	case "signing_passphrase":
		c.SigningPassphrase = value
	case "with_sources":
		c.WithSources = value == "true"
	case "verify_ssl":
		c.VerifySSL = value != "false"
	case "download_retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid download_retries %q", value)
		}
		c.DownloadRetries = retries
	case "distros":
		c.ExtraDistros = splitList(value)
	case "publish.endpoint":
		c.Publish.Endpoint = value
	case "publish.bucket":
		c.Publish.Bucket = value
	case "publish.prefix":
		c.Publish.Prefix = value
	case "publish.access_key":
		c.Publish.AccessKey = value
	case "publish.secret_key":
		c.Publish.SecretKey = value
	case "publish.use_ssl":
		c.Publish.UseSSL = value == "true"
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}

// EnsureTempDir returns the configured temp dir, creating a fresh one when
// none is set. The second return value reports whether the caller owns the
// dir and should remove it.
func (c *Config) EnsureTempDir() (string, bool, error) {
	if c.TempDir != "" {
		if err := os.MkdirAll(c.TempDir, 0755); err != nil {
			return "", false, fmt.Errorf("create temp dir: %w", err)
		}
		return c.TempDir, false, nil
	}
	dir, err := os.MkdirTemp("", "repoman-")
	if err != nil {
		return "", false, fmt.Errorf("create temp dir: %w", err)
	}
	return dir, true, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
