package ci

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"repoman/internal/config"
)

// Environment is one named, isolated CI stage: a set of env vars and an
// ordered command list.
type Environment struct {
	Name     string            `yaml:"name"`
	Env      map[string]string `yaml:"env"`
	Commands []string          `yaml:"commands"`
	// Databases asks for that many per-environment test databases to be
	// provisioned before the commands run.
	Databases int `yaml:"databases"`
}

// Config describes a CI run: which environments exist, which ones the
// default run executes, and how artifacts get built and checked.
type Config struct {
	// EnvList are the environments a default run executes, in order.
	EnvList []string `yaml:"envlist"`
	// Environments are the known environment definitions.
	Environments []Environment `yaml:"environments"`
	// BuildCommand produces the installable artifacts.
	BuildCommand string `yaml:"build_command"`
	// SmokeCommand verifies the installed artifacts work.
	SmokeCommand string `yaml:"smoke_command"`
	// ArtifactsDir is where build outputs and reports land.
	ArtifactsDir string `yaml:"artifacts_dir"`
}

// DefaultEnvList mirrors the classic default envlist; functional is defined
// but only run explicitly by check-patch.
var DefaultEnvList = []string{"unit", "lint", "docs", "venv"}

// FunctionalEnv is the environment check-patch runs after the default list.
const FunctionalEnv = "functional"

const (
	defaultBuildCommand = "./build-artifacts.sh"
	defaultSmokeCommand = "repoman -h"
	defaultArtifactsDir = config.DefaultArtifactsDir
)

// LoadConfig reads the CI config file. A missing file yields the defaults:
// environments without a definition run no commands and pass trivially.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		EnvList:      append([]string(nil), DefaultEnvList...),
		BuildCommand: defaultBuildCommand,
		SmokeCommand: defaultSmokeCommand,
		ArtifactsDir: defaultArtifactsDir,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ci config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse ci config %s: %w", path, err)
	}
	if len(cfg.EnvList) == 0 {
		cfg.EnvList = append([]string(nil), DefaultEnvList...)
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = defaultArtifactsDir
	}
	return cfg, nil
}

// Environment returns the definition for name. Undefined environments get an
// empty definition, they exist for the run but do nothing.
func (c *Config) Environment(name string) Environment {
	for _, env := range c.Environments {
		if env.Name == name {
			return env
		}
	}
	return Environment{Name: name}
}
