package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/spf13/viper"
)

// Engine backends
const (
	EngineDocker    = "docker"
	EngineDockerAPI = "docker-api"
	EnginePodman    = "podman"
)

// Config holds the devc configuration for one invocation
type Config struct {
	Home               string        `mapstructure:"home"`
	ProjectDir         string        `mapstructure:"project_dir"`
	Verbose            bool          `mapstructure:"verbose"`
	Engine             string        `mapstructure:"engine"`
	DockerBinary       string        `mapstructure:"docker_binary"`
	DevcontainerBinary string        `mapstructure:"devcontainer_binary"`
	PodmanSocket       string        `mapstructure:"podman_socket"`
	EngineTimeout      time.Duration `mapstructure:"engine_timeout"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
	LogFile            string        `mapstructure:"log_file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine:             EngineDocker,
		DockerBinary:       "docker",
		DevcontainerBinary: "devcontainer",
		LogFormat:          "text",
	}
}

// NewViper returns a viper instance wired to the devc environment variables.
// DEVC_HOME, DEVC_VERBOSE and the other DEVC_* keys use the prefix;
// PROJECT_DIR is bound without it.
func NewViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("engine", def.Engine)
	v.SetDefault("docker_binary", def.DockerBinary)
	v.SetDefault("devcontainer_binary", def.DevcontainerBinary)
	v.SetDefault("podman_socket", "")
	v.SetDefault("engine_timeout", "0s")
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("log_file", "")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("DEVC")
	v.AutomaticEnv()
	_ = v.BindEnv("home", "DEVC_HOME")
	_ = v.BindEnv("project_dir", "PROJECT_DIR")

	return v
}

// Load resolves the configuration from v. The required values come from the
// environment; $DEVC_HOME/config.yaml is merged in when it exists.
func Load(v *viper.Viper) (*Config, error) {
	home := v.GetString("home")
	if home == "" {
		return nil, devcerrors.New(devcerrors.KindConfigurationMissing,
			"environment variable DEVC_HOME is not set")
	}
	if v.GetString("project_dir") == "" {
		return nil, devcerrors.New(devcerrors.KindConfigurationMissing,
			"environment variable PROJECT_DIR is not set")
	}

	v.SetConfigFile(GetConfigPath(home))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Home = ExpandPath(home)
	cfg.ProjectDir = ExpandPath(v.GetString("project_dir"))
	cfg.LogFile = ExpandPath(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Home == "" {
		return devcerrors.New(devcerrors.KindConfigurationMissing, "devc home cannot be empty")
	}
	if c.ProjectDir == "" {
		return devcerrors.New(devcerrors.KindConfigurationMissing, "project directory cannot be empty")
	}
	switch c.Engine {
	case EngineDocker, EngineDockerAPI, EnginePodman:
	default:
		return fmt.Errorf("unknown engine %q (want %s, %s or %s)", c.Engine, EngineDocker, EngineDockerAPI, EnginePodman)
	}
	if c.Engine == EngineDocker && c.DockerBinary == "" {
		return fmt.Errorf("docker binary cannot be empty")
	}
	if c.Engine == EnginePodman && c.PodmanSocket == "" {
		return fmt.Errorf("podman_socket must be set for the podman engine")
	}
	if c.DevcontainerBinary == "" {
		return fmt.Errorf("devcontainer binary cannot be empty")
	}
	if c.EngineTimeout < 0 {
		return fmt.Errorf("engine timeout cannot be negative")
	}
	return nil
}

// EffectiveLogLevel is debug when verbose, the configured level otherwise,
// and warn when nothing is configured.
func (c *Config) EffectiveLogLevel() string {
	if c.Verbose {
		return "debug"
	}
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return "warn"
}

// GetConfigPath returns the config file path under the devc home
func GetConfigPath(home string) string {
	return filepath.Join(ExpandPath(home), "config.yaml")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
