package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, home, project string) {
	t.Helper()
	t.Setenv("DEVC_HOME", home)
	t.Setenv("PROJECT_DIR", project)
	t.Setenv("DEVC_VERBOSE", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, EngineDocker, cfg.Engine)
	assert.Equal(t, "docker", cfg.DockerBinary)
	assert.Equal(t, "devcontainer", cfg.DevcontainerBinary)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.EngineTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	home := t.TempDir()
	setEnv(t, home, "/work/myproject")
	t.Setenv("DEVC_VERBOSE", "true")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, "/work/myproject", cfg.ProjectDir)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, EngineDocker, cfg.Engine)
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		home    string
		project string
		errMsg  string
	}{
		{name: "missing home", home: "", project: "/work/p", errMsg: "DEVC_HOME"},
		{name: "missing project dir", home: "/tmp/devc", project: "", errMsg: "PROJECT_DIR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.home, tt.project)

			_, err := Load(NewViper())
			require.Error(t, err)
			assert.ErrorIs(t, err, devcerrors.ErrConfigurationMissing)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		check         func(t *testing.T, cfg *Config)
		wantErr       bool
	}{
		{
			name: "engine and binaries",
			configContent: `
engine: docker-api
devcontainer_binary: /opt/bin/devcontainer
engine_timeout: 30s
log_format: json
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, EngineDockerAPI, cfg.Engine)
				assert.Equal(t, "/opt/bin/devcontainer", cfg.DevcontainerBinary)
				assert.Equal(t, 30*time.Second, cfg.EngineTimeout)
				assert.Equal(t, "json", cfg.LogFormat)
				assert.Equal(t, "docker", cfg.DockerBinary)
			},
		},
		{
			name:          "empty file keeps defaults",
			configContent: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, EngineDocker, cfg.Engine)
				assert.Equal(t, "warn", cfg.EffectiveLogLevel())
			},
		},
		{
			name:          "unknown engine",
			configContent: "engine: lxc\n",
			wantErr:       true,
		},
		{
			name:          "podman without socket",
			configContent: "engine: podman\n",
			wantErr:       true,
		},
		{
			name:          "invalid yaml",
			configContent: "engine: [invalid\n",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			setEnv(t, home, "/work/p")
			require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(tt.configContent), 0644))

			cfg, err := Load(NewViper())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	home := t.TempDir()
	setEnv(t, home, "/work/p")
	t.Setenv("DEVC_DOCKER_BINARY", "/usr/local/bin/docker")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("docker_binary: /usr/bin/docker\n"), 0644))

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/docker", cfg.DockerBinary)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Home = "/tmp/devc"
		cfg.ProjectDir = "/work/p"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "negative timeout", mutate: func(c *Config) { c.EngineTimeout = -time.Second }, wantErr: true},
		{name: "empty devcontainer binary", mutate: func(c *Config) { c.DevcontainerBinary = "" }, wantErr: true},
		{name: "empty docker binary", mutate: func(c *Config) { c.DockerBinary = "" }, wantErr: true},
		{name: "docker api ignores docker binary", mutate: func(c *Config) { c.Engine = EngineDockerAPI; c.DockerBinary = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, ".devc"), ExpandPath("~/.devc"))
	assert.Equal(t, "/etc/devc", ExpandPath("/etc/devc"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Join(tmpDir, ".devc", "config.yaml"), GetConfigPath("~/.devc"))
}
