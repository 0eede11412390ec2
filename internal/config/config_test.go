package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		ClusterName:   "demo",
		PrepareScript: "scripts/prepare.sh",
		InitConfig:    "kubeadm-config.yaml",
		Hosts: []HostConfig{
			{Name: "cp-1", Address: "10.0.0.1", Role: RolePrimary, SSH: SSHConfig{KeyPath: "/k"}},
			{Name: "cp-2", Address: "10.0.0.2", Role: RoleControlPlane, SSH: SSHConfig{KeyPath: "/k"}},
			{Name: "w-1", Address: "10.0.0.3", Role: RoleWorker, SSH: SSHConfig{Password: "p"}},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing cluster name", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ClusterName = ""
		assert.ErrorContains(t, cfg.Validate(), "cluster_name")
	})

	t.Run("missing prepare script", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.PrepareScript = ""
		assert.ErrorContains(t, cfg.Validate(), "prepare_script")
	})

	t.Run("missing init config", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.InitConfig = ""
		assert.ErrorContains(t, cfg.Validate(), "init_config")
	})

	t.Run("no hosts", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Hosts = nil
		assert.ErrorContains(t, cfg.Validate(), "at least one host")
	})

	t.Run("duplicate host names", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Hosts[2].Name = "cp-2"
		assert.ErrorContains(t, cfg.Validate(), "duplicate name")
	})

	t.Run("invalid role", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Hosts[1].Role = "master"
		assert.ErrorContains(t, cfg.Validate(), "invalid role")
	})

	t.Run("zero primaries", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Hosts[0].Role = RoleWorker
		assert.ErrorContains(t, cfg.Validate(), "exactly one host")
	})

	t.Run("two primaries", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Hosts[1].Role = RolePrimary
		assert.ErrorContains(t, cfg.Validate(), "exactly one host")
	})

	t.Run("missing credential", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Hosts[2].SSH = SSHConfig{}
		assert.ErrorContains(t, cfg.Validate(), "ssh.key")
	})

	t.Run("missing address", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Hosts[0].Address = ""
		assert.ErrorContains(t, cfg.Validate(), "address")
	})
}
