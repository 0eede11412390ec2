// Package config loads and validates the cluster bootstrap configuration.
package config

import (
	"fmt"
)

// Role names accepted in host configuration.
const (
	RolePrimary      = "primary"
	RoleControlPlane = "control-plane"
	RoleWorker       = "worker"
)

// Config holds the application configuration.
type Config struct {
	ClusterName string `mapstructure:"cluster_name" yaml:"cluster_name"`

	// PrepareScript is the local path of the environment-setup script run
	// on every host during preparation.
	PrepareScript string `mapstructure:"prepare_script" yaml:"prepare_script"`
	// PrepareArgs are appended positionally to the script invocation.
	PrepareArgs []string `mapstructure:"prepare_args" yaml:"prepare_args"`
	// InitConfig is the local path of the opaque cluster-init configuration
	// artifact uploaded to the primary.
	InitConfig string `mapstructure:"init_config" yaml:"init_config"`

	// Concurrency caps per-phase host fan-out; 0 uses the built-in default,
	// negative disables the cap.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	Hosts []HostConfig `mapstructure:"hosts" yaml:"hosts"`
}

// HostConfig describes one machine in the fleet.
type HostConfig struct {
	Name    string    `mapstructure:"name" yaml:"name"`
	Address string    `mapstructure:"address" yaml:"address"`
	Port    int       `mapstructure:"port" yaml:"port"`
	User    string    `mapstructure:"user" yaml:"user"`
	Role    string    `mapstructure:"role" yaml:"role"`
	SSH     SSHConfig `mapstructure:"ssh" yaml:"ssh"`
}

// SSHConfig carries the host credential. Exactly one field is needed; when
// several are set, priority is key material > key path > password.
type SSHConfig struct {
	Key      string `mapstructure:"key" yaml:"key"`
	KeyPath  string `mapstructure:"key_path" yaml:"key_path"`
	Password string `mapstructure:"password" yaml:"password"`
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if c.ClusterName == "" {
		return fmt.Errorf("cluster_name is required")
	}
	if c.PrepareScript == "" {
		return fmt.Errorf("prepare_script is required")
	}
	if c.InitConfig == "" {
		return fmt.Errorf("init_config is required")
	}
	if len(c.Hosts) == 0 {
		return fmt.Errorf("at least one host is required")
	}

	seen := make(map[string]bool, len(c.Hosts))
	primaries := 0
	for i, host := range c.Hosts {
		if host.Name == "" {
			return fmt.Errorf("hosts[%d]: name is required", i)
		}
		if seen[host.Name] {
			return fmt.Errorf("hosts[%d]: duplicate name %q", i, host.Name)
		}
		seen[host.Name] = true
		if host.Address == "" {
			return fmt.Errorf("host %q: address is required", host.Name)
		}

		switch host.Role {
		case RolePrimary:
			primaries++
		case RoleControlPlane, RoleWorker:
		default:
			return fmt.Errorf("host %q: invalid role %q (want %s, %s or %s)",
				host.Name, host.Role, RolePrimary, RoleControlPlane, RoleWorker)
		}

		if host.SSH.Key == "" && host.SSH.KeyPath == "" && host.SSH.Password == "" {
			return fmt.Errorf("host %q: one of ssh.key, ssh.key_path or ssh.password is required", host.Name)
		}
	}
	if primaries != 1 {
		return fmt.Errorf("expected exactly one host with role %q, got %d", RolePrimary, primaries)
	}

	return nil
}
