// Package config loads the daemon's static bootstrap file: a TOML
// description of the containers, policy tiers and path allowlists to
// seed before attaching the real hooks. The decision engine itself
// owns no configuration surface, but a daemon has to get its first
// containers from somewhere before a real runtime watcher takes over,
// and a static bootstrap file is the least-surprising way to do that
// for local testing and single-node deployments.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

// ContainerConfig describes one container to register at startup.
type ContainerConfig struct {
	ID       uint32 `toml:"id"`
	Level    string `toml:"level"`
	InitPID  uint32 `toml:"init_pid"`
}

// PathsConfig lists the static contents of the six path tables.
type PathsConfig struct {
	AllowedMountRestricted  []string `toml:"allowed_mount_restricted"`
	AllowedMountBaseline    []string `toml:"allowed_mount_baseline"`
	AllowedAccessRestricted []string `toml:"allowed_access_restricted"`
	AllowedAccessBaseline   []string `toml:"allowed_access_baseline"`
	DeniedAccessRestricted  []string `toml:"denied_access_restricted"`
	DeniedAccessBaseline    []string `toml:"denied_access_baseline"`
}

// Bootstrap is the top-level shape of a kpolicyd bootstrap TOML file.
type Bootstrap struct {
	Containers []ContainerConfig `toml:"container"`
	Paths      PathsConfig       `toml:"paths"`
}

// Load reads and parses a bootstrap file from path.
func Load(path string) (*Bootstrap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %q", path)
	}
	var bs Bootstrap
	if err := toml.Unmarshal(b, &bs); err != nil {
		return nil, errors.Wrapf(err, "config: parsing %q", path)
	}
	return &bs, nil
}

// ParseLevel maps a bootstrap file's level string onto a
// policy.PolicyLevel.
func ParseLevel(s string) (policy.PolicyLevel, error) {
	switch s {
	case "restricted":
		return policy.Restricted, nil
	case "baseline":
		return policy.Baseline, nil
	case "privileged":
		return policy.Privileged, nil
	default:
		return 0, errors.Errorf("config: unknown policy level %q", s)
	}
}
