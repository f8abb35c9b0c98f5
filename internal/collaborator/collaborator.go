// Package collaborator is a reference implementation of the
// user-space controller that watches a container runtime and
// populates the containers/processes/paths_* tables the decision
// engine otherwise only reads (except processes, which the engine
// also inserts into as it tracks lineage). It exists so the daemon and
// tests have something concrete driving the engine end-to-end; a
// production deployment would replace it with a real runtime watcher
// and OCI-hook integration.
package collaborator

import (
	"github.com/pkg/errors"
	oci "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/samber/lo"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

// Controller populates an Engine's tables on behalf of an external
// container runtime watcher.
type Controller struct {
	engine *policy.Engine
}

// New builds a Controller over the given engine.
func New(e *policy.Engine) *Controller {
	return &Controller{engine: e}
}

// RegisterContainer creates a container row with the given policy
// tier. This must happen before any of the container's processes are
// registered; a process bound to a container id with no row is an
// inconsistency the resolver treats as a hard failure.
func (c *Controller) RegisterContainer(id policy.ContainerID, level policy.PolicyLevel) error {
	if err := c.engine.Containers.Upsert(id, policy.Container{PolicyLevel: level}); err != nil {
		return errors.Wrapf(err, "collaborator: registering container %d", id)
	}
	return nil
}

// UnregisterContainer removes a container row. The decision engine
// never mutates or removes container rows itself; only the
// collaborator does, and typically only after every process bound to
// it has already exited.
func (c *Controller) UnregisterContainer(id policy.ContainerID) {
	c.engine.Containers.Delete(id)
}

// RegisterInitProcess binds a container's first process. This is the
// only process registration the collaborator performs directly; every
// other binding is derived by the Lineage Tracker from this one as
// children fork.
func (c *Controller) RegisterInitProcess(pid policy.PID, container policy.ContainerID) error {
	if _, ok := c.engine.Containers.Get(container); !ok {
		return errors.Errorf("collaborator: container %d not registered", container)
	}
	if _, err := c.engine.Processes.Insert(pid, policy.Process{ContainerID: container}); err != nil {
		return errors.Wrapf(err, "collaborator: registering init process %d", pid)
	}
	return nil
}

// DeleteProcess removes a process row on exit. Cleaning up after an
// exited process is the collaborator's responsibility; the engine has
// no exit hook of its own.
func (c *Controller) DeleteProcess(pid policy.PID) {
	c.engine.Processes.Delete(pid)
}

// SeedPath writes a single path entry into slot of the named table.
func (c *Controller) SeedPath(table *policy.PathTable, slot uint32, path string) error {
	if err := table.Upsert(slot, policy.NewPath(path)); err != nil {
		return errors.Wrapf(err, "collaborator: seeding path %q", path)
	}
	return nil
}

// SeedPaths writes paths into table starting at slot 0, stopping if
// the table's capacity is exceeded.
func (c *Controller) SeedPaths(table *policy.PathTable, paths []string) error {
	for i, p := range paths {
		if err := c.SeedPath(table, uint32(i), p); err != nil {
			return err
		}
	}
	return nil
}

// SeedMountAllowlistFromOCI seeds a mount allowlist table from an OCI
// runtime spec's bind mounts, the same shape a real OCI-hook
// integration would hand the collaborator when a container is
// created. Only mounts with a non-empty Source whose Type is "bind" or
// whose Options contain "bind" are used,
// mirroring the mount handler's own "only bind mounts are policed"
// rule.
func (c *Controller) SeedMountAllowlistFromOCI(table *policy.PathTable, mounts []oci.Mount) error {
	bindSources := lo.FilterMap(mounts, func(m oci.Mount, _ int) (string, bool) {
		isBind := lo.Contains(m.Options, "bind") || m.Type == "bind"
		return m.Source, isBind && m.Source != ""
	})
	return c.SeedPaths(table, bindSources)
}
