package ebpfmaps

import (
	"github.com/cilium/ebpf"
	"github.com/pkg/errors"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

// containerRecord is the on-the-wire layout of a containers table
// value: {policy_level: u8}.
type containerRecord struct {
	PolicyLevel uint8
}

// processRecord is the on-the-wire layout of a processes table value:
// {container_id: u32}.
type processRecord struct {
	ContainerID uint32
}

// PushContainers writes every row of table into the kernel map,
// letting the collaborator's writes to the Engine's containers table
// reach the maps the BPF programs actually read.
func PushContainers(m *ebpf.Map, table *policy.Table[policy.ContainerID, policy.Container]) error {
	var outerErr error
	table.Range(func(id policy.ContainerID, c policy.Container) bool {
		rec := containerRecord{PolicyLevel: uint8(c.PolicyLevel)}
		if err := m.Put(uint32(id), rec); err != nil {
			outerErr = errors.Wrapf(err, "ebpfmaps: pushing container %d", id)
			return false
		}
		return true
	})
	return outerErr
}

// PushProcesses writes every row of table into the kernel map.
func PushProcesses(m *ebpf.Map, table *policy.Table[policy.PID, policy.Process]) error {
	var outerErr error
	table.Range(func(pid policy.PID, p policy.Process) bool {
		rec := processRecord{ContainerID: uint32(p.ContainerID)}
		if err := m.Put(uint32(pid), rec); err != nil {
			outerErr = errors.Wrapf(err, "ebpfmaps: pushing process %d", pid)
			return false
		}
		return true
	})
	return outerErr
}

// DeleteProcess removes pid from the kernel map, mirroring the
// collaborator's responsibility to delete a process row on exit.
func DeleteProcess(m *ebpf.Map, pid policy.PID) error {
	if err := m.Delete(uint32(pid)); err != nil && !errors.Is(err, ebpf.ErrKeyNotExist) {
		return errors.Wrapf(err, "ebpfmaps: deleting process %d", pid)
	}
	return nil
}

// PushPaths writes every row of table into the kernel map.
func PushPaths(m *ebpf.Map, table *policy.PathTable) error {
	var outerErr error
	table.Range(func(slot uint32, p policy.Path) bool {
		if err := m.Put(slot, p); err != nil {
			outerErr = errors.Wrapf(err, "ebpfmaps: pushing path slot %d", slot)
			return false
		}
		return true
	})
	return outerErr
}

// PullProcesses loads every row currently in the kernel map into
// table, used on daemon startup to recover process bindings the
// Lineage Tracker made before a restart.
func PullProcesses(m *ebpf.Map, table *policy.Table[policy.PID, policy.Process]) error {
	var key uint32
	var rec processRecord
	it := m.Iterate()
	for it.Next(&key, &rec) {
		if err := table.Upsert(policy.PID(key), policy.Process{ContainerID: policy.ContainerID(rec.ContainerID)}); err != nil {
			return errors.Wrapf(err, "ebpfmaps: restoring process %d", key)
		}
	}
	return it.Err()
}

// PullContainers loads every row currently in the kernel map into
// table.
func PullContainers(m *ebpf.Map, table *policy.Table[policy.ContainerID, policy.Container]) error {
	var key uint32
	var rec containerRecord
	it := m.Iterate()
	for it.Next(&key, &rec) {
		if err := table.Upsert(policy.ContainerID(key), policy.Container{PolicyLevel: policy.PolicyLevel(rec.PolicyLevel)}); err != nil {
			return errors.Wrapf(err, "ebpfmaps: restoring container %d", key)
		}
	}
	return it.Err()
}
