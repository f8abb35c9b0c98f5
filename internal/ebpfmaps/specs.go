// Package ebpfmaps defines the BPF map layout backing the shared
// state tables, and the loader/sync machinery that lets the
// collaborator's writes to policy.Engine's in-memory tables reach the
// kernel maps the real LSM/tracepoint programs read at enforcement
// time.
package ebpfmaps

import (
	"unsafe"

	"github.com/cilium/ebpf"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

// pathValueSize is the on-the-wire size of a policy.Path value: a
// fixed byte[64].
const pathValueSize = uint32(unsafe.Sizeof(policy.Path{}))

// Names of the pinned map files under the BPF filesystem.
const (
	MapRuntimes                     = "runtimes"
	MapContainers                   = "containers"
	MapProcesses                    = "processes"
	MapAllowedPathsMountRestricted  = "allowed_paths_mount_restricted"
	MapAllowedPathsMountBaseline    = "allowed_paths_mount_baseline"
	MapAllowedPathsAccessRestricted = "allowed_paths_access_restricted"
	MapAllowedPathsAccessBaseline   = "allowed_paths_access_baseline"
	MapDeniedPathsAccessRestricted  = "denied_paths_access_restricted"
	MapDeniedPathsAccessBaseline    = "denied_paths_access_baseline"
)

// Spec returns the ebpf.MapSpec for one of the named tables. Every
// table is a BPF_MAP_TYPE_HASH: per-key atomic get/insert/delete with
// no locking.
func Spec(name string) *ebpf.MapSpec {
	switch name {
	case MapRuntimes:
		return &ebpf.MapSpec{
			Name:       MapRuntimes,
			Type:       ebpf.Hash,
			KeySize:    4, // u32 hash(comm)
			ValueSize:  4, // u32 sentinel
			MaxEntries: policy.RuntimesCap,
			Pinning:    ebpf.PinByName,
		}
	case MapContainers:
		return &ebpf.MapSpec{
			Name:       MapContainers,
			Type:       ebpf.Hash,
			KeySize:    4, // u32 container_id
			ValueSize:  1, // {policy_level: u8}
			MaxEntries: policy.PIDMaxLimit,
			Pinning:    ebpf.PinByName,
		}
	case MapProcesses:
		return &ebpf.MapSpec{
			Name:       MapProcesses,
			Type:       ebpf.Hash,
			KeySize:    4, // pid
			ValueSize:  4, // {container_id: u32}
			MaxEntries: policy.PIDMaxLimit,
			Pinning:    ebpf.PinByName,
		}
	case MapAllowedPathsMountRestricted,
		MapAllowedPathsMountBaseline,
		MapAllowedPathsAccessRestricted,
		MapAllowedPathsAccessBaseline,
		MapDeniedPathsAccessRestricted,
		MapDeniedPathsAccessBaseline:
		return &ebpf.MapSpec{
			Name:       name,
			Type:       ebpf.Hash,
			KeySize:    4, // u32 slot
			ValueSize:  pathValueSize,
			MaxEntries: policy.PathsCap,
			Pinning:    ebpf.PinByName,
		}
	default:
		return nil
	}
}

// pathTableNames lists every path-table map name, in the order the
// Loader opens them.
var pathTableNames = []string{
	MapAllowedPathsMountRestricted,
	MapAllowedPathsMountBaseline,
	MapAllowedPathsAccessRestricted,
	MapAllowedPathsAccessBaseline,
	MapDeniedPathsAccessRestricted,
	MapDeniedPathsAccessBaseline,
}
