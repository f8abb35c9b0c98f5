package ebpfmaps

import (
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/pkg/errors"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

// DumpRuntimes formats every row of the runtimes map for operator
// inspection: hash(comm) -> sentinel.
func DumpRuntimes(m *Maps) ([]string, error) {
	var key, val uint32
	var lines []string
	it := m.Runtimes.Iterate()
	for it.Next(&key, &val) {
		lines = append(lines, fmt.Sprintf("runtimes: hash=%d sentinel=%d", key, val))
	}
	return lines, errors.Wrap(it.Err(), "ebpfmaps: dumping runtimes")
}

// DumpContainers formats every row of the containers map.
func DumpContainers(m *Maps) ([]string, error) {
	var key uint32
	var rec containerRecord
	var lines []string
	it := m.Containers.Iterate()
	for it.Next(&key, &rec) {
		lines = append(lines, fmt.Sprintf("containers: id=%d level=%s", key, policy.PolicyLevel(rec.PolicyLevel)))
	}
	return lines, errors.Wrap(it.Err(), "ebpfmaps: dumping containers")
}

// DumpProcesses formats every row of the processes map.
func DumpProcesses(m *Maps) ([]string, error) {
	var key uint32
	var rec processRecord
	var lines []string
	it := m.Processes.Iterate()
	for it.Next(&key, &rec) {
		lines = append(lines, fmt.Sprintf("processes: pid=%d container_id=%d", key, rec.ContainerID))
	}
	return lines, errors.Wrap(it.Err(), "ebpfmaps: dumping processes")
}

// DumpPaths formats every non-empty row of a single named path table.
func DumpPaths(mp *ebpf.Map, name string) ([]string, error) {
	var key uint32
	var p policy.Path
	var lines []string
	it := mp.Iterate()
	for it.Next(&key, &p) {
		if p.Empty() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: slot=%d path=%q", name, key, p.String()))
	}
	return lines, errors.Wrapf(it.Err(), "ebpfmaps: dumping %s", name)
}

// DumpAll formats every row of every table in m, in the fixed order
// runtimes, containers, processes, then the six path tables.
func DumpAll(m *Maps) ([]string, error) {
	var all []string

	steps := []func() ([]string, error){
		func() ([]string, error) { return DumpRuntimes(m) },
		func() ([]string, error) { return DumpContainers(m) },
		func() ([]string, error) { return DumpProcesses(m) },
		func() ([]string, error) { return DumpPaths(m.AllowedPathsMountRestricted, MapAllowedPathsMountRestricted) },
		func() ([]string, error) { return DumpPaths(m.AllowedPathsMountBaseline, MapAllowedPathsMountBaseline) },
		func() ([]string, error) { return DumpPaths(m.AllowedPathsAccessRestricted, MapAllowedPathsAccessRestricted) },
		func() ([]string, error) { return DumpPaths(m.AllowedPathsAccessBaseline, MapAllowedPathsAccessBaseline) },
		func() ([]string, error) { return DumpPaths(m.DeniedPathsAccessRestricted, MapDeniedPathsAccessRestricted) },
		func() ([]string, error) { return DumpPaths(m.DeniedPathsAccessBaseline, MapDeniedPathsAccessBaseline) },
	}
	for _, step := range steps {
		lines, err := step()
		if err != nil {
			return all, err
		}
		all = append(all, lines...)
	}
	return all, nil
}
