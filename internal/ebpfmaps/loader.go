package ebpfmaps

import (
	"path/filepath"

	"github.com/cilium/ebpf"
	"github.com/pkg/errors"
)

// Maps holds one *ebpf.Map per shared state table.
type Maps struct {
	Runtimes   *ebpf.Map
	Containers *ebpf.Map
	Processes  *ebpf.Map

	AllowedPathsMountRestricted  *ebpf.Map
	AllowedPathsMountBaseline    *ebpf.Map
	AllowedPathsAccessRestricted *ebpf.Map
	AllowedPathsAccessBaseline   *ebpf.Map
	DeniedPathsAccessRestricted  *ebpf.Map
	DeniedPathsAccessBaseline    *ebpf.Map

	pinDir string
}

// Loader opens or creates the pinned maps for every table under
// pinDir (typically a subdirectory of /sys/fs/bpf).
type Loader struct {
	PinDir string
}

// Open loads every table's map, pinned under l.PinDir, creating any
// that do not already exist. A fresh load (no daemon has run before)
// creates all nine maps; a restart picks up the previously pinned
// ones so process/container bindings survive a daemon restart even
// though the collaborator, not this process, owns their lifetime.
func (l *Loader) Open() (*Maps, error) {
	m := &Maps{pinDir: l.PinDir}

	var err error
	if m.Runtimes, err = l.openOrCreate(MapRuntimes); err != nil {
		return nil, err
	}
	if m.Containers, err = l.openOrCreate(MapContainers); err != nil {
		return nil, err
	}
	if m.Processes, err = l.openOrCreate(MapProcesses); err != nil {
		return nil, err
	}

	dst := []**ebpf.Map{
		&m.AllowedPathsMountRestricted,
		&m.AllowedPathsMountBaseline,
		&m.AllowedPathsAccessRestricted,
		&m.AllowedPathsAccessBaseline,
		&m.DeniedPathsAccessRestricted,
		&m.DeniedPathsAccessBaseline,
	}
	for i, name := range pathTableNames {
		mp, err := l.openOrCreate(name)
		if err != nil {
			return nil, err
		}
		*dst[i] = mp
	}

	return m, nil
}

func (l *Loader) openOrCreate(name string) (*ebpf.Map, error) {
	pinPath := filepath.Join(l.PinDir, name)

	m, err := ebpf.LoadPinnedMap(pinPath, nil)
	if err == nil {
		return m, nil
	}

	spec := Spec(name)
	if spec == nil {
		return nil, errors.Errorf("ebpfmaps: unknown table %q", name)
	}
	m, err = ebpf.NewMapWithOptions(spec, ebpf.MapOptions{PinPath: l.PinDir})
	if err != nil {
		return nil, errors.Wrapf(err, "ebpfmaps: creating map %q", name)
	}
	if err := m.Pin(pinPath); err != nil {
		m.Close()
		return nil, errors.Wrapf(err, "ebpfmaps: pinning map %q at %q", name, pinPath)
	}
	return m, nil
}

// Close releases every held map's file descriptor. The pinned files
// under PinDir are left in place: unpinning is a deliberate,
// separate operation.
func (m *Maps) Close() error {
	var err error
	for _, mp := range []*ebpf.Map{
		m.Runtimes, m.Containers, m.Processes,
		m.AllowedPathsMountRestricted, m.AllowedPathsMountBaseline,
		m.AllowedPathsAccessRestricted, m.AllowedPathsAccessBaseline,
		m.DeniedPathsAccessRestricted, m.DeniedPathsAccessBaseline,
	} {
		if mp == nil {
			continue
		}
		if cerr := mp.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
