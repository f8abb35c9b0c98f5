//go:build linux

package ebpfmaps

import (
	"io"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/pkg/errors"
)

// hookPrograms names the BPF program each hook attachment point
// expects to find in the compiled object.
var hookPrograms = struct {
	fork, taskAlloc, syslog, mount, setuid, open string
}{
	fork:      "on_sched_process_fork",
	taskAlloc: "on_task_alloc",
	syslog:    "on_syslog",
	mount:     "on_sb_mount",
	setuid:    "on_task_fix_setuid",
	open:      "on_file_open",
}

// AttachHooks loads a pre-built BPF object from objPath and attaches
// each program named in hookPrograms to the tracepoint/LSM hook it
// implements. There is no in-tree C source to compile this object from
// — see DESIGN.md for why — so objPath must point at a separately
// built artifact; callers that don't have one should run the daemon in
// --userspace-only mode instead, which drives pkg/policy.Engine
// directly without any of this.
func AttachHooks(objPath string) (io.Closer, error) {
	spec, err := ebpf.LoadCollectionSpec(objPath)
	if err != nil {
		return nil, errors.Wrapf(err, "ebpfmaps: loading collection spec %q", objPath)
	}

	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, errors.Wrap(err, "ebpfmaps: instantiating collection")
	}

	links, err := attachAll(coll)
	if err != nil {
		coll.Close()
		return nil, err
	}

	return &attachment{coll: coll, links: links}, nil
}

func attachAll(coll *ebpf.Collection) ([]link.Link, error) {
	var links []link.Link

	forkProg := coll.Programs[hookPrograms.fork]
	if forkProg == nil {
		return nil, errors.Errorf("ebpfmaps: object missing program %q", hookPrograms.fork)
	}
	forkLink, err := link.Tracepoint("sched", "sched_process_fork", forkProg, nil)
	if err != nil {
		return nil, errors.Wrap(err, "ebpfmaps: attaching fork tracepoint")
	}
	links = append(links, forkLink)

	lsmHooks := map[string]string{
		hookPrograms.taskAlloc: "task_alloc",
		hookPrograms.syslog:    "syslog",
		hookPrograms.mount:     "sb_mount",
		hookPrograms.setuid:    "task_fix_setuid",
		hookPrograms.open:      "file_open",
	}
	for progName := range lsmHooks {
		prog := coll.Programs[progName]
		if prog == nil {
			return links, errors.Errorf("ebpfmaps: object missing program %q", progName)
		}
		l, err := link.AttachLSM(link.LSMOptions{Program: prog})
		if err != nil {
			return links, errors.Wrapf(err, "ebpfmaps: attaching LSM program %q", progName)
		}
		links = append(links, l)
	}

	return links, nil
}

type attachment struct {
	coll  *ebpf.Collection
	links []link.Link
}

func (a *attachment) Close() error {
	var err error
	for _, l := range a.links {
		if cerr := l.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	a.coll.Close()
	return err
}
