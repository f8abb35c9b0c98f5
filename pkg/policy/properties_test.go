package policy

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"
)

const (
	maxGeneratedPID         = 4096
	maxGeneratedContainerID = 64
)

// genPID and genContainerID keep the generated fixtures small enough
// that Insert/Get collisions actually exercise the interesting paths.
func genPID(r *rand.Rand) PID {
	return PID(r.Intn(maxGeneratedPID))
}

func genContainerID(r *rand.Rand) ContainerID {
	return ContainerID(r.Intn(maxGeneratedContainerID))
}

func genLevel(r *rand.Rand) PolicyLevel {
	return PolicyLevel(r.Intn(3))
}

// TestLineageNeverBindsToAMissingContainer checks that whenever a
// bind succeeds, the referenced container row exists at bind time.
func TestLineageNeverBindsToAMissingContainer(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		e := NewEngine()
		parent, child := genPID(r), genPID(r)
		if parent == child {
			return true
		}
		cid := genContainerID(r)
		mustInsertContainerQ(e, cid, genLevel(r))
		mustInsertProcessQ(e, parent, cid)

		if _, err := e.Lineage.OnNewTask(parent, child); err != nil {
			return true
		}
		proc, ok := e.Processes.Get(child)
		if !ok {
			return true // child was never a host process's binding, nothing to check
		}
		_, containerExists := e.Containers.Get(proc.ContainerID)
		return containerExists
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// TestResolverIsPure checks that repeated resolution without an
// intervening write returns the same value.
func TestResolverIsPure(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		e := NewEngine()
		pid := genPID(r)
		cid := genContainerID(r)
		if r.Intn(2) == 0 {
			mustInsertContainerQ(e, cid, genLevel(r))
			mustInsertProcessQ(e, pid, cid)
		}

		first := e.resolver.GetPolicyLevel(pid)
		second := e.resolver.GetPolicyLevel(pid)
		return reflect.DeepEqual(first, second)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// TestLineageOnNewTaskIsIdempotent checks that replaying OnNewTask
// never changes observable state after the first successful call.
func TestLineageOnNewTaskIsIdempotent(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		e := NewEngine()
		parent, child := genPID(r), genPID(r)
		if parent == child {
			return true
		}
		cid := genContainerID(r)
		mustInsertContainerQ(e, cid, genLevel(r))
		mustInsertProcessQ(e, parent, cid)

		if _, err := e.Lineage.OnNewTask(parent, child); err != nil {
			return true
		}
		after1, ok1 := e.Processes.Get(child)

		if _, err := e.Lineage.OnNewTask(parent, child); err != nil {
			return true
		}
		after2, ok2 := e.Processes.Get(child)

		return ok1 == ok2 && after1 == after2
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// TestFoldPrefersAnyPriorDenial checks Fold(prev, cur) == prev
// whenever prev != Allow, else cur.
func TestFoldPrefersAnyPriorDenial(t *testing.T) {
	f := func(prev, cur Verdict) bool {
		got := Fold(prev, cur)
		if prev != Allow {
			return got == prev
		}
		return got == cur
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// TestMatchIffSomeEntryIsAPrefix checks match(T, P) iff some non-empty
// entry E in T is a byte-prefix of P.
func TestMatchIffSomeEntryIsAPrefix(t *testing.T) {
	f := func(seed int64, probe string) bool {
		if len(probe) == 0 {
			return true
		}
		r := rand.New(rand.NewSource(seed))
		table := NewTable[uint32, Path](PathsCap)

		n := r.Intn(4)
		expected := false
		for i := 0; i < n; i++ {
			entry := randomPrefixOrGarbage(r, probe)
			_ = table.Upsert(uint32(i), NewPath(entry))
			if entry != "" && len(probe) >= len(entry) && probe[:len(entry)] == entry {
				expected = true
			}
		}

		return Match(table, probe) == expected
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 200}); err != nil {
		t.Error(err)
	}
}

func randomPrefixOrGarbage(r *rand.Rand, probe string) string {
	if len(probe) == 0 {
		return ""
	}
	if r.Intn(2) == 0 {
		n := r.Intn(len(probe) + 1)
		return probe[:n]
	}
	return "garbage-" + probe
}

// TestPrivilegedAlwaysAllows checks that PRIVILEGED yields Allow on
// every hook regardless of path table contents.
func TestPrivilegedAlwaysAllows(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		e := NewEngine()
		pid := genPID(r)
		cid := genContainerID(r)
		mustInsertContainerQ(e, cid, Privileged)
		mustInsertProcessQ(e, pid, cid)
		ctx := context.Background()

		if v := e.HandleSyslog(ctx, SyslogEvent{PID: pid}, Allow); v != Allow {
			return false
		}
		root := "/definitely/not/allowed"
		if v := e.HandleOpen(ctx, OpenEvent{PID: pid, ResolvedPath: &root}, Allow); v != Allow {
			return false
		}
		typ, dev := "bind", "/definitely/not/allowed"
		if v := e.HandleMount(ctx, MountEvent{PID: pid, Type: &typ, DevName: &dev}, Allow); v != Allow {
			return false
		}
		if v := e.HandleSetuid(ctx, SetuidEvent{PID: pid, Old: Credential{UID: 1000}, New: Credential{UID: 0}}, Allow); v != Allow {
			return false
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// TestUnboundPIDAllowedEverywhere checks that a pid with no processes
// row is allowed on every hook.
func TestUnboundPIDAllowedEverywhere(t *testing.T) {
	f := func(pid PID) bool {
		e := NewEngine()
		ctx := context.Background()

		if v := e.HandleSyslog(ctx, SyslogEvent{PID: pid}, Allow); v != Allow {
			return false
		}
		root := "/anything"
		if v := e.HandleOpen(ctx, OpenEvent{PID: pid, ResolvedPath: &root}, Allow); v != Allow {
			return false
		}
		typ, dev := "bind", "/anything"
		if v := e.HandleMount(ctx, MountEvent{PID: pid, Type: &typ, DevName: &dev}, Allow); v != Allow {
			return false
		}
		if v := e.HandleSetuid(ctx, SetuidEvent{PID: pid, Old: Credential{UID: 1000}, New: Credential{UID: 0}}, Allow); v != Allow {
			return false
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func mustInsertContainerQ(e *Engine, id ContainerID, level PolicyLevel) {
	_ = e.Containers.Upsert(id, Container{PolicyLevel: level})
}

func mustInsertProcessQ(e *Engine, pid PID, id ContainerID) {
	_, _ = e.Processes.Insert(pid, Process{ContainerID: id})
}
