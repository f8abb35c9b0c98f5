package collaborator

import (
	"testing"

	oci "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

func TestRegisterContainerThenInitProcess(t *testing.T) {
	e := policy.NewEngine()
	c := New(e)

	if err := c.RegisterContainer(1, policy.Baseline); err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterInitProcess(100, 1); err != nil {
		t.Fatal(err)
	}

	proc, ok := e.Processes.Get(100)
	if !ok || proc.ContainerID != 1 {
		t.Fatalf("expected process 100 bound to container 1, got %+v ok=%v", proc, ok)
	}
}

func TestRegisterInitProcessWithoutContainerFails(t *testing.T) {
	e := policy.NewEngine()
	c := New(e)

	if err := c.RegisterInitProcess(100, 1); err == nil {
		t.Fatal("expected an error registering init process for an unregistered container")
	}
}

func TestDeleteProcessAndUnregisterContainer(t *testing.T) {
	e := policy.NewEngine()
	c := New(e)

	if err := c.RegisterContainer(2, policy.Restricted); err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterInitProcess(200, 2); err != nil {
		t.Fatal(err)
	}

	c.DeleteProcess(200)
	if _, ok := e.Processes.Get(200); ok {
		t.Fatal("expected process 200 to be gone")
	}

	c.UnregisterContainer(2)
	if _, ok := e.Containers.Get(2); ok {
		t.Fatal("expected container 2 to be gone")
	}
}

func TestSeedMountAllowlistFromOCI(t *testing.T) {
	e := policy.NewEngine()
	c := New(e)

	mounts := []oci.Mount{
		{Source: "/var/lib/containers", Destination: "/data", Type: "bind"},
		{Source: "/proc", Destination: "/proc", Type: "proc"},
		{Source: "/etc/allowed", Destination: "/etc/allowed", Options: []string{"rbind", "bind"}},
	}
	if err := c.SeedMountAllowlistFromOCI(e.AllowedPathsMountRestricted, mounts); err != nil {
		t.Fatal(err)
	}

	if !policy.Match(e.AllowedPathsMountRestricted, "/var/lib/containers/foo") {
		t.Fatal("expected bind-typed mount source to be seeded")
	}
	if !policy.Match(e.AllowedPathsMountRestricted, "/etc/allowed/x") {
		t.Fatal("expected bind-optioned mount source to be seeded")
	}
	if policy.Match(e.AllowedPathsMountRestricted, "/proc/1") {
		t.Fatal("expected non-bind mount source to be skipped")
	}
}
