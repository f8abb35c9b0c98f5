package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

const sampleTOML = `
[[container]]
id = 1
level = "restricted"
init_pid = 100

[paths]
allowed_mount_restricted = ["/var/lib/containers"]
denied_access_restricted = ["/etc/shadow"]
`

func TestLoadAndParseLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootstrap.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	bs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(bs.Containers) != 1 || bs.Containers[0].ID != 1 {
		t.Fatalf("unexpected containers: %+v", bs.Containers)
	}
	if len(bs.Paths.AllowedMountRestricted) != 1 {
		t.Fatalf("unexpected paths: %+v", bs.Paths)
	}

	level, err := ParseLevel(bs.Containers[0].Level)
	if err != nil {
		t.Fatal(err)
	}
	if level != policy.Restricted {
		t.Fatalf("expected Restricted, got %v", level)
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
