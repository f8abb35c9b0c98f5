package policy

import "testing"

func TestTableInsertIfAbsent(t *testing.T) {
	tbl := NewTable[int, string](2)

	inserted, err := tbl.Insert(1, "a")
	if err != nil || !inserted {
		t.Fatalf("expected first insert to succeed, got inserted=%v err=%v", inserted, err)
	}

	inserted, err = tbl.Insert(1, "b")
	if err != nil || inserted {
		t.Fatalf("expected second insert of same key to be a no-op, got inserted=%v err=%v", inserted, err)
	}
	v, _ := tbl.Get(1)
	if v != "a" {
		t.Fatalf("expected value to remain %q, got %q", "a", v)
	}
}

func TestTableRejectsOverflow(t *testing.T) {
	tbl := NewTable[int, string](1)
	if _, err := tbl.Insert(1, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Insert(2, "b"); err != ErrTableFull {
		t.Fatalf("expected ErrTableFull, got %v", err)
	}
}

func TestTableUpsertOverwrites(t *testing.T) {
	tbl := NewTable[int, string](1)
	if err := tbl.Upsert(1, "a"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Upsert(1, "b"); err != nil {
		t.Fatal(err)
	}
	v, _ := tbl.Get(1)
	if v != "b" {
		t.Fatalf("expected upsert to overwrite, got %q", v)
	}
}

func TestTableDeleteThenRange(t *testing.T) {
	tbl := NewTable[int, string](4)
	_, _ = tbl.Insert(1, "a")
	_, _ = tbl.Insert(2, "b")
	tbl.Delete(1)

	seen := map[int]string{}
	tbl.Range(func(k int, v string) bool {
		seen[k] = v
		return true
	})
	if len(seen) != 1 || seen[2] != "b" {
		t.Fatalf("unexpected remaining rows: %+v", seen)
	}
}

func TestPathNewAndRoundtrip(t *testing.T) {
	p := NewPath("/etc/shadow")
	if got := p.String(); got != "/etc/shadow" {
		t.Fatalf("String() = %q, want %q", got, "/etc/shadow")
	}
	if p.Len() != len("/etc/shadow") {
		t.Fatalf("Len() = %d, want %d", p.Len(), len("/etc/shadow"))
	}
	if p.Empty() {
		t.Fatal("expected non-empty path")
	}
	if !(Path{}).Empty() {
		t.Fatal("expected zero-valued path to be empty")
	}
}

func TestPathTruncatesAtCapacity(t *testing.T) {
	long := ""
	for i := 0; i < PathLen+10; i++ {
		long += "a"
	}
	p := NewPath(long)
	if p.Len() != PathLen-1 {
		t.Fatalf("Len() = %d, want %d", p.Len(), PathLen-1)
	}
}
