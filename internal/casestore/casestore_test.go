package casestore

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestReadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Read("ghost")
	var nf *ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("Read = %v, want ErrNotFound", err)
	}
	if nf.Error() == "" || nf.Path == "" {
		t.Errorf("ErrNotFound carries no path: %+v", nf)
	}
}

func TestAppendCreatesAndAccumulates(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Append("visits", json.RawMessage(`{"n":1}`)); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := store.Append("visits", json.RawMessage(`{"n":2}`)); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	entries, err := store.Read("visits")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if string(entries[1]) != `{"n":2}` {
		t.Errorf("entries[1] = %s", entries[1])
	}
}

func TestDeleteAt(t *testing.T) {
	store := NewStore(t.TempDir())
	for i := 0; i < 3; i++ {
		if err := store.Append("c", json.RawMessage(`{"i":`+string(rune('0'+i))+`}`)); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.DeleteAt("c", 1); err != nil {
		t.Fatalf("DeleteAt: %v", err)
	}

	entries, err := store.Read("c")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || string(entries[0]) != `{"i":0}` || string(entries[1]) != `{"i":2}` {
		t.Errorf("entries after delete = %v", entries)
	}
}

func TestDeleteAtOutOfRange(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Append("c", json.RawMessage(`1`)); err != nil {
		t.Fatal(err)
	}

	tests := []int{-1, 1, 99}
	for _, idx := range tests {
		if err := store.DeleteAt("c", idx); err == nil {
			t.Errorf("DeleteAt(%d) succeeded, want error", idx)
		}
	}
}

func TestDeleteAtMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	var nf *ErrNotFound
	if err := store.DeleteAt("ghost", 0); !errors.As(err, &nf) {
		t.Errorf("DeleteAt on missing file = %v, want ErrNotFound", err)
	}
}

func TestNameSanitized(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// Path components in the case name must not escape the store dir.
	if err := store.Append("../../etc/passwd", json.RawMessage(`"x"`)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, err := store.Read("passwd")
	if err != nil {
		t.Fatalf("sanitized name not readable: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}
