package staging

import (
	"io"
	"os"
	"testing"
)

func TestStore_CreateUniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		a, err := store.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[a.Path()] {
			t.Fatalf("duplicate staging path %s", a.Path())
		}
		seen[a.Path()] = true
		if err := a.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
	}
}

func TestStore_FilePermissions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	a, err := store.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer a.Release()

	fi, err := os.Stat(a.Path())
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	di, err := os.Stat(store.Dir())
	if err != nil {
		t.Fatalf("stat dir failed: %v", err)
	}
	if perm := di.Mode().Perm(); perm != 0o700 {
		t.Errorf("expected dir mode 0700, got %o", perm)
	}
}

func TestArtifact_WriteSyncReadRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	a, err := store.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer a.Release()

	payload := []byte("staged bytes")
	if _, err := a.Write(payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if a.Synced() {
		t.Error("artifact must not report synced before Sync")
	}
	if err := a.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !a.Synced() {
		t.Error("artifact must report synced after Sync")
	}
	if a.Size() != int64(len(payload)) {
		t.Errorf("expected size %d, got %d", len(payload), a.Size())
	}

	f, err := a.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("expected %q, got %q", payload, got)
	}
}

func TestArtifact_ReleaseRemovesFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	a, err := store.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := a.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(a.Path()); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err: %v", err)
	}

	// Second release is a no-op.
	if err := a.Release(); err != nil {
		t.Errorf("repeated Release must not fail: %v", err)
	}
}
