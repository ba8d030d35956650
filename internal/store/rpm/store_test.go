package rpm

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T, repoPath string, opts Options) *Store {
	t.Helper()
	store, err := NewStore(repoPath, opts)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestStore_Handles(t *testing.T) {
	store := newTestStore(t, t.TempDir(), Options{})

	if !store.Handles("some/dir/pkg-1.0-1.el7.noarch.rpm") {
		t.Error("expected rpm files to be handled")
	}
	if store.Handles("some/dir/pkg-1.0.tar.gz") {
		t.Error("expected non-rpm files to be rejected")
	}
}

func TestStore_SaveLayout(t *testing.T) {
	srcDir := t.TempDir()
	repoDir := t.TempDir()
	store := newTestStore(t, repoDir, Options{})

	for _, file := range []string{
		"repoman-1.0-1.el7.noarch.rpm",
		"repoman-1.0-1.el7.src.rpm",
	} {
		if err := store.Add(writeRPM(t, srcDir, file), false); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Save(false); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"rpm/el7/noarch/repoman-1.0-1.el7.noarch.rpm",
		"rpm/el7/SRPMS/repoman-1.0-1.el7.src.rpm",
	} {
		if _, err := os.Stat(filepath.Join(repoDir, want)); err != nil {
			t.Errorf("expected %s in repo: %v", want, err)
		}
	}
}

func TestStore_SaveAllDistros(t *testing.T) {
	srcDir := t.TempDir()
	repoDir := t.TempDir()
	store := newTestStore(t, repoDir, Options{})

	// el7 and fc24 packages make both distros known to the store, so the
	// all-distros package is expanded into both trees.
	for _, file := range []string{
		"pkg-1.0-1.el7.x86_64.rpm",
		"pkg-1.0-1.fc24.x86_64.rpm",
		"ovirt-release36-1.0-1.noarch.rpm",
	} {
		if err := store.Add(writeRPM(t, srcDir, file), false); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Save(false); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"rpm/el7/noarch/ovirt-release36-1.0-1.noarch.rpm",
		"rpm/fc24/noarch/ovirt-release36-1.0-1.noarch.rpm",
	} {
		if _, err := os.Stat(filepath.Join(repoDir, want)); err != nil {
			t.Errorf("expected %s in repo: %v", want, err)
		}
	}
}

func TestStore_LoadExisting(t *testing.T) {
	repoDir := t.TempDir()
	pkgDir := filepath.Join(repoDir, "rpm", "el7", "noarch")
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeRPM(t, pkgDir, "repoman-1.0-1.el7.noarch.rpm")

	store := newTestStore(t, repoDir, Options{})
	if got := store.Artifacts().Len(); got != 1 {
		t.Fatalf("expected 1 loaded artifact, got %d", got)
	}
	if distros := store.Distros(); len(distros) != 1 || distros[0] != "el7" {
		t.Fatalf("expected [el7], got %v", distros)
	}
}

func TestStore_AddOnlyIfNewer(t *testing.T) {
	srcDir := t.TempDir()
	store := newTestStore(t, t.TempDir(), Options{})

	if err := store.Add(writeRPM(t, srcDir, "pkg-2.0-1.el7.x86_64.rpm"), false); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(writeRPM(t, srcDir, "pkg-1.0-1.el7.x86_64.rpm"), true); err != nil {
		t.Fatal(err)
	}
	if got := store.Artifacts().Len(); got != 1 {
		t.Fatalf("expected the older rpm skipped, got %d artifacts", got)
	}
	if err := store.Add(writeRPM(t, srcDir, "pkg-3.0-1.el7.x86_64.rpm"), true); err != nil {
		t.Fatal(err)
	}
	if got := store.Artifacts().Len(); got != 2 {
		t.Fatalf("expected the newer rpm added, got %d artifacts", got)
	}
}

func TestStore_DeleteOld(t *testing.T) {
	srcDir := t.TempDir()
	repoDir := t.TempDir()
	store := newTestStore(t, repoDir, Options{})

	paths := map[string]string{}
	for _, file := range []string{
		"pkg-1.0-1.el7.x86_64.rpm",
		"pkg-2.0-1.el7.x86_64.rpm",
		"pkg-3.0-1.el7.x86_64.rpm",
	} {
		paths[file] = writeRPM(t, srcDir, file)
		if err := store.Add(paths[file], false); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.DeleteOld(2, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0] != paths["pkg-1.0-1.el7.x86_64.rpm"] {
		t.Fatalf("expected only the oldest version removed, got %v", removed)
	}
	if _, err := os.Stat(paths["pkg-1.0-1.el7.x86_64.rpm"]); !os.IsNotExist(err) {
		t.Error("expected pkg-1.0-1 file to be gone")
	}
	if _, err := os.Stat(paths["pkg-3.0-1.el7.x86_64.rpm"]); err != nil {
		t.Error("expected pkg-3.0-1 file to survive")
	}
}

func TestStore_DeleteOldNoop(t *testing.T) {
	srcDir := t.TempDir()
	store := newTestStore(t, t.TempDir(), Options{})

	old := writeRPM(t, srcDir, "pkg-1.0-1.el7.x86_64.rpm")
	if err := store.Add(old, false); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(writeRPM(t, srcDir, "pkg-2.0-1.el7.x86_64.rpm"), false); err != nil {
		t.Fatal(err)
	}

	removed, err := store.DeleteOld(1, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 {
		t.Fatalf("expected 1 reported path, got %v", removed)
	}
	if _, err := os.Stat(old); err != nil {
		t.Error("noop must not remove files")
	}
}

func TestStore_DeleteOldRejectsBadKeep(t *testing.T) {
	store := newTestStore(t, t.TempDir(), Options{})
	if _, err := store.DeleteOld(0, false); err == nil {
		t.Error("expected keep=0 to be rejected")
	}
}
