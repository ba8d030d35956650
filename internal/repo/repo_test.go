package repo

import (
	"os"
	"path/filepath"
	"testing"

	"repoman/internal/config"
)

func testConfig(t *testing.T, repoPath string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.RepoPath = repoPath
	cfg.TempDir = t.TempDir()
	return cfg
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRepo_AddAndSave(t *testing.T) {
	srcDir := t.TempDir()
	repoDir := t.TempDir()

	rpmPath := writeFile(t, srcDir, "repoman-1.0-1.el7.noarch.rpm")
	isoPath := writeFile(t, srcDir, "installer-2.0.iso")

	r, err := New(testConfig(t, repoDir))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.AddSources([]string{rpmPath, isoPath}); err != nil {
		t.Fatal(err)
	}
	if err := r.Save(); err != nil {
		t.Fatal(err)
	}

	// The rpm is routed to the rpm store, the iso to the generic store.
	for _, want := range []string{
		"rpm/el7/noarch/repoman-1.0-1.el7.noarch.rpm",
		"installer/2.0/installer-2.0.iso",
	} {
		if _, err := os.Stat(filepath.Join(repoDir, want)); err != nil {
			t.Errorf("expected %s in repo: %v", want, err)
		}
	}
}

func TestRepo_RepoSuffix(t *testing.T) {
	srcDir := t.TempDir()
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "myrepo")

	rpmPath := writeFile(t, srcDir, "repoman-1.0-1.el7.noarch.rpm")

	r, err := New(testConfig(t, repoDir))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.AddSources([]string{"repo-suffix:pr42", rpmPath}); err != nil {
		t.Fatal(err)
	}
	if err := r.Save(); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(baseDir, "myrepo_pr42", "rpm/el7/noarch/repoman-1.0-1.el7.noarch.rpm")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected artifact under suffixed repo: %v", err)
	}
}

func TestRepo_DeleteOld(t *testing.T) {
	srcDir := t.TempDir()
	repoDir := t.TempDir()

	r, err := New(testConfig(t, repoDir))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	sources := []string{
		writeFile(t, srcDir, "pkg-1.0-1.el7.noarch.rpm"),
		writeFile(t, srcDir, "pkg-2.0-1.el7.noarch.rpm"),
	}
	if err := r.AddSources(sources); err != nil {
		t.Fatal(err)
	}
	// Save first so the surviving version's inode lives in the repo tree
	// before the old copies go away.
	if err := r.Save(); err != nil {
		t.Fatal(err)
	}

	removed, err := r.DeleteOld(1)
	if err != nil {
		t.Fatal(err)
	}
	// Both the original copy and its hardlink in the repo tree go away.
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed paths, got %v", removed)
	}
	if _, err := os.Stat(filepath.Join(repoDir, "rpm/el7/noarch/pkg-1.0-1.el7.noarch.rpm")); !os.IsNotExist(err) {
		t.Error("expected old version to be pruned from the repo")
	}
	if _, err := os.Stat(filepath.Join(repoDir, "rpm/el7/noarch/pkg-2.0-1.el7.noarch.rpm")); err != nil {
		t.Error("expected newest version to survive in the repo")
	}
}

func TestRepo_AddOnlyIfNewer(t *testing.T) {
	srcDir := t.TempDir()
	repoDir := t.TempDir()
	cfg := testConfig(t, repoDir)
	cfg.Flags.OnlyIfNewer = true

	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	sources := []string{
		writeFile(t, srcDir, "pkg-2.0-1.el7.noarch.rpm"),
		writeFile(t, srcDir, "pkg-1.0-1.el7.noarch.rpm"),
	}
	if err := r.AddSources(sources); err != nil {
		t.Fatal(err)
	}
	if err := r.Save(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(repoDir, "rpm/el7/noarch/pkg-1.0-1.el7.noarch.rpm")); !os.IsNotExist(err) {
		t.Error("expected the older rpm to be skipped")
	}
	if _, err := os.Stat(filepath.Join(repoDir, "rpm/el7/noarch/pkg-2.0-1.el7.noarch.rpm")); err != nil {
		t.Errorf("expected the newer rpm in the repo: %v", err)
	}
}

func TestRepo_LoadExistingGeneric(t *testing.T) {
	repoDir := t.TempDir()
	artDir := filepath.Join(repoDir, "installer", "2.0")
	if err := os.MkdirAll(artDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, artDir, "installer-2.0.iso")

	r, err := New(testConfig(t, repoDir))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	removed, err := r.DeleteOld(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 0 {
		t.Fatalf("a single version must survive pruning, got removed %v", removed)
	}

	// A second, newer version makes the reopened repo prune the first.
	r2, err := New(testConfig(t, repoDir))
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	srcDir := t.TempDir()
	if err := r2.AddSources([]string{writeFile(t, srcDir, "installer-3.0.iso")}); err != nil {
		t.Fatal(err)
	}
	if err := r2.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := r2.DeleteOld(1); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(repoDir, "installer", "2.0", "installer-2.0.iso")); !os.IsNotExist(err) {
		t.Error("expected the old generic version pruned after reopening")
	}
	if _, err := os.Stat(filepath.Join(repoDir, "installer", "3.0", "installer-3.0.iso")); err != nil {
		t.Errorf("expected the new generic version to survive: %v", err)
	}
}

func TestRepo_NoStoreForArtifact(t *testing.T) {
	srcDir := t.TempDir()
	cfg := testConfig(t, t.TempDir())
	cfg.Stores = []string{"rpm"}

	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.AddSources([]string{writeFile(t, srcDir, "notanrpm.txt")}); err == nil {
		t.Error("expected an error when no store handles the artifact")
	}
}

func TestRepo_UnknownStore(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Stores = []string{"no-such-store"}

	if _, err := New(cfg); err == nil {
		t.Error("expected an error for an unknown store name")
	}
}

func TestRepo_NoopSaveAndDelete(t *testing.T) {
	srcDir := t.TempDir()
	repoDir := t.TempDir()
	cfg := testConfig(t, repoDir)
	cfg.Noop = true

	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	path := writeFile(t, srcDir, "pkg-1.0-1.el7.noarch.rpm")
	if err := r.AddSources([]string{path}); err != nil {
		t.Fatal(err)
	}
	if err := r.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(repoDir, "rpm")); !os.IsNotExist(err) {
		t.Error("noop save must not write the repo tree")
	}

	if _, err := r.DeleteOld(1); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("noop delete must not remove source files")
	}
}
