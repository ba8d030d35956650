package source

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repoman/internal/download"
)

func newTestExpander(t *testing.T) *Expander {
	t.Helper()
	return NewExpander(download.NewClient(download.Options{VerifySSL: true}), t.TempDir())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExpander_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pkg-1.0-1.el7.noarch.rpm", "rpm")

	result, err := newTestExpander(t).Expand([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 1 || result.Paths[0] != path {
		t.Fatalf("expected [%s], got %v", path, result.Paths)
	}
}

func TestExpander_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/pkg-1.0-1.el7.noarch.rpm", "rpm")
	writeFile(t, dir, "b/pkg-2.0-1.el7.noarch.rpm", "rpm")

	result, err := newTestExpander(t).Expand([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", result.Paths)
	}
}

func TestExpander_MissingSource(t *testing.T) {
	if _, err := newTestExpander(t).Expand([]string{"/no/such/source"}); err == nil {
		t.Error("expected an error for a missing source")
	}
}

func TestExpander_RepoSuffix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pkg-1.0-1.el7.noarch.rpm", "rpm")

	result, err := newTestExpander(t).Expand([]string{"repo-suffix:nightly", path})
	if err != nil {
		t.Fatal(err)
	}
	if result.RepoSuffix != "nightly" {
		t.Errorf("expected suffix nightly, got %q", result.RepoSuffix)
	}
	if len(result.Paths) != 1 {
		t.Errorf("expected 1 path, got %v", result.Paths)
	}
}

func TestExpander_ConfFile(t *testing.T) {
	dir := t.TempDir()
	pkg1 := writeFile(t, dir, "pkg-1.0-1.el7.noarch.rpm", "rpm")
	pkg2 := writeFile(t, dir, "pkg-2.0-1.el7.noarch.rpm", "rpm")
	conf := writeFile(t, dir, "sources.list", strings.Join([]string{
		"# artifact sources",
		"repo-suffix:pr42",
		pkg1,
		"",
		pkg2,
	}, "\n"))

	result, err := newTestExpander(t).Expand([]string{"conf:" + conf})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", result.Paths)
	}
	if result.RepoSuffix != "pr42" {
		t.Errorf("expected suffix pr42, got %q", result.RepoSuffix)
	}
}

func TestExpander_ConfStdin(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pkg-1.0-1.el7.noarch.rpm", "rpm")

	expander := newTestExpander(t)
	expander.stdin = strings.NewReader(path + "\n")

	result, err := expander.Expand([]string{"conf:stdin"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 1 || result.Paths[0] != path {
		t.Fatalf("expected [%s], got %v", path, result.Paths)
	}
}

func TestExpander_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("rpm bytes"))
	}))
	defer server.Close()

	expander := newTestExpander(t)
	result, err := expander.Expand([]string{server.URL + "/pkg-1.0-1.el7.noarch.rpm"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 1 {
		t.Fatalf("expected 1 path, got %v", result.Paths)
	}
	if filepath.Base(result.Paths[0]) != "pkg-1.0-1.el7.noarch.rpm" {
		t.Errorf("unexpected downloaded name %s", result.Paths[0])
	}
}
