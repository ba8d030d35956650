package download

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"http://example.com/pkg.rpm", true},
		{"https://example.com/pkg.rpm", true},
		{"/local/path/pkg.rpm", false},
		{"conf:sources.list", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.source); got != tt.want {
			t.Errorf("IsURL(%s) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	name, err := FileName("https://example.com/repo/pkg-1.0-1.el7.noarch.rpm")
	if err != nil {
		t.Fatal(err)
	}
	if name != "pkg-1.0-1.el7.noarch.rpm" {
		t.Errorf("unexpected name %s", name)
	}

	if _, err := FileName("https://example.com/repo/"); err == nil {
		t.Error("expected trailing slash to be rejected")
	}
}

func TestClient_ToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("rpm bytes"))
	}))
	defer server.Close()

	client := NewClient(Options{VerifySSL: true})
	dest, err := client.ToFile(server.URL+"/pkg-1.0-1.el7.noarch.rpm", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "rpm bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestClient_ToFileRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok after retries"))
	}))
	defer server.Close()

	client := NewClient(Options{Retries: 3, VerifySSL: true})
	dest, err := client.ToFile(server.URL+"/pkg-1.0-1.el7.noarch.rpm", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "ok after retries" {
		t.Errorf("unexpected content %q", data)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_ToFileStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Options{VerifySSL: true})
	if _, err := client.ToFile(server.URL+"/missing.rpm", t.TempDir()); err == nil {
		t.Error("expected an error for 404")
	}
}
