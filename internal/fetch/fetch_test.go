package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drahosp/luadist/internal/config"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.TempRoot = t.TempDir()
	cfg.CacheTTL = time.Hour
	return cfg
}

func TestGet_RemoteFetchesAndCaches(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Write([]byte("dist.manifest contents"))
	}))
	defer server.Close()

	c := New(testConfig(t))
	data, err := c.Get(server.URL + "/dist.manifest")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "dist.manifest contents" {
		t.Errorf("data = %q", data)
	}

	if _, err := c.Get(server.URL + "/dist.manifest"); err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if requestCount != 1 {
		t.Errorf("server was called %d times, want 1 (second call should hit cache)", requestCount)
	}
}

func TestGet_StaleCacheReFetches(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Write([]byte("v"))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.CacheTTL = time.Nanosecond
	c := New(cfg)

	if _, err := c.Get(server.URL + "/f"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := c.Get(server.URL + "/f"); err != nil {
		t.Fatal(err)
	}
	if requestCount != 2 {
		t.Errorf("server was called %d times, want 2 (stale cache should re-fetch)", requestCount)
	}
}

func TestGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(testConfig(t))
	if _, err := c.Get(server.URL + "/missing"); err == nil {
		t.Error("Get() should return an error for HTTP 404")
	}
}

func TestGet_LocalPathPassthrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dist.info")
	os.WriteFile(path, []byte(`name = "widget"`), 0o644)

	c := New(testConfig(t))
	data, err := c.Get(path)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != `name = "widget"` {
		t.Errorf("data = %q", data)
	}
}

func TestGet_FileURLPassthrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dist.info")
	os.WriteFile(path, []byte("contents"), 0o644)

	c := New(testConfig(t))
	data, err := c.Get("file://" + path)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "contents" {
		t.Errorf("data = %q", data)
	}
}

func TestDownload_WritesToDestDir(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	c := New(testConfig(t))
	destDir := t.TempDir()
	path, err := c.Download(server.URL+"/widget.zip", destDir, "widget-1.0.zip")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "archive bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestPrefetch_Parallel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content for " + r.URL.Path))
	}))
	defer server.Close()

	c := New(testConfig(t))
	jobs := []BatchJob{
		{Key: "a", Locator: server.URL + "/a"},
		{Key: "b", Locator: server.URL + "/b"},
		{Key: "c", Locator: server.URL + "/c"},
	}

	results := c.Prefetch(jobs, 3)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("Prefetch(%s) error = %v", r.Key, r.Error)
		}
	}
}
