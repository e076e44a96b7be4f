// Package fetch resolves a single locator (an http(s) URL, a file:// URL,
// or a bare local path) to bytes on disk, with a TTL disk cache keyed by
// the URL's MD5 hex digest and atomic .part-then-rename writes, shared by
// every component that needs a remote read.
package fetch

import (
	"crypto/md5"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/drahosp/luadist/internal/config"
	"github.com/drahosp/luadist/internal/logging"
)

// Client fetches locators to local paths, caching HTTP(S) results on disk.
type Client struct {
	http     *http.Client
	cacheDir string
	ttl      time.Duration
	agent    string
	log      *logging.Logger
}

// New builds a Client from cfg. cacheDir is <cfg.TempRoot>/luadist_cache,
// or the OS temp dir's equivalent when TempRoot is empty.
func New(cfg config.Config) *Client {
	root := cfg.TempRoot
	if root == "" {
		root = os.TempDir()
	}

	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Client{
		http:     &http.Client{Transport: transport, Timeout: cfg.FetchTimeout},
		cacheDir: filepath.Join(root, "luadist_cache"),
		ttl:      cfg.CacheTTL,
		agent:    cfg.UserAgent,
		log:      log,
	}
}

// cacheKey returns the cache file name for locator: the hex MD5 digest of
// the locator string, so unrelated URLs never collide and the same URL
// always maps back to the same cache entry.
func cacheKey(locator string) string {
	sum := md5.Sum([]byte(locator))
	return hex.EncodeToString(sum[:])
}

// isLocal reports whether locator is a file:// URL or a bare filesystem
// path rather than an http(s) locator.
func isLocal(locator string) (path string, ok bool) {
	if strings.HasPrefix(locator, "file://") {
		return strings.TrimPrefix(locator, "file://"), true
	}
	if !strings.HasPrefix(locator, "http://") && !strings.HasPrefix(locator, "https://") {
		return locator, true
	}
	return "", false
}

// Get returns the bytes behind locator, reading straight from disk for
// local paths and serving the TTL cache (or re-fetching past it) for
// http(s) locators.
func (c *Client) Get(locator string) ([]byte, error) {
	path, err := c.Resolve(locator)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading %s: %w", path, err)
	}
	return data, nil
}

// Resolve returns a local filesystem path holding locator's content,
// downloading and caching it first if locator is remote.
func (c *Client) Resolve(locator string) (string, error) {
	if path, ok := isLocal(locator); ok {
		return path, nil
	}
	return c.cachedDownload(locator)
}

// Download fetches locator and places a copy named baseName under destDir,
// by way of the TTL cache (so repeated calls for the same locator from
// different destDirs still only hit the network once per TTL window).
func (c *Client) Download(locator, destDir, baseName string) (string, error) {
	cached, err := c.Resolve(locator)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("fetch: creating %s: %w", destDir, err)
	}
	dest := filepath.Join(destDir, baseName)
	data, err := os.ReadFile(cached)
	if err != nil {
		return "", fmt.Errorf("fetch: reading cache entry: %w", err)
	}
	if err := writeAtomic(dest, data); err != nil {
		return "", err
	}
	return dest, nil
}

func (c *Client) cachedDownload(locator string) (string, error) {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("fetch: creating cache dir: %w", err)
	}
	cached := filepath.Join(c.cacheDir, cacheKey(locator))

	if c.ttl > 0 {
		if info, err := os.Stat(cached); err == nil {
			if time.Since(info.ModTime()) < c.ttl {
				c.log.Debugf("fetch: cache hit for %s", locator)
				return cached, nil
			}
			c.log.Debugf("fetch: cache entry for %s stale, re-fetching", locator)
		}
	}

	data, err := c.httpGet(locator)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(cached, data); err != nil {
		return "", err
	}
	return cached, nil
}

func (c *Client) httpGet(locator string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request for %s: %w", locator, err)
	}
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %s: HTTP %d", locator, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading body of %s: %w", locator, err)
	}
	return data, nil
}

// writeAtomic writes data to path via a sibling .part file followed by a
// rename, so a reader never observes a partially written cache entry.
func writeAtomic(path string, data []byte) error {
	part := path + ".part"
	if err := os.WriteFile(part, data, 0o644); err != nil {
		return fmt.Errorf("fetch: writing %s: %w", part, err)
	}
	if err := os.Rename(part, path); err != nil {
		os.Remove(part)
		return fmt.Errorf("fetch: renaming %s: %w", part, err)
	}
	return nil
}
