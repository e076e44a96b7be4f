// Package manifest implements the acquisition pipeline that turns a list of
// repository locators into one sorted, validated distinfo.Manifest:
// per-locator acquisition, defaulting/validation, and path rewriting, over
// local directories, local archives, and remote repositories.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/drahosp/luadist/internal/distinfo"
	"github.com/drahosp/luadist/internal/fetch"
	"github.com/drahosp/luadist/internal/logging"
	"github.com/drahosp/luadist/internal/sysfs"
)

// Loader acquires and assembles manifests from repository locators.
type Loader struct {
	fetch *fetch.Client
	fs    *sysfs.FS
	log   *logging.Logger
}

// New builds a Loader using client for remote/cached reads.
func New(client *fetch.Client, log *logging.Logger) *Loader {
	if log == nil {
		log = logging.Discard()
	}
	return &Loader{fetch: client, fs: sysfs.New(), log: log}
}

// prefetchWorkers bounds how many remote dist.manifest locators are warmed
// into the fetch cache concurrently ahead of Load's sequential pass.
const prefetchWorkers = 4

// Load acquires a manifest from each locator in order, validates every
// candidate, concatenates survivors in input order, then stable-sorts the
// result so the first repository wins ties among equal sort keys.
//
// Remote locators' dist.manifest files are warmed into the fetch cache
// concurrently first, since their order doesn't matter; the locators are
// then still acquired strictly in order so first-repository-wins
// composition and any local-directory/unpacked-dist locators interleaved
// among them behave exactly as if no prefetch had happened.
func (l *Loader) Load(locators []string) (distinfo.Manifest, error) {
	l.prefetchRemote(locators)

	var all distinfo.Manifest
	for _, loc := range locators {
		m, err := l.acquireOne(loc)
		if err != nil {
			return nil, fmt.Errorf("manifest: acquiring %s: %w", loc, err)
		}
		all = append(all, l.validateAndRewrite(m, loc)...)
	}
	distinfo.Sort(all)
	return all, nil
}

// prefetchRemote warms the fetch cache for every locator that classifies as
// remote, in parallel. A prefetch failure here is not fatal: the sequential
// acquireRemote pass in Load retries the fetch and reports any real error.
func (l *Loader) prefetchRemote(locators []string) {
	var jobs []fetch.BatchJob
	for _, loc := range locators {
		if kind, _ := classify(loc); kind == kindRemote {
			jobs = append(jobs, fetch.BatchJob{
				Key:     loc,
				Locator: strings.TrimRight(loc, "/") + "/dist.manifest",
			})
		}
	}
	if len(jobs) == 0 {
		return
	}
	for _, r := range l.fetch.Prefetch(jobs, prefetchWorkers) {
		if r.Error != nil {
			l.log.Debugf("manifest: prefetching %s: %v", r.Key, r.Error)
		}
	}
}

// validateAndRewrite applies defaults and validation to each candidate,
// dropping invalid ones with a warning instead of aborting the whole load,
// and rewrites path per locator kind.
func (l *Loader) validateAndRewrite(candidates []rawCandidate, locator string) distinfo.Manifest {
	out := make(distinfo.Manifest, 0, len(candidates))
	for _, c := range candidates {
		distinfo.ApplyDefaults(c.info)
		if err := distinfo.Validate(c.info); err != nil {
			l.log.Warnf("manifest: dropping %s-%s from %s: %v", c.info.Name, c.info.Version, locator, err)
			continue
		}
		c.info.Path = c.path
		out = append(out, c.info)
	}
	return out
}

// rawCandidate pairs a freshly parsed DistInfo with the path its fetched
// archive/package should be loaded from, before validation stamps it onto
// the record.
type rawCandidate struct {
	info *distinfo.DistInfo
	path string
}

func (l *Loader) acquireOne(locator string) ([]rawCandidate, error) {
	switch kind, local := classify(locator); kind {
	case kindUnpackedDist:
		return l.acquireUnpackedDist(local)
	case kindLocalDir:
		return l.acquireLocalDir(local)
	default:
		return l.acquireRemote(locator)
	}
}

type locatorKind int

const (
	kindRemote locatorKind = iota
	kindLocalDir
	kindUnpackedDist
)

// classify inspects a locator and decides whether it names a directory
// already containing dist.info, a plain local directory to walk, or a
// remote repository.
func classify(locator string) (locatorKind, string) {
	path, ok := localPath(locator)
	if !ok {
		return kindRemote, ""
	}
	if fileExists(filepath.Join(path, "dist.info")) {
		return kindUnpackedDist, path
	}
	if isDir(path) {
		return kindLocalDir, path
	}
	return kindRemote, ""
}

func localPath(locator string) (string, bool) {
	if strings.HasPrefix(locator, "file://") {
		return strings.TrimPrefix(locator, "file://"), true
	}
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return "", false
	}
	return locator, true
}

func (l *Loader) acquireUnpackedDist(dir string) ([]rawCandidate, error) {
	text, err := readFile(filepath.Join(dir, "dist.info"))
	if err != nil {
		return nil, err
	}
	info, err := distinfo.ParseRecordText(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s/dist.info: %w", dir, err)
	}
	return []rawCandidate{{info: info, path: dir}}, nil
}

// acquireLocalDir recursively walks dir, attempting dist.info then
// archive-probing at each entry, recursing into subdirectories that
// produced no dist.
func (l *Loader) acquireLocalDir(dir string) ([]rawCandidate, error) {
	var out []rawCandidate
	if err := l.walk(dir, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) walk(dir string, out *[]rawCandidate) error {
	entries, err := l.fs.TopLevelEntries(dir)
	if err != nil {
		return err
	}
	for _, name := range entries {
		entryPath := filepath.Join(dir, name)

		if fileExists(filepath.Join(entryPath, "dist.info")) {
			text, err := readFile(filepath.Join(entryPath, "dist.info"))
			if err != nil {
				l.log.Warnf("manifest: reading %s: %v", entryPath, err)
				continue
			}
			info, err := distinfo.ParseRecordText(text)
			if err != nil {
				l.log.Warnf("manifest: parsing %s: %v", entryPath, err)
				continue
			}
			*out = append(*out, rawCandidate{info: info, path: entryPath})
			continue
		}

		if isArchiveName(name) {
			found, text, err := sysfs.ProbeArchive(entryPath)
			if err != nil {
				l.log.Warnf("manifest: probing %s: %v", entryPath, err)
				continue
			}
			if found {
				info, err := distinfo.ParseRecordText(text)
				if err != nil {
					l.log.Warnf("manifest: parsing dist.info in %s: %v", entryPath, err)
					continue
				}
				*out = append(*out, rawCandidate{info: info, path: entryPath})
				continue
			}
		}

		if isDir(entryPath) {
			if err := l.walk(entryPath, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func isArchiveName(name string) bool {
	return strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".dist")
}

// acquireRemote fetches <locator>/dist.manifest and decodes it verbatim
// when the locator is neither an unpacked dist nor a local directory.
func (l *Loader) acquireRemote(locator string) ([]rawCandidate, error) {
	url := strings.TrimRight(locator, "/") + "/dist.manifest"
	data, err := l.fetch.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	m, err := distinfo.ParseManifestText(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	out := make([]rawCandidate, len(m))
	for i, info := range m {
		out[i] = rawCandidate{info: info, path: info.Path}
	}
	return out, nil
}
