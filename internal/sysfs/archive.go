package sysfs

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Excluded file-name patterns never copied into a packed archive: VCS and
// editor/OS scratch droppings that shouldn't travel with a distribution.
var packExcludePatterns = []string{".git", ".svn", "~", ".DS_Store"}

// isExcluded reports whether name, a slash-separated path relative to the
// tree being packed, falls under an excluded directory or matches an
// excluded file at any depth — not just at its own basename, so a nested
// ".git/config" is excluded along with a top-level ".git".
func isExcluded(name string) bool {
	segments := strings.Split(filepath.ToSlash(name), "/")
	for _, seg := range segments {
		for _, pat := range packExcludePatterns {
			if strings.HasPrefix(pat, ".") && strings.HasPrefix(seg, pat) {
				return true
			}
			if strings.HasSuffix(pat, "~") && strings.HasSuffix(seg, pat) {
				return true
			}
		}
	}
	return false
}

// ProbeArchive reports whether path is a ZIP archive containing a
// dist.info member, and returns that member's text when present. Used by
// the manifest pipeline's local-directory walk to recognize a packed dist
// sitting next to unpacked ones.
func ProbeArchive(path string) (found bool, distInfoText string, err error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, "", nil // not a zip at all; caller treats as "no match"
	}
	defer r.Close()

	for _, f := range r.File {
		if filepath.Base(f.Name) == "dist.info" {
			rc, err := f.Open()
			if err != nil {
				return false, "", fmt.Errorf("sysfs: opening dist.info in %s: %w", path, err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return false, "", fmt.Errorf("sysfs: reading dist.info in %s: %w", path, err)
			}
			return true, string(data), nil
		}
	}
	return false, "", nil
}

// ExtractZip unpacks every entry of archivePath under destDir, preserving
// relative paths, and returns the single top-level directory the archive
// unpacks into, if all entries share one (the common shape for a packed
// dist, name-version/...).
func ExtractZip(archivePath, destDir string) (topLevel string, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("sysfs: opening %s: %w", archivePath, err)
	}
	defer r.Close()

	roots := map[string]bool{}
	for _, f := range r.File {
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
			return "", fmt.Errorf("sysfs: zip entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", err
		}
		if err := extractOne(f, target); err != nil {
			return "", fmt.Errorf("sysfs: extracting %q: %w", f.Name, err)
		}

		if parts := strings.SplitN(filepath.ToSlash(f.Name), "/", 2); len(parts) == 2 {
			roots[parts[0]] = true
		}
	}

	if len(roots) == 1 {
		for r := range roots {
			return filepath.Join(destDir, r), nil
		}
	}
	return destDir, nil
}

func extractOne(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// CreateZip archives every file under srcDir into destZipPath, with entry
// names rooted at rootName (so the archive's members read
// "rootName/relative/path"), skipping VCS and scratch files.
func CreateZip(srcDir, destZipPath, rootName string) error {
	fs := New()
	files, err := fs.RecursiveList(srcDir)
	if err != nil {
		return err
	}
	sort.Strings(files)

	if err := fs.EnsureDir(filepath.Dir(destZipPath)); err != nil {
		return err
	}
	out, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("sysfs: creating %s: %w", destZipPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, rel := range files {
		if isExcluded(rel) {
			continue
		}
		if err := addZipEntry(zw, filepath.Join(srcDir, rel), rootName+"/"+rel); err != nil {
			zw.Close()
			return fmt.Errorf("sysfs: adding %s: %w", rel, err)
		}
	}
	return zw.Close()
}

func addZipEntry(zw *zip.Writer, srcPath, entryName string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = entryName
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}
