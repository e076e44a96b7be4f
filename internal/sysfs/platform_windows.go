//go:build windows

package sysfs

import (
	"os"
	"path/filepath"
)

func newPlatform() Platform { return windowsPlatform{} }

type windowsPlatform struct{}

// Quote wraps path in double quotes for cmd.exe; path must not itself
// contain a double quote, which is already excluded by the filesystem.
func (windowsPlatform) Quote(path string) string {
	return `"` + path + `"`
}

// Symlink tries a real symlink first (available under Developer Mode or
// elevated processes on modern Windows) and falls back to a plain copy,
// since LayoutMode's symlink mode must still produce a working deployment
// on installs without symlink privilege.
func (windowsPlatform) Symlink(oldname, newname string) error {
	if err := os.Symlink(oldname, newname); err == nil {
		return nil
	}
	target := oldname
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(newname), oldname)
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	fs := &FS{platform: windowsPlatform{}}
	if info.IsDir() {
		return fs.CopyTree(target, newname)
	}
	return fs.CopyFile(target, newname)
}
