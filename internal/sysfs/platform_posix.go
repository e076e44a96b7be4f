//go:build !windows

package sysfs

import (
	"os"
	"strings"
)

func newPlatform() Platform { return posixPlatform{} }

type posixPlatform struct{}

// Quote wraps path in single quotes, escaping any embedded single quote the
// POSIX-shell way: close, escaped quote, reopen.
func (posixPlatform) Quote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

func (posixPlatform) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, newname)
}
