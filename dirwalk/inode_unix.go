//go:build !windows

package dirwalk

import (
	"os"
	"syscall"
)

// canonicalKey returns the (device, inode) pair identifying the
// directory at p, used to break symlink cycles during Walk (spec
// §4.4.2). ok is false if the platform stat doesn't expose one, in
// which case the caller cannot detect cycles through that entry.
func canonicalKey(p string) (visitedKey, bool) {
	fi, err := os.Stat(p)
	if err != nil {
		return visitedKey{}, false
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return visitedKey{}, false
	}
	return visitedKey{dev: uint64(st.Dev), ino: st.Ino}, true
}
