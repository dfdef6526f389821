//go:build linux

package atomicwrite

import (
	"github.com/kernelio/fskit/ioerr"
	"golang.org/x/sys/unix"
)

// renameNoReplace issues a single renameat2(2) syscall with
// RENAME_NOREPLACE, failing atomically if targetPath already exists
// rather than racing an open-exclusive probe against it. Returns
// ioerr.Unsupported when the running kernel predates renameat2 (pre-3.15
// or a seccomp filter without it), so the caller can fall back to the
// portable probe sequence.
func renameNoReplace(tempPath, targetPath string) error {
	err := unix.Renameat2(unix.AT_FDCWD, tempPath, unix.AT_FDCWD, targetPath, unix.RENAME_NOREPLACE)
	if err == nil {
		return nil
	}
	if err == unix.ENOSYS || err == unix.EINVAL {
		return ioerr.New(ioerr.Unsupported, "atomicwrite: renameat2 not available")
	}
	if err == unix.EEXIST {
		return ioerr.New(ioerr.AlreadyExists, "atomicwrite: target already exists")
	}
	return ioerr.FromSyscallErrno("atomicwrite: renameat2", err)
}
