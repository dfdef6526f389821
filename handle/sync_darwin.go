//go:build darwin

package handle

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func platformCloseOnExecFlag(closeOnExec bool) int {
	if closeOnExec {
		return syscall.O_CLOEXEC
	}
	return 0
}

// platformSync implements the Darwin side of spec §6: full -> the
// F_FULLFSYNC fcntl (device-level flush, stronger than fsync(2) on
// APFS/HFS+); data-only -> fdatasync is unavailable on Darwin, so a full
// fsync is used, exactly as the spec's durability mapping specifies.
func platformSync(f *os.File, mode SyncMode) error {
	fd := int(f.Fd())
	if mode == SyncFull {
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0); err == nil {
			return nil
		}
		// F_FULLFSYNC is refused on some filesystems (e.g. certain
		// network mounts); fall back to a plain fsync rather than
		// failing durability outright.
	}
	return unix.Fsync(fd)
}

// SyncDir fsyncs the directory at path; required for rename durability
// under atomicwrite durability=full (spec §4.4.1 step 7).
func SyncDir(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	defer dir.Close()
	_, err = unix.FcntlInt(dir.Fd(), unix.F_FULLFSYNC, 0)
	if err != nil {
		err = unix.Fsync(int(dir.Fd()))
	}
	return err
}
