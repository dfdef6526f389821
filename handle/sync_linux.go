//go:build linux

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

// platformSync implements the Linux side of spec §6's durability↔syscall
// mapping: full -> fsync, data-only -> fdatasync where available.
func platformSync(f *os.File, mode SyncMode) error {
	fd := int(f.Fd())
	switch mode {
	case SyncDataOnly:
		return unix.Fdatasync(fd)
	default:
		return unix.Fsync(fd)
	}
}

// SyncDir fsyncs the directory at path; required for rename durability
// under atomicwrite durability=full (spec §4.4.1 step 7).
func SyncDir(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	defer dir.Close()
	return unix.Fsync(int(dir.Fd()))
}
