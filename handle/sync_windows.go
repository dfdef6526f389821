//go:build windows

package handle

import (
	"os"

	"golang.org/x/sys/windows"
)

func platformCloseOnExecFlag(closeOnExec bool) int {
	// Windows has no O_CLOEXEC equivalent at the CreateFile level; handle
	// inheritance is controlled separately via SECURITY_ATTRIBUTES, which
	// os.OpenFile does not expose. Nothing to set here.
	return 0
}

// platformSync implements the Windows side of spec §6: both full and
// data-only durability map to FlushFileBuffers, since Windows has no
// weaker metadata-lagging flush primitive analogous to fdatasync.
func platformSync(f *os.File, mode SyncMode) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}

// SyncDir fsyncs the directory at path; required for rename durability
// under atomicwrite durability=full (spec §4.4.1 step 7).
func SyncDir(path string) error {
	// NTFS does not require a directory handle flush to persist a
	// rename; FlushFileBuffers on the renamed file's own handle is
	// sufficient. This is a deliberate no-op, unlike the POSIX variants.
	return nil
}
