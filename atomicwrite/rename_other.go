//go:build !linux

package atomicwrite

import "github.com/kernelio/fskit/ioerr"

// renameNoReplace has no single-syscall binding in this module's
// dependency set on Darwin (renamex_np/RENAME_EXCL) or Windows
// (FILE_RENAME_FLAG_POSIX_SEMANTICS requires a newer SetFileInformationByHandle
// call this module doesn't bind). Both fall back to the portable
// open-exclusive probe in renameIntoPlace.
func renameNoReplace(tempPath, targetPath string) error {
	return ioerr.New(ioerr.Unsupported, "atomicwrite: rename-no-replace not implemented on this platform")
}
