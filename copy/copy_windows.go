//go:build windows

package copy

import (
	"unsafe"

	"github.com/kernelio/fskit/ioerr"
	"golang.org/x/sys/windows"
)

var (
	modkernel32   = windows.NewLazySystemDLL("kernel32.dll")
	procCopyFileW = modkernel32.NewProc("CopyFileW")
)

var platformPathTier = &namedPathTier{name: "copyfilew", fn: copyFileWTier}

// platformFDTiers is the manual loop alone: spec §4.3's Windows table
// lists only CopyFileW and the manual loop, with no fd-based
// intermediate tier.
var platformFDTiers = func() []namedTier {
	return []namedTier{{name: "manual", fn: manualLoop}}
}

// copyFileWTier is tier 1 on Windows (spec §4.3): the Win32 CopyFileW
// API, which already carries attributes on success. Bound via
// NewLazySystemDLL/NewProc rather than a direct syscall import, matching
// the teacher's dependency surface (golang.org/x/sys/windows) without
// adding a CGO dependency on windows.h.
func copyFileWTier(srcPath, dstPath string) error {
	srcPtr, err := windows.UTF16PtrFromString(srcPath)
	if err != nil {
		return ioerr.Wrap(ioerr.InvalidArgument, "CopyFileW", err)
	}
	dstPtr, err := windows.UTF16PtrFromString(dstPath)
	if err != nil {
		return ioerr.Wrap(ioerr.InvalidArgument, "CopyFileW", err)
	}

	r, _, callErr := procCopyFileW.Call(
		uintptr(unsafe.Pointer(srcPtr)),
		uintptr(unsafe.Pointer(dstPtr)),
		uintptr(1), // bFailIfExists: preflight already guarantees absence
	)
	if r == 0 {
		return ioerr.FromSyscallErrno("CopyFileW", callErr)
	}
	return nil
}
