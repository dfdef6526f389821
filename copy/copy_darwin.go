//go:build darwin

package copy

import (
	"unsafe"

	"github.com/kernelio/fskit/ioerr"
	"golang.org/x/sys/unix"
)

// sysCloneFileAt is the XNU syscall number for clonefileat(2). It isn't
// exported by every golang.org/x/sys/unix release, so it is pinned here
// the same way the moby-moby FICLONE ioctl constant is pinned via cgo
// on Linux in the reference this package is grounded on.
const sysCloneFileAt = 462

var platformPathTier = &namedPathTier{name: "clone", fn: cloneTier}

// platformFDTiers collapses spec §4.3's Darwin tiers 2 and 3
// ("kernel-copy of data" and "manual byte-copy loop") into the manual
// loop alone: the kernel-copy tier is copyfile(3)'s COPYFILE_DATA mode,
// which has no cgo-free binding in this module's dependency set, so
// only clone (tier 1) and the manual loop are offered. A failed clone
// attempt (old APFS volume format, or a non-APFS destination) falls
// straight through to the manual loop via the same retry-next-tier path
// spec §4.3 defines for EXDEV/ENOSYS.
var platformFDTiers = func() []namedTier {
	return []namedTier{{name: "manual", fn: manualLoop}}
}

// cloneTier is tier 1 on Darwin (spec §4.3): a copy-on-write clone via
// clonefileat(2). It creates the destination itself; on success the
// clone already carries source attributes, so Copy must not re-apply
// them.
func cloneTier(srcPath, dstPath string) error {
	srcb, err := unix.BytePtrFromString(srcPath)
	if err != nil {
		return ioerr.Wrap(ioerr.InvalidArgument, "clonefileat", err)
	}
	dstb, err := unix.BytePtrFromString(dstPath)
	if err != nil {
		return ioerr.Wrap(ioerr.InvalidArgument, "clonefileat", err)
	}

	_, _, errno := unix.Syscall6(
		sysCloneFileAt,
		uintptr(unix.AT_FDCWD),
		uintptr(unsafe.Pointer(srcb)),
		uintptr(unix.AT_FDCWD),
		uintptr(unsafe.Pointer(dstb)),
		0, 0,
	)
	if errno != 0 {
		return ioerr.FromSyscallErrno("clonefileat", errno)
	}
	return nil
}
