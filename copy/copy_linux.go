//go:build linux

package copy

import (
	"os"

	"github.com/kernelio/fskit/ioerr"
	"golang.org/x/sys/unix"
)

// No path-based tier on Linux; copy_file_range and sendfile both write
// into a descriptor the ladder pre-opens for us.
var platformPathTier *namedPathTier

var platformFDTiers = func() []namedTier {
	return []namedTier{
		{name: "copy_file_range", fn: copyFileRangeTier},
		{name: "sendfile", fn: sendfileTier},
		{name: "manual", fn: manualLoop},
	}
}

// copyFileRangeTier is tier 1 on Linux (spec §4.3's table): a single
// in-kernel copy, reflink-aware on filesystems that support it.
func copyFileRangeTier(src, dst *os.File, size int64) error {
	remaining := size
	for remaining > 0 {
		n, err := unix.CopyFileRange(int(src.Fd()), nil, int(dst.Fd()), nil, int(remaining), 0)
		if err != nil {
			return ioerr.FromSyscallErrno("copy_file_range", err)
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
	}
	return nil
}

// sendfileTier is tier 2: the older in-kernel file-to-file copy path,
// tried when copy_file_range is unsupported for this pair (e.g. across
// filesystems that don't agree on a common copy offload).
func sendfileTier(src, dst *os.File, size int64) error {
	remaining := int(size)
	var off int64
	for remaining > 0 {
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &off, remaining)
		if err != nil {
			return ioerr.FromSyscallErrno("sendfile", err)
		}
		if n == 0 {
			break
		}
		remaining -= n
	}
	return nil
}
