//go:build !windows

package ioerr

import (
	"errors"

	"golang.org/x/sys/unix"
)

// FromSyscallErrno classifies a raw POSIX errno (or an error wrapping one) into
// the stable taxonomy, wrapping it with op for context. Transient
// "interrupted system call" errors are never meant to reach here:
// callers that issue raw syscalls must retry on EINTR internally before
// calling FromSyscallErrno (see handle.retryEINTR).
func FromSyscallErrno(op string, err error) error {
	if err == nil {
		return nil
	}
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return Wrap(IO, op, err)
	}
	switch errno {
	case unix.ENOENT:
		return Wrap(NotFound, op, err)
	case unix.EEXIST:
		return Wrap(AlreadyExists, op, err)
	case unix.EACCES, unix.EPERM:
		return Wrap(PermissionDenied, op, err)
	case unix.EISDIR:
		return Wrap(IsDirectory, op, err)
	case unix.ENOTDIR:
		return Wrap(NotDirectory, op, err)
	case unix.ENOSPC, unix.EDQUOT:
		return Wrap(NoSpace, op, err)
	case unix.EINVAL:
		return Wrap(InvalidArgument, op, err)
	case unix.EBADF:
		return Wrap(InvalidHandle, op, err)
	case unix.ENOSYS, unix.EOPNOTSUPP:
		return Wrap(Unsupported, op, err)
	default:
		return Wrap(IO, op, err)
	}
}

// RetryNextTier reports whether errno indicates that a copy-engine tier
// is unsupported for this argument pair (cross-device, cross-filesystem,
// or the kernel primitive is disabled) rather than a hard failure. See
// spec §4.3 "Retry-next-tier classification".
func RetryNextTier(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.EXDEV, unix.ENOSYS, unix.EOPNOTSUPP, unix.EINVAL:
		return true
	default:
		return false
	}
}

// IsEINTR reports whether err is the POSIX "interrupted system call"
// errno, which every blocking-syscall wrapper in this module must retry
// transparently rather than surface.
func IsEINTR(err error) bool {
	return errors.Is(err, unix.EINTR)
}
