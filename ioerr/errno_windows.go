//go:build windows

package ioerr

import (
	"errors"

	"golang.org/x/sys/windows"
)

// FromSyscallErrno classifies a raw Windows error into the stable taxonomy. See
// the unix variant for the POSIX equivalent.
func FromSyscallErrno(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
		return Wrap(NotFound, op, err)
	case errors.Is(err, windows.ERROR_FILE_EXISTS), errors.Is(err, windows.ERROR_ALREADY_EXISTS):
		return Wrap(AlreadyExists, op, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return Wrap(PermissionDenied, op, err)
	case errors.Is(err, windows.ERROR_DIRECTORY):
		return Wrap(NotDirectory, op, err)
	case errors.Is(err, windows.ERROR_DISK_FULL):
		return Wrap(NoSpace, op, err)
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		return Wrap(InvalidArgument, op, err)
	case errors.Is(err, windows.ERROR_INVALID_HANDLE):
		return Wrap(InvalidHandle, op, err)
	case errors.Is(err, windows.ERROR_NOT_SUPPORTED), errors.Is(err, windows.ERROR_CALL_NOT_IMPLEMENTED):
		return Wrap(Unsupported, op, err)
	default:
		return Wrap(IO, op, err)
	}
}

// RetryNextTier reports whether err indicates the copy primitive is
// unsupported for this argument pair rather than a hard failure.
func RetryNextTier(err error) bool {
	switch {
	case errors.Is(err, windows.ERROR_NOT_SUPPORTED),
		errors.Is(err, windows.ERROR_CALL_NOT_IMPLEMENTED),
		errors.Is(err, windows.ERROR_NOT_SAME_DEVICE):
		return true
	default:
		return false
	}
}

// IsEINTR is always false on Windows; there is no interrupted-syscall
// equivalent in the Win32 API surface this module uses.
func IsEINTR(err error) bool {
	return false
}
