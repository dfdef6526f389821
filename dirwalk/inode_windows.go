//go:build windows

package dirwalk

import (
	"golang.org/x/sys/windows"
)

// canonicalKey returns a (volume serial, file index) pair identifying
// the directory at p, Windows' analogue of (device, inode) for cycle
// detection during Walk (spec §4.4.2).
func canonicalKey(p string) (visitedKey, bool) {
	ptr, err := windows.UTF16PtrFromString(p)
	if err != nil {
		return visitedKey{}, false
	}
	h, err := windows.CreateFile(
		ptr,
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return visitedKey{}, false
	}
	defer windows.CloseHandle(h)

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return visitedKey{}, false
	}

	dev := uint64(info.VolumeSerialNumber)
	ino := uint64(info.FileIndexHigh)<<32 | uint64(info.FileIndexLow)
	return visitedKey{dev: dev, ino: ino}, true
}
