package dirwalk

import (
	"os"

	"github.com/kernelio/fskit/ioerr"
	"github.com/kernelio/fskit/path"
)

// dirHandle is the blocking directory descriptor driven from inside an
// executor worker; it satisfies executor.Closer so it can live in the
// handle registry like any other C1 handle.
type dirHandle struct {
	f *os.File
}

func openDir(p path.Path) (*dirHandle, error) {
	f, err := os.Open(p.String())
	if err != nil {
		return nil, ioerr.FromSyscallErrno("opendir", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ioerr.FromSyscallErrno("stat", err)
	}
	if !fi.IsDir() {
		f.Close()
		return nil, ioerr.New(ioerr.NotDirectory, "dirwalk: not a directory")
	}
	return &dirHandle{f: f}, nil
}

func (d *dirHandle) Close() error {
	if err := d.f.Close(); err != nil {
		return ioerr.FromSyscallErrno("close", err)
	}
	return nil
}

// readBatch reads up to n directory entries, matching spec §4.4.2's
// batching: a single logical batch per executor submission, in the
// underlying iterator's natural order.
func (d *dirHandle) readBatch(n int) ([]DirEntry, error) {
	raw, err := d.f.ReadDir(n)
	out := make([]DirEntry, len(raw))
	for i, e := range raw {
		out[i] = DirEntry{Name: e.Name(), Type: classifyType(e)}
	}
	return out, err
}
