package copy

import (
	"io"
	"os"

	"github.com/kernelio/fskit/ioerr"
)

// manualCopyChunkSize is the minimum chunk size spec §4.3 requires for
// the manual byte-copy loop ("copies in chunks of at least 64 KiB").
const manualCopyChunkSize = 64 * 1024

// manualLoop is the universal last-resort tier: a chunked read/write
// loop with no kernel-assisted copy offload. Unlike the teacher's
// common.CopyWhole, it never takes the io.WriterTo/io.ReaderFrom
// shortcut, since that would bypass the fixed chunk size this tier
// exists to guarantee.
func manualLoop(src, dst *os.File, size int64) error {
	buf := make([]byte, manualCopyChunkSize)
	remaining := size
	for remaining > 0 {
		want := len(buf)
		if int64(want) > remaining {
			want = int(remaining)
		}
		n, err := src.Read(buf[:want])
		if n > 0 {
			if werr := writeFull(dst, buf[:n]); werr != nil {
				return ioerr.FromSyscallErrno("copy: write", werr)
			}
			remaining -= int64(n)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return ioerr.FromSyscallErrno("copy: read", err)
		}
	}
	return nil
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
