package handle_test

import (
	"io"
	"os"
	"testing"

	"github.com/kernelio/fskit/handle"
	"github.com/kernelio/fskit/ioerr"
	"github.com/kernelio/fskit/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T, name string) path.Path {
	t.Helper()
	p, err := path.New(t.TempDir() + "/" + name)
	require.NoError(t, err)
	return p
}

func TestOpenCreateWriteReadRoundTrip(t *testing.T) {
	p := tempPath(t, "a.txt")

	w, err := handle.Open(p, handle.WriteOnly, handle.OpenOptions{Create: true, Truncate: true})
	require.NoError(t, err)
	require.NoError(t, w.Write([]byte("hello")))
	require.NoError(t, w.Close())

	r, err := handle.Open(p, handle.ReadOnly, handle.OpenOptions{})
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Read(1024)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestReadEOF(t *testing.T) {
	p := tempPath(t, "empty.txt")
	w, err := handle.Open(p, handle.WriteOnly, handle.OpenOptions{Create: true})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := handle.Open(p, handle.ReadOnly, handle.OpenOptions{})
	require.NoError(t, err)
	defer r.Close()

	n, err := r.ReadInto(make([]byte, 16))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	p := tempPath(t, "b.txt")
	h, err := handle.Open(p, handle.WriteOnly, handle.OpenOptions{Create: true})
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close(), "second close must succeed")
}

func TestOperationsAfterCloseFailWithInvalidHandle(t *testing.T) {
	p := tempPath(t, "c.txt")
	h, err := handle.Open(p, handle.ReadWrite, handle.OpenOptions{Create: true})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = h.Read(1)
	assert.True(t, ioerr.Is(err, ioerr.InvalidHandle))

	err = h.Write([]byte("x"))
	assert.True(t, ioerr.Is(err, ioerr.InvalidHandle))

	_, err = h.Seek(0, handle.SeekStart)
	assert.True(t, ioerr.Is(err, ioerr.InvalidHandle))

	err = h.Sync(handle.SyncFull)
	assert.True(t, ioerr.Is(err, ioerr.InvalidHandle))
}

func TestOpenNotFound(t *testing.T) {
	p := tempPath(t, "does-not-exist.txt")
	_, err := handle.Open(p, handle.ReadOnly, handle.OpenOptions{})
	assert.True(t, ioerr.Is(err, ioerr.NotFound))
}

func TestOpenExclusiveCreateAlreadyExists(t *testing.T) {
	p := tempPath(t, "d.txt")
	require.NoError(t, os.WriteFile(p.String(), []byte("x"), 0o644))

	_, err := handle.Open(p, handle.WriteOnly, handle.OpenOptions{Create: true, ExclusiveCreate: true})
	assert.True(t, ioerr.Is(err, ioerr.AlreadyExists))
}

func TestSeek(t *testing.T) {
	p := tempPath(t, "e.txt")
	h, err := handle.Open(p, handle.ReadWrite, handle.OpenOptions{Create: true, Truncate: true})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Write([]byte("0123456789")))
	off, err := h.Seek(3, handle.SeekStart)
	require.NoError(t, err)
	assert.EqualValues(t, 3, off)

	got, err := h.Read(2)
	require.NoError(t, err)
	assert.Equal(t, "34", string(got))
}

func TestSyncSucceedsOnRegularFile(t *testing.T) {
	p := tempPath(t, "f.txt")
	h, err := handle.Open(p, handle.WriteOnly, handle.OpenOptions{Create: true})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Write([]byte("data")))
	assert.NoError(t, h.Sync(handle.SyncFull))
	assert.NoError(t, h.Sync(handle.SyncDataOnly))
}
