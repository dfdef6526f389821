package atomicwrite_test

import (
	"os"
	"testing"

	"github.com/kernelio/fskit/atomicwrite"
	"github.com/kernelio/fskit/cfg"
	"github.com/kernelio/fskit/ioerr"
	"github.com/kernelio/fskit/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPath(t *testing.T, s string) path.Path {
	t.Helper()
	p, err := path.New(s)
	require.NoError(t, err)
	return p
}

func TestWriteFullDurabilityRoundTrip(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.txt"

	err := atomicwrite.Write(mustPath(t, target), []byte{0x48, 0x69}, atomicwrite.Options{Durability: cfg.DurabilityFull})
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x48, 0x69}, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file should remain in the parent directory")
}

func TestWriteDataOnlyDurability(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.txt"

	require.NoError(t, atomicwrite.Write(mustPath(t, target), []byte("payload"), atomicwrite.Options{Durability: cfg.DurabilityDataOnly}))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestWriteNoDurability(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.txt"

	require.NoError(t, atomicwrite.Write(mustPath(t, target), []byte("payload"), atomicwrite.Options{Durability: cfg.DurabilityNone}))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestWriteReplacesExistingContentAtomically(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.txt"
	require.NoError(t, os.WriteFile(target, []byte("old content here"), 0o644))

	require.NoError(t, atomicwrite.Write(mustPath(t, target), []byte("new"), atomicwrite.Options{Durability: cfg.DurabilityFull}))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestWriteExclusiveCreateFailsWhenTargetExists(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.txt"
	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	err := atomicwrite.Write(mustPath(t, target), []byte("new"), atomicwrite.Options{
		Durability:      cfg.DurabilityDataOnly,
		ExclusiveCreate: true,
	})
	assert.True(t, ioerr.Is(err, ioerr.AlreadyExists))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(got))
}

func TestWriteExclusiveCreateSucceedsWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.txt"

	err := atomicwrite.Write(mustPath(t, target), []byte("fresh"), atomicwrite.Options{
		Durability:      cfg.DurabilityDataOnly,
		ExclusiveCreate: true,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}

func TestWritePermissionsApplied(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/out.txt"
	perm := cfg.Octal(0o640)

	require.NoError(t, atomicwrite.Write(mustPath(t, target), []byte("x"), atomicwrite.Options{
		Durability:  cfg.DurabilityNone,
		Permissions: &perm,
	}))

	fi, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}
