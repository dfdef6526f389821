package path_test

import (
	"testing"

	"github.com/kernelio/fskit/ioerr"
	"github.com/kernelio/fskit/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValid(t *testing.T) {
	for _, raw := range []string{"/", "/a", "/a/b/c", "rel/path", "a"} {
		p, err := path.New(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, p.String())
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := path.New("")
	assert.True(t, ioerr.Is(err, ioerr.InvalidArgument))
}

func TestNewRejectsNUL(t *testing.T) {
	_, err := path.New("/a\x00b")
	assert.True(t, ioerr.Is(err, ioerr.InvalidArgument))
}

func TestNewRejectsNewline(t *testing.T) {
	_, err := path.New("/a\nb")
	assert.True(t, ioerr.Is(err, ioerr.InvalidArgument))
}

func TestNewRejectsEmptyComponent(t *testing.T) {
	for _, raw := range []string{"/a//b", "a//b", "/a/"} {
		_, err := path.New(raw)
		assert.True(t, ioerr.Is(err, ioerr.InvalidArgument), raw)
	}
}

func TestEqualIsByteIdentity(t *testing.T) {
	a := path.MustNew("/a/b")
	b := path.MustNew("/a/b")
	c := path.MustNew("/a/./b")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "'.' component is not canonicalized away")
}

func TestDotDotNotResolved(t *testing.T) {
	p := path.MustNew("/a/../b")
	assert.Equal(t, "/a/../b", p.String())
}

func TestJoin(t *testing.T) {
	p := path.MustNew("/a")
	joined, err := p.Join("b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", joined.String())
}

func TestDirBase(t *testing.T) {
	p := path.MustNew("/a/b/c")
	assert.Equal(t, "/a/b", p.Dir())
	assert.Equal(t, "c", p.Base())
}
