// Package path defines the immutable, validated Path type shared by
// every fskit component. A Path is not canonicalized: ".." is never
// resolved and symlinks are never followed during construction. It is
// opaque bytes on POSIX and UTF-16 on Windows at the syscall boundary,
// but within this module it is carried as a string for convenience; see
// spec §6 "Paths".
package path

import (
	"strings"

	"github.com/kernelio/fskit/ioerr"
)

// Path is an immutable, validated filesystem path. The zero value is not
// a valid Path; construct one with New.
type Path struct {
	s string
}

// New validates raw and returns a Path. Validation rejects embedded NUL
// bytes, embedded newlines, and empty path components other than the
// root itself.
func New(raw string) (Path, error) {
	if raw == "" {
		return Path{}, ioerr.New(ioerr.InvalidArgument, "path: empty")
	}
	if strings.IndexByte(raw, 0) >= 0 {
		return Path{}, ioerr.New(ioerr.InvalidArgument, "path: embedded NUL byte")
	}
	if strings.IndexByte(raw, '\n') >= 0 || strings.IndexByte(raw, '\r') >= 0 {
		return Path{}, ioerr.New(ioerr.InvalidArgument, "path: embedded newline")
	}
	if err := checkEmptyComponents(raw); err != nil {
		return Path{}, err
	}
	return Path{s: raw}, nil
}

// MustNew is New but panics on invalid input. Intended for constants and
// tests, never for untrusted input.
func MustNew(raw string) Path {
	p, err := New(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func checkEmptyComponents(raw string) error {
	s := raw
	// A single leading slash denotes the root and is not itself an
	// "empty component" per spec §3.
	root := strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\`)
	if root {
		s = s[1:]
	}
	if s == "" {
		if root {
			return nil
		}
		return ioerr.New(ioerr.InvalidArgument, "path: empty")
	}
	if hasEmptyComponent(s) {
		return ioerr.New(ioerr.InvalidArgument, "path: empty component")
	}
	return nil
}

func hasEmptyComponent(s string) bool {
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '/' || s[i] == '\\' {
			if i == start {
				return true
			}
			start = i + 1
		}
	}
	return false
}

// String returns the path's underlying text. It is not canonicalized.
func (p Path) String() string { return p.s }

// IsZero reports whether p is the zero value (never produced by New).
func (p Path) IsZero() bool { return p.s == "" }

// Equal reports byte-identity equality, per spec §3: Paths are not
// canonicalized before comparison.
func (p Path) Equal(other Path) bool { return p.s == other.s }

// Join appends a component to p using '/', validating the result. It
// does not resolve ".." or clean the path.
func (p Path) Join(component string) (Path, error) {
	sep := "/"
	if strings.HasSuffix(p.s, "/") || strings.HasSuffix(p.s, `\`) {
		sep = ""
	}
	return New(p.s + sep + component)
}

// Dir returns the parent directory component of p, following the same
// split rule as path/filepath.Dir but without cleaning or resolving the
// result.
func (p Path) Dir() string {
	s := p.s
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' || s[i] == '\\' {
			if i == 0 {
				return s[:1]
			}
			return s[:i]
		}
	}
	return "."
}

// Base returns the final component of p.
func (p Path) Base() string {
	s := p.s
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' || s[i] == '\\' {
			return s[i+1:]
		}
	}
	return s
}
