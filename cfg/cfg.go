// Package cfg defines the configuration surface for fskit's components:
// Octal permission bits, the Durability and ThreadModel enums, the
// executor's three-knob configuration surface (spec §6), and the
// mapstructure decode hooks that parse them from strings. Grounded on
// gcsfuse's cfg package (Octal type, DecodeHook composition) with the
// cobra/viper CLI command tree dropped — spec.md scopes the CLI surface
// out explicitly.
package cfg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Octal is a file permission mode decoded from a base-8 string
// ("0644") by DecodeHook, matching gcsfuse's cfg.Octal.
type Octal int32

// Durability controls the sync step of atomicwrite.Write. See spec §4.4.1
// and the durability↔syscall mapping in spec §6.
type Durability int

const (
	DurabilityFull Durability = iota
	DurabilityDataOnly
	DurabilityNone
)

func (d Durability) String() string {
	switch d {
	case DurabilityFull:
		return "full"
	case DurabilityDataOnly:
		return "data-only"
	case DurabilityNone:
		return "none"
	default:
		return "unknown"
	}
}

func ParseDurability(s string) (Durability, error) {
	switch strings.ToLower(s) {
	case "full":
		return DurabilityFull, nil
	case "data-only":
		return DurabilityDataOnly, nil
	case "none":
		return DurabilityNone, nil
	default:
		return 0, fmt.Errorf("invalid durability: %q", s)
	}
}

// ThreadModel selects how the I/O executor dispatches blocking jobs. See
// spec §4.2 "Configuration (enumerated)".
type ThreadModel int

const (
	Cooperative ThreadModel = iota
	Dedicated
)

func (m ThreadModel) String() string {
	switch m {
	case Cooperative:
		return "cooperative"
	case Dedicated:
		return "dedicated"
	default:
		return "unknown"
	}
}

func ParseThreadModel(s string) (ThreadModel, error) {
	switch strings.ToLower(s) {
	case "cooperative":
		return Cooperative, nil
	case "dedicated":
		return Dedicated, nil
	default:
		return 0, fmt.Errorf("invalid thread-model: %q", s)
	}
}

// ExecutorConfig is the exact three-knob executor surface from spec §6:
// "Executor configuration surface (enumerated). {workers, queue-limit,
// thread-model}. No other knobs."
type ExecutorConfig struct {
	Workers     int         `mapstructure:"workers"`
	QueueLimit  int         `mapstructure:"queue-limit"`
	ThreadModel ThreadModel `mapstructure:"thread-model"`
}

// DefaultExecutorConfig matches spec §3's defaults: workers = number of
// hardware cores (left 0 here; executor.New resolves 0 to
// runtime.NumCPU()), queue-limit = 10000, thread-model = cooperative.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Workers:     0,
		QueueLimit:  10000,
		ThreadModel: Cooperative,
	}
}

// decodeOctal parses a base-8 permission string, e.g. "0644".
func decodeOctal(s string) (interface{}, error) {
	v, err := strconv.ParseInt(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil {
		return nil, fmt.Errorf("decoding octal %q: %w", s, err)
	}
	return Octal(v), nil
}

func decodeDurability(s string) (interface{}, error) { return ParseDurability(s) }

func decodeThreadModel(s string) (interface{}, error) { return ParseThreadModel(s) }
