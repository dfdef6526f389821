package cfg

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// LoadEnv populates dst (a pointer to a struct with `mapstructure` tags,
// e.g. *ExecutorConfig) from process environment variables prefixed by
// prefix, e.g. LoadEnv("FSKIT", &cfg) reads FSKIT_WORKERS,
// FSKIT_QUEUE_LIMIT, FSKIT_THREAD_MODEL. The set of keys comes from
// dst's own `mapstructure` tags, not a caller-supplied list, so adding a
// field to a config struct is enough to make it env-loadable.
//
// This is deliberately narrower than gcsfuse's cfg package: there is no
// cobra command tree or config file layer here, because spec.md scopes
// the CLI surface out of this library. It is the config *ambient stack*
// (env-driven defaults for a library embedded in a host process), not a
// CLI.
func LoadEnv(prefix string, dst any) error {
	keys, err := mapstructureKeys(dst)
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	raw := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		if v.IsSet(key) {
			raw[key] = v.Get(key)
		}
	}
	if len(raw) == 0 {
		return nil
	}
	return Decode(raw, dst)
}

// mapstructureKeys lists the `mapstructure` tag of every field of the
// struct dst points to.
func mapstructureKeys(dst any) ([]string, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("cfg: LoadEnv requires a non-nil pointer to a struct, got %T", dst)
	}

	t := rv.Elem().Type()
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		keys = append(keys, tag)
	}
	return keys, nil
}
