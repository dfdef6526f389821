package cfg

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// hookFunc mirrors gcsfuse's cfg.hookFunc: a reflect.Type switch over the
// handful of string-decodable types this package defines.
func hookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		s := data.(string)
		switch t {
		case reflect.TypeOf(Octal(0)):
			return decodeOctal(s)
		case reflect.TypeOf(Durability(0)):
			return decodeDurability(s)
		case reflect.TypeOf(ThreadModel(0)):
			return decodeThreadModel(s)
		default:
			return data, nil
		}
	}
}

// DecodeHook composes the type-specific string decoders above with
// mapstructure's standard duration hook, following gcsfuse's
// cfg.DecodeHook composition exactly.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		hookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// Decode unmarshals raw (typically produced by viper.AllSettings or a
// parsed env map) into dst using DecodeHook.
func Decode(raw map[string]interface{}, dst interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       DecodeHook(),
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
