package encoder

import (
	"reflect"

	"github.com/anyproto/anytype-push-messaging/domain"
)

// CheckString returns nil for an absent value, otherwise the value as a string.
func CheckString(label string, value any, nonEmpty bool) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		if nonEmpty {
			return nil, domain.NewInvalidArgument(label, "must be a non-empty string.")
		}
		return nil, domain.NewInvalidArgument(label, "must be a string.")
	}
	if nonEmpty && s == "" {
		return nil, domain.NewInvalidArgument(label, "must be a non-empty string.")
	}
	return s, nil
}

// CheckStringMap returns nil for an absent or empty map, otherwise a map[string]string copy.
func CheckStringMap(label string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, domain.NewInvalidArgument(label, "must be a map.")
	}
	if rv.Len() == 0 {
		return nil, nil
	}
	result := make(map[string]string, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		if _, ok := stringOf(iter.Key()); !ok {
			return nil, domain.NewInvalidArgument(label, "must not contain non-string keys.")
		}
	}
	iter.Reset(rv)
	for iter.Next() {
		v, ok := stringOf(iter.Value())
		if !ok {
			return nil, domain.NewInvalidArgument(label, "must not contain non-string values.")
		}
		k, _ := stringOf(iter.Key())
		result[k] = v
	}
	return result, nil
}

// CheckStringList returns nil for an absent or empty list, otherwise a []string copy.
func CheckStringList(label string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, domain.NewInvalidArgument(label, "must be a list of strings.")
	}
	if rv.Len() == 0 {
		return nil, nil
	}
	result := make([]string, rv.Len())
	for i := range rv.Len() {
		s, ok := stringOf(rv.Index(i))
		if !ok {
			return nil, domain.NewInvalidArgument(label, "must not contain non-string values.")
		}
		result[i] = s
	}
	return result, nil
}

func stringOf(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.String {
		return "", false
	}
	return v.String(), true
}
