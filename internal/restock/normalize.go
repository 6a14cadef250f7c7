package restock

import (
	"fmt"
	"reflect"
	"strings"
)

// Normalize turns a grouping key into its canonical form: stringified,
// trimmed and uppercased. Nil values, including typed nil pointers,
// normalize to the empty string.
func Normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToUpper(strings.TrimSpace(t))
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return ""
		}
		return strings.ToUpper(strings.TrimSpace(t.String()))
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		return Normalize(rv.Elem().Interface())
	}
	return strings.ToUpper(strings.TrimSpace(fmt.Sprint(v)))
}
