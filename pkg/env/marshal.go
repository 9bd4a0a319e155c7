package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// MarshalEnv renders one or more env-tagged config structs as .env content.
// Zero fields are written from their envDefault tag when withDefaults is set,
// and skipped otherwise. Each struct becomes its own block.
func MarshalEnv(withDefaults bool, configs ...any) (string, error) {
	var blocks []string
	seen := make(map[string]bool)

	for _, c := range configs {
		v := reflect.ValueOf(c)
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return "", fmt.Errorf("marshal env: expected struct, got %s", v.Kind())
		}

		var lines []string
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
			if key == "" || !field.IsExported() || seen[key] {
				continue
			}

			val := v.Field(i)
			var strVal string
			switch {
			case !isZeroValue(val):
				strVal = formatValue(val)
			case withDefaults && field.Tag.Get("envDefault") != "":
				strVal = field.Tag.Get("envDefault")
			default:
				continue
			}

			seen[key] = true
			lines = append(lines, fmt.Sprintf("%s=%s", key, quote(strVal)))
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}

	if len(blocks) == 0 {
		return "", nil
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

func quote(s string) string {
	if strings.ContainsAny(s, " #\"'\t") {
		return strconv.Quote(s)
	}
	return s
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func formatValue(v reflect.Value) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
