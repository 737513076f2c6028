package tmpl

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"truncate":   Truncate,
		"dateFormat": dateFormat,
		"lower":      strings.ToLower,
	}
}

// Truncate shortens s to at most n runes. Non-positive n leaves s unchanged.
func Truncate(n int, s string) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// dateFormat renders a time or a DateLayout string with a Go layout.
func dateFormat(layout string, v any) (string, error) {
	switch d := v.(type) {
	case time.Time:
		return d.Format(layout), nil
	case *time.Time:
		if d == nil {
			return "", nil
		}
		return d.Format(layout), nil
	case string:
		if d == "" {
			return "", nil
		}
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			return "", err
		}
		return t.Format(layout), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("dateFormat: unsupported value %T", v)
	}
}
