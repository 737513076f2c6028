package tmpl

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the front matter date format. Dates carry no timezone.
const DateLayout = "2006-01-02T15:04:05"

// ErrNoDate is returned by Metadata.Time when the template declares no date.
var ErrNoDate = errors.New("no date in metadata")

// Metadata is the typed record declared by a template's front matter.
type Metadata struct {
	Title string
	// Date is kept in DateLayout form; use Time to parse it.
	Date   string
	Fields map[string]any
}

func newMetadata(fields map[string]any) Metadata {
	if fields == nil {
		fields = map[string]any{}
	}
	m := Metadata{Fields: fields}
	if v, ok := fields["title"]; ok && v != nil {
		m.Title = fmt.Sprint(v)
	}
	if v, ok := fields["date"]; ok && v != nil {
		switch d := v.(type) {
		case time.Time:
			m.Date = d.Format(DateLayout)
		case string:
			m.Date = d
		default:
			m.Date = fmt.Sprint(d)
		}
		fields["date"] = m.Date
	}
	return m
}

// Lookup returns a metadata attribute by name.
func (m Metadata) Lookup(key string) (any, bool) {
	switch key {
	case "title":
		if m.Title != "" {
			return m.Title, true
		}
	case "date":
		if m.Date != "" {
			return m.Date, true
		}
	}
	v, ok := m.Fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Time parses Date with DateLayout.
func (m Metadata) Time() (time.Time, error) {
	if m.Date == "" {
		return time.Time{}, ErrNoDate
	}
	return time.Parse(DateLayout, m.Date)
}

// withDefaults returns m with keys from base filled in where m lacks them.
func (m Metadata) withDefaults(base Metadata) Metadata {
	if len(base.Fields) == 0 {
		return m
	}
	merged := make(map[string]any, len(base.Fields)+len(m.Fields))
	for k, v := range base.Fields {
		merged[k] = v
	}
	for k, v := range m.Fields {
		merged[k] = v
	}
	return newMetadata(merged)
}
