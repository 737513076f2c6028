package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyDir        = "dir"
	KeyLayout     = "layout"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyOutput     = "output"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Dir(d string) slog.Attr           { return slog.String(KeyDir, d) }
func Layout(l string) slog.Attr        { return slog.String(KeyLayout, l) }
func Page(n int) slog.Attr             { return slog.Int(KeyPage, n) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Output(o string) slog.Attr        { return slog.String(KeyOutput, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
