package tmpl

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/logfields"
)

// LogFailure reports a template that failed to parse or render together with
// the composed template text the error carries.
func LogFailure(log *slog.Logger, source string, err error) {
	attrs := []slog.Attr{logfields.File(source), logfields.Error(err)}
	if ce, ok := errors.AsClassified(err); ok {
		if text, ok := ce.Context().GetString("template"); ok {
			attrs = append(attrs, slog.String("template", text))
		}
	}
	log.LogAttrs(context.Background(), slog.LevelError, "Template render failed", attrs...)
}
