package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
)

// WriteTextfile writes every metric gathered from reg to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string, reg *prom.Registry) error {
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return errors.FileSystemError("failed to write metrics textfile").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
