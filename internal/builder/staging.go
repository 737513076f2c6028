package builder

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/logfields"
)

// beginStaging clears any staging directory left by an interrupted build and
// creates a fresh one next to the build root.
func (b *Builder) beginStaging() error {
	stage := b.site.StagingDir()
	if _, err := os.Stat(stage); err == nil {
		slog.Info("Removing stale staging directory", logfields.Path(stage))
		if err := os.RemoveAll(stage); err != nil {
			return stagingError("failed to remove stale staging directory", stage, err)
		}
	}
	if err := os.MkdirAll(stage, 0o750); err != nil {
		return stagingError("failed to create staging directory", stage, err)
	}
	return nil
}

// finalizeStaging replaces the build root with the staging directory.
func (b *Builder) finalizeStaging() error {
	stage, out := b.site.StagingDir(), b.site.BuildRoot()
	if _, err := os.Stat(stage); err != nil {
		return stagingError("staging directory missing at publish", stage, err)
	}
	if err := os.RemoveAll(out); err != nil {
		return stagingError("failed to remove previous build", out, err)
	}
	if err := os.Rename(stage, out); err != nil {
		return stagingError("failed to promote staging directory", stage, err)
	}
	slog.Info("Promoted staging directory", logfields.Output(out))
	return nil
}

// abortStaging removes the staging directory after a failed build. The
// build root is never touched here.
func (b *Builder) abortStaging(log *slog.Logger) {
	stage := b.site.StagingDir()
	if err := os.RemoveAll(stage); err != nil {
		log.Warn("Failed to remove staging directory after abort", logfields.Path(stage), logfields.Error(err))
		return
	}
	log.Debug("Removed staging directory after abort", logfields.Path(stage))
}

func stagingError(msg, path string, err error) error {
	return errors.FileSystemError(msg).WithCause(err).WithContext("path", path).Build()
}
