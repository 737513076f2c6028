package builder

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/site"
)

// resolveLayout returns the layout for dir and records bindings in layouts.
// A local layout file wins and is pre-registered for every immediate
// subdirectory; otherwise dir keeps the binding its parent registered, or
// inherits the parent's own binding when none was registered.
func resolveLayout(dir string, subdirs []string, layouts map[string]string) string {
	layout, ok := layouts[dir]
	if !ok {
		layout = layouts[filepath.Dir(dir)]
	}
	if hasLayoutFile(dir) {
		local := filepath.Join(dir, site.LayoutFile)
		layout = local
		for _, sub := range subdirs {
			layouts[filepath.Join(dir, sub)] = local
		}
	}
	layouts[dir] = layout
	return layout
}

// ResolveLayouts computes the layout of every directory the builder would
// visit by passing the inherited binding down the recursion instead of
// sharing a map. It agrees with the bindings Build records.
func ResolveLayouts(s *site.Site) (map[string]string, error) {
	out := map[string]string{}
	var visit func(dir, inherited string) error
	visit = func(dir, inherited string) error {
		rel := s.RelPath(dir)
		if s.IsIgnored(rel) || s.IsStatic(rel) {
			return nil
		}
		layout := inherited
		if hasLayoutFile(dir) {
			layout = filepath.Join(dir, site.LayoutFile)
		}
		out[dir] = layout

		entries, err := os.ReadDir(dir)
		if err != nil {
			return errors.FileSystemError("failed to list directory").
				WithCause(err).
				WithContext("source", dir).
				Build()
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if err := visit(filepath.Join(dir, e.Name()), layout); err != nil {
				return err
			}
		}
		return nil
	}
	return out, visit(s.Root(), "")
}

func hasLayoutFile(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, site.LayoutFile))
	return err == nil && !info.IsDir()
}
