// Package site holds the immutable per-build site settings and the path
// classification rules every other build component relies on.
package site

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/mksite/internal/config"
	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/pathmatch"
)

// Reserved names inside the source tree.
const (
	ConfigFile    = "__config__.json"
	LayoutFile    = "__layout__.html"
	PageFile      = "__page__.html"
	IndexFile     = "index.html"
	PrivatePrefix = "__"
	TemplateExt   = ".html"

	// StagingSuffix is appended to the build root to name the staging directory.
	StagingSuffix = "_stage"
)

var reservedNames = map[string]struct{}{
	IndexFile:  {},
	LayoutFile: {},
	PageFile:   {},
}

// Site is one build's view of the configuration. It is safe to share; nothing
// mutates it after New returns.
type Site struct {
	cfg        *config.Config
	root       string
	buildRoot  string
	stagingDir string
	buildTime  time.Time
	ignored    *pathmatch.Matcher
	static     *pathmatch.Matcher
}

// New compiles the configured patterns and pins the build timestamp.
func New(cfg *config.Config, buildTime time.Time) (*Site, error) {
	if cfg == nil {
		return nil, errors.ConfigError("site configuration is required").Build()
	}
	ignored, err := pathmatch.Compile(cfg.Ignored)
	if err != nil {
		return nil, errors.ConfigError("invalid ignored pattern").WithCause(err).Build()
	}
	static, err := pathmatch.Compile(cfg.Static)
	if err != nil {
		return nil, errors.ConfigError("invalid static pattern").WithCause(err).Build()
	}
	buildRoot := filepath.Clean(cfg.BuildRoot)
	return &Site{
		cfg:        cfg,
		root:       filepath.Clean(cfg.SiteRoot),
		buildRoot:  buildRoot,
		stagingDir: buildRoot + StagingSuffix,
		buildTime:  buildTime,
		ignored:    ignored,
		static:     static,
	}, nil
}

func (s *Site) Root() string { return s.root }
func (s *Site) BuildRoot() string { return s.buildRoot }
func (s *Site) StagingDir() string { return s.stagingDir }
func (s *Site) BuildTime() time.Time { return s.buildTime }
func (s *Site) SiteURL() string { return s.cfg.SiteURL }
func (s *Site) Title() string { return s.cfg.Title }
func (s *Site) Description() string { return s.cfg.Description }
func (s *Site) Author() string { return s.cfg.Author }
func (s *Site) RewriteURLs() bool { return s.cfg.RewriteURLs }
func (s *Site) Params() map[string]any { return s.cfg.Params }
func (s *Site) Config() *config.Config { return s.cfg }

// RelPath converts a path under the site root to slash form relative to the
// root. The root itself is ".".
func (s *Site) RelPath(p string) string {
	rel, err := filepath.Rel(s.root, filepath.Clean(p))
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// SourcePath is the inverse of RelPath.
func (s *Site) SourcePath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// IsIgnored reports whether a site-relative path is private or matches an
// ignored pattern.
func (s *Site) IsIgnored(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	if strings.HasPrefix(path.Base(rel), PrivatePrefix) {
		return true
	}
	return s.ignored.Match(rel)
}

// IsStatic reports whether a site-relative path matches a static pattern.
func (s *Site) IsStatic(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	return s.static.Match(rel)
}

// InIgnoredTree reports whether rel or any of its parent directories is ignored.
func (s *Site) InIgnoredTree(rel string) bool {
	for p := rel; p != "." && p != "/" && p != ""; p = path.Dir(p) {
		if s.IsIgnored(p) {
			return true
		}
	}
	return false
}

// InStaticTree reports whether rel or any of its parent directories is static.
func (s *Site) InStaticTree(rel string) bool {
	for p := rel; p != "." && p != "/" && p != ""; p = path.Dir(p) {
		if s.IsStatic(p) {
			return true
		}
	}
	return false
}

// IsContentItem reports whether the path names a listable template. It does
// not consult the ignored or static patterns.
func IsContentItem(p string) bool {
	base := path.Base(filepath.ToSlash(p))
	if _, reserved := reservedNames[base]; reserved {
		return false
	}
	return strings.HasSuffix(base, TemplateExt)
}

// IsContentItem is the method form of the package-level IsContentItem.
func (s *Site) IsContentItem(rel string) bool { return IsContentItem(rel) }

// FormatOutputPath applies the pretty-URL rewrite to a site-relative path:
// foo.html becomes foo/index.html for non-static content items when rewriting
// is enabled. Applying it twice yields the same result.
func (s *Site) FormatOutputPath(rel string) string {
	if !s.cfg.RewriteURLs || !IsContentItem(rel) || s.IsStatic(rel) {
		return rel
	}
	return path.Join(strings.TrimSuffix(rel, TemplateExt), IndexFile)
}

// OutputPath maps a source file under the site root to its location in the
// staging tree and creates the destination directory.
func (s *Site) OutputPath(source string) (string, error) {
	dst := s.StagePath(s.FormatOutputPath(s.RelPath(source)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", filepath.Dir(dst)).
			Build()
	}
	return dst, nil
}

// StagePath joins a site-relative output path onto the staging directory.
func (s *Site) StagePath(rel string) string {
	if rel == "." || rel == "" {
		return s.stagingDir
	}
	return filepath.Join(s.stagingDir, filepath.FromSlash(rel))
}

// URL resolves resource to an absolute URL. An empty resource is the site URL,
// a leading slash resolves from the site root and anything else resolves
// against dirRel. A trailing index.html segment is dropped.
func (s *Site) URL(dirRel, resource string) string {
	base := strings.TrimSuffix(s.cfg.SiteURL, "/")
	if resource == "" {
		return s.cfg.SiteURL
	}

	var rel string
	if strings.HasPrefix(resource, "/") {
		rel = resource
	} else {
		rel = path.Join("/", dirRel, resource)
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")

	rel = s.FormatOutputPath(rel)
	if path.Base(rel) == IndexFile {
		rel = path.Dir(rel)
		if rel == "." {
			rel = ""
		}
	}
	return base + "/" + rel
}
