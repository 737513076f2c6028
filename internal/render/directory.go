package render

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/site"
	"git.home.luguber.info/inful/mksite/internal/tmpl"
)

// DefaultOrder is the metadata attribute listings sort by.
const DefaultOrder = "date"

// DirectoryContext roots the parameter chain for one source directory.
type DirectoryContext struct {
	site   *site.Site
	dir    string
	rel    string
	config map[string]any
}

// Listing is a directory's immediate children.
type Listing struct {
	Dirnames  []string
	Filenames []string
}

// ItemQuery selects content items across the site.
type ItemQuery struct {
	// Pattern is a doublestar glob relative to the site root. Empty means all.
	Pattern string
	// Limit caps the result after sorting; zero or less means no cap.
	Limit    int
	Order    string
	Reversed bool
}

// Entry pairs a content item with its public URL.
type Entry struct {
	URL  string
	Item *ContentItem
}

// NewDirectoryContext loads dir's local configuration file if there is one.
// A malformed file is an error; a missing one is not.
func NewDirectoryContext(s *site.Site, dir string) (*DirectoryContext, error) {
	d := &DirectoryContext{site: s, dir: dir, rel: s.RelPath(dir)}

	cfgPath := filepath.Join(dir, site.ConfigFile)
	data, err := os.ReadFile(cfgPath)
	switch {
	case os.IsNotExist(err):
		return d, nil
	case err != nil:
		return nil, errors.FileSystemError("failed to read directory config").
			WithCause(err).
			WithContext("source", cfgPath).
			Build()
	}

	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ConfigError("failed to parse directory config").
			WithCause(err).
			WithContext("source", cfgPath).
			Build()
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	d.config = cfg
	return d, nil
}

func (d *DirectoryContext) Path() string { return d.dir }

// RelPath is the site-relative slash path, "." for the site root.
func (d *DirectoryContext) RelPath() string { return d.rel }

func (d *DirectoryContext) Site() *site.Site { return d.site }

func (d *DirectoryContext) Config() map[string]any { return d.config }

// Contents lists immediate children sorted by name, leaving out the layout file.
func (d *DirectoryContext) Contents() (Listing, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return Listing{}, errors.FileSystemError("failed to list directory").
			WithCause(err).
			WithContext("source", d.dir).
			Build()
	}
	var out Listing
	for _, e := range entries {
		name := e.Name()
		if name == site.LayoutFile {
			continue
		}
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(d.dir, name)); err == nil {
				isDir = info.IsDir()
			}
		}
		if isDir {
			out.Dirnames = append(out.Dirnames, name)
		} else {
			out.Filenames = append(out.Filenames, name)
		}
	}
	return out, nil
}

// Paginate returns the configured page size, or 0 when the directory does
// not paginate.
func (d *DirectoryContext) Paginate() int {
	v, ok := d.config["paginate"]
	if !ok {
		return 0
	}
	var n int
	switch p := v.(type) {
	case float64:
		n = int(p)
	case int:
		n = p
	case json.Number:
		i, err := p.Int64()
		if err != nil {
			return 0
		}
		n = int(i)
	}
	if n < 0 {
		return 0
	}
	return n
}

// URL resolves resource against this directory. See site.Site.URL.
func (d *DirectoryContext) URL(resource ...string) string {
	if len(resource) == 0 {
		return d.site.URL(d.rel, "")
	}
	return d.site.URL(d.rel, resource[0])
}

// Items finds content items across the whole site. Static, ignored and
// non-content files never match. Results are sorted by q.Order ascending
// unless q.Reversed; an item lacking the order attribute fails the query.
func (d *DirectoryContext) Items(q ItemQuery) ([]Entry, error) {
	pattern := strings.TrimPrefix(q.Pattern, "/")
	if pattern == "" {
		pattern = "**"
	}
	order := q.Order
	if order == "" {
		order = DefaultOrder
	}

	matches, err := doublestar.Glob(os.DirFS(d.site.Root()), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.ValidationError("invalid item pattern").
			WithCause(err).
			WithContext("pattern", q.Pattern).
			Build()
	}
	sort.Strings(matches)

	dirs := map[string]*DirectoryContext{}
	type keyed struct {
		entry Entry
		key   any
	}
	var found []keyed
	for _, rel := range matches {
		if !site.IsContentItem(rel) || d.site.InIgnoredTree(rel) || d.site.InStaticTree(rel) {
			continue
		}

		dirRel := path.Dir(rel)
		dc, ok := dirs[dirRel]
		if !ok {
			if dc, err = NewDirectoryContext(d.site, d.site.SourcePath(dirRel)); err != nil {
				return nil, err
			}
			dirs[dirRel] = dc
		}

		source := d.site.SourcePath(rel)
		tpl, err := tmpl.Load(source, "")
		if err != nil {
			tmpl.LogFailure(slog.Default(), source, err)
			return nil, err
		}
		name := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
		item := NewContentItem(tpl, NewPageContext(name, dc))

		key, err := item.SortKey(order)
		if err != nil {
			return nil, err
		}
		found = append(found, keyed{entry: Entry{URL: d.URL("/" + rel), Item: item}, key: key})
	}

	var cmpErr error
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if q.Reversed {
			a, b = b, a
		}
		c, err := compareKeys(a.key, b.key)
		if err != nil && cmpErr == nil {
			cmpErr = errors.SortKeyError("sort keys are not comparable").
				WithCause(err).
				WithContext("order", order).
				WithContext("source", a.entry.Item.Source()).
				Build()
		}
		return c < 0
	})
	if cmpErr != nil {
		return nil, cmpErr
	}

	entries := make([]Entry, 0, len(found))
	for _, f := range found {
		entries = append(entries, f.entry)
	}
	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries, nil
}

// itemsFunc adapts Items for templates:
//
//	{{ range call .items "blog/*" 5 "date" true }}...{{ end }}
//
// Arguments are positional and optional: pattern, limit, order, reversed.
func (d *DirectoryContext) itemsFunc(args ...any) ([]Entry, error) {
	if len(args) > 4 {
		return nil, fmt.Errorf("items: expected at most 4 arguments, got %d", len(args))
	}
	var q ItemQuery
	for i, a := range args {
		var ok bool
		switch i {
		case 0:
			q.Pattern, ok = a.(string)
		case 1:
			q.Limit, ok = a.(int)
		case 2:
			q.Order, ok = a.(string)
		case 3:
			q.Reversed, ok = a.(bool)
		}
		if !ok {
			return nil, fmt.Errorf("items: argument %d has unexpected type %T", i+1, a)
		}
	}
	return d.Items(q)
}

// Params is the base mapping every page in this directory inherits.
func (d *DirectoryContext) Params() Params {
	cfg := d.config
	if cfg == nil {
		cfg = map[string]any{}
	}
	return Params{
		"url":    d.URL,
		"name":   filepath.Base(d.dir),
		"items":  d.itemsFunc,
		"site":   d.site,
		"path":   d.rel,
		"now":    d.site.BuildTime(),
		"config": cfg,
	}
}
