// Package importer converts a tree of markdown documents into page templates
// the builder can render.
package importer

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/frontmatter"
	"git.home.luguber.info/inful/mksite/internal/logfields"
	"git.home.luguber.info/inful/mksite/internal/site"
	"git.home.luguber.info/inful/mksite/internal/tmpl"
)

const (
	markdownExt = ".md"
	sidecarExt  = ".json"
)

// Options control an import run.
type Options struct {
	// Sidecars writes each document's front matter as <page>.html.json.
	Sidecars bool
}

// Result counts what an import produced.
type Result struct {
	Converted int
	Sidecars  int
}

// Importer converts markdown with YAML front matter into HTML page templates.
type Importer struct {
	md    goldmark.Markdown
	title cases.Caser
	opts  Options
}

func New(opts Options) *Importer {
	return &Importer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		title: cases.Title(language.English),
		opts:  opts,
	}
}

// Import mirrors the directory structure of src under dest, converting every
// .md file to a .html template. Other files are not copied.
func (im *Importer) Import(src, dest string) (Result, error) {
	var res Result
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !strings.EqualFold(filepath.Ext(p), markdownExt) {
			return nil
		}

		out := strings.TrimSuffix(target, filepath.Ext(target)) + site.TemplateExt
		wroteSidecar, err := im.convertFile(p, out)
		if err != nil {
			return err
		}
		res.Converted++
		if wroteSidecar {
			res.Sidecars++
		}
		slog.Debug("Imported markdown", logfields.File(rel), logfields.Output(out))
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return res, err
		}
		return res, errors.FileSystemError("markdown import failed").
			WithCause(err).
			WithContext("source", src).
			Build()
	}
	return res, nil
}

func (im *Importer) convertFile(src, dst string) (bool, error) {
	data, err := os.ReadFile(filepath.Clean(src))
	if err != nil {
		return false, errors.FileSystemError("failed to read markdown").WithCause(err).WithContext("source", src).Build()
	}
	page, fields, err := im.Convert(data, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)))
	if err != nil {
		return false, errors.ValidationError("failed to convert markdown").WithCause(err).WithContext("source", src).Build()
	}
	if err := os.WriteFile(dst, page, 0o644); err != nil {
		return false, errors.FileSystemError("failed to write template").WithCause(err).WithContext("output", dst).Build()
	}
	if !im.opts.Sidecars || fields == nil {
		return false, nil
	}
	meta, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return false, errors.ValidationError("failed to encode metadata sidecar").WithCause(err).WithContext("source", src).Build()
	}
	if err := os.WriteFile(dst+sidecarExt, meta, 0o644); err != nil {
		return false, errors.FileSystemError("failed to write metadata sidecar").WithCause(err).WithContext("output", dst+sidecarExt).Build()
	}
	return true, nil
}

// Convert renders one markdown document to a page template. The returned
// fields are the document's own front matter, nil when it had none; the page
// always carries a title, derived from name when the document sets none.
func (im *Importer) Convert(data []byte, name string) (page []byte, fields map[string]any, err error) {
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	if doc.HasFrontMatter {
		fields = make(map[string]any, len(doc.Fields))
		for k, v := range doc.Fields {
			fields[k] = v
		}
	}

	var body bytes.Buffer
	if err := im.md.Convert(doc.Body, &body); err != nil {
		return nil, nil, err
	}

	if _, ok := doc.Fields["title"]; !ok {
		doc.Fields["title"] = im.title.String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	}
	if d, ok := doc.Fields["date"]; ok {
		doc.Fields["date"] = normalizeDate(d)
	}
	doc.Body = escapeActions(body.Bytes())
	doc.HasFrontMatter = true
	doc.Newline = "\n"

	page, err = doc.Bytes()
	return page, fields, err
}

// normalizeDate rewrites date-only and time values into the layout page
// templates use. Anything unparseable is left for the builder to reject.
func normalizeDate(v any) any {
	switch d := v.(type) {
	case time.Time:
		return d.Format(tmpl.DateLayout)
	case string:
		if t, err := time.Parse(time.DateOnly, d); err == nil {
			return t.Format(tmpl.DateLayout)
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t.Format(tmpl.DateLayout)
		}
	}
	return v
}

// escapeActions keeps literal template delimiters in converted markdown from
// being executed when the page is rendered.
func escapeActions(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("{{"), []byte(`{{"{{"}}`))
}
