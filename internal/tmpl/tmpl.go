// Package tmpl compiles page templates, composes them with a layout and
// renders them together with their front matter metadata.
//
// A layout is an ordinary template that includes the page through
// {{ template "content" . }} or {{ block "content" . }}{{ end }}. The page body
// is registered as the "content" template and the layout executes as the root.
package tmpl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/frontmatter"
)

// ContentBlock is the template name the page body is registered under when a
// layout wraps it.
const ContentBlock = "content"

// Template is a compiled page, optionally wrapped by a layout.
type Template struct {
	name   string
	layout string
	source string
	meta   Metadata
	t      *template.Template
}

// Rendered is the output of one template execution.
type Rendered struct {
	Body string
	Meta Metadata
}

// Parse compiles a standalone template. name is used in error reports.
func Parse(name string, src []byte) (*Template, error) {
	doc, err := frontmatter.Parse(src)
	if err != nil {
		return nil, parseError(name, string(src), err)
	}
	t, err := template.New(filepath.Base(name)).Option("missingkey=error").Funcs(funcMap()).Parse(string(doc.Body))
	if err != nil {
		return nil, parseError(name, string(doc.Body), err)
	}
	return &Template{
		name:   name,
		source: string(doc.Body),
		meta:   newMetadata(doc.Fields),
		t:      t,
	}, nil
}

// Compose compiles page as the content block of layout. Layout front matter
// supplies default metadata for keys the page does not set.
func Compose(name string, page []byte, layoutName string, layout []byte) (*Template, error) {
	pageDoc, err := frontmatter.Parse(page)
	if err != nil {
		return nil, parseError(name, string(page), err)
	}
	layoutDoc, err := frontmatter.Parse(layout)
	if err != nil {
		return nil, parseError(layoutName, string(layout), err)
	}

	source := composedSource(layoutName, layoutDoc.Body, pageDoc.Body)

	root, err := template.New(filepath.Base(layoutName)).Option("missingkey=error").Funcs(funcMap()).Parse(string(layoutDoc.Body))
	if err != nil {
		return nil, parseError(name, source, err).WithContext("layout", layoutName)
	}
	if _, err := root.New(ContentBlock).Parse(string(pageDoc.Body)); err != nil {
		return nil, parseError(name, source, err).WithContext("layout", layoutName)
	}

	meta := newMetadata(pageDoc.Fields).withDefaults(newMetadata(layoutDoc.Fields))
	return &Template{
		name:   name,
		layout: layoutName,
		source: source,
		meta:   meta,
		t:      root,
	}, nil
}

// Load reads the page at path and, when layoutPath is non-empty, the layout
// wrapping it.
func Load(path, layoutPath string) (*Template, error) {
	page, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileSystemError("failed to read template").
			WithCause(err).
			WithContext("source", path).
			Build()
	}
	if layoutPath == "" {
		return Parse(path, page)
	}
	layout, err := os.ReadFile(layoutPath)
	if err != nil {
		return nil, errors.FileSystemError("failed to read layout").
			WithCause(err).
			WithContext("source", path).
			WithContext("layout", layoutPath).
			Build()
	}
	return Compose(path, page, layoutPath, layout)
}

func (t *Template) Name() string { return t.name }

// Layout is the path of the wrapping layout, empty for standalone templates.
func (t *Template) Layout() string { return t.layout }

// Source is the composed template text, used in error reports.
func (t *Template) Source() string { return t.source }

// Metadata returns the front matter record without rendering.
func (t *Template) Metadata() Metadata { return t.meta }

// Render executes the template with params.
func (t *Template) Render(params map[string]any) (*Rendered, error) {
	var buf bytes.Buffer
	if err := t.t.Execute(&buf, params); err != nil {
		ce := errors.TemplateError("failed to render template").
			WithCause(err).
			WithContext("source", t.name).
			WithContext("template", t.source)
		if t.layout != "" {
			ce = ce.WithContext("layout", t.layout)
		}
		return nil, ce.Build()
	}
	return &Rendered{Body: buf.String(), Meta: t.meta}, nil
}

func composedSource(layoutName string, layout, page []byte) string {
	return fmt.Sprintf("{{/* layout: %s */}}\n%s\n{{define %q}}%s{{end}}", layoutName, layout, ContentBlock, page)
}

func parseError(name, source string, err error) *errors.ClassifiedError {
	return errors.TemplateError("failed to parse template").
		WithCause(err).
		WithContext("source", name).
		WithContext("template", source).
		Build()
}
