package builder

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/logfields"
	"git.home.luguber.info/inful/mksite/internal/metrics"
	"git.home.luguber.info/inful/mksite/internal/render"
	"git.home.luguber.info/inful/mksite/internal/site"
	"git.home.luguber.info/inful/mksite/internal/tmpl"
)

// walkDir processes dir and then its subdirectories. layouts is shared by the
// whole walk: a directory reads its binding from it and writes bindings for
// its children before descending.
func (b *Builder) walkDir(ctx context.Context, log *slog.Logger, dir string, layouts map[string]string) error {
	if err := ctx.Err(); err != nil {
		return canceledError(err)
	}

	rel := b.site.RelPath(dir)
	if b.site.IsIgnored(rel) {
		log.Debug("Skipping ignored directory", logfields.Dir(rel))
		return nil
	}
	if b.site.IsStatic(rel) {
		if err := CopyTree(dir, b.site.StagePath(rel), b.skipIgnored); err != nil {
			return err
		}
		b.report.StaticTrees++
		b.recorder.AddFiles(metrics.FileStaticTree, 1)
		log.Debug("Copied static tree", logfields.Dir(rel))
		return nil
	}

	if err := os.MkdirAll(b.site.StagePath(rel), 0o750); err != nil {
		return errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", b.site.StagePath(rel)).
			Build()
	}
	b.report.Directories++

	dc, err := render.NewDirectoryContext(b.site, dir)
	if err != nil {
		return err
	}
	listing, err := dc.Contents()
	if err != nil {
		return err
	}

	layout := resolveLayout(dir, listing.Dirnames, layouts)
	if layout != "" {
		log.Debug("Resolved layout", logfields.Dir(rel), logfields.Layout(b.site.RelPath(layout)))
	}

	if size := dc.Paginate(); size > 0 {
		if err := b.paginate(log, dc, layout, size); err != nil {
			return err
		}
	}

	for _, name := range listing.Filenames {
		if err := b.processFile(log, dc, filepath.Join(dir, name), layout); err != nil {
			return err
		}
	}

	for _, name := range listing.Dirnames {
		if err := b.walkDir(ctx, log, filepath.Join(dir, name), layouts); err != nil {
			return err
		}
	}
	return nil
}

// paginate renders the directory's listing page for each page of its direct
// content items, newest first.
func (b *Builder) paginate(log *slog.Logger, dc *render.DirectoryContext, layout string, size int) error {
	pageSource := filepath.Join(dc.Path(), site.PageFile)
	if _, err := os.Stat(pageSource); err != nil {
		return errors.ConfigError("paginated directory has no page template").
			WithCause(err).
			WithContext("source", pageSource).
			Build()
	}

	pattern := "*"
	if dc.RelPath() != "." {
		pattern = escapeGlob(dc.RelPath()) + "/*"
	}
	entries, err := dc.Items(render.ItemQuery{
		Pattern:  pattern,
		Order:    render.DefaultOrder,
		Reversed: true,
	})
	if err != nil {
		return err
	}

	tpl, err := tmpl.Load(pageSource, layout)
	if err != nil {
		return err
	}

	pageCount := (len(entries) + size - 1) / size
	for i := 0; i < pageCount; i++ {
		end := min((i+1)*size, len(entries))
		ctx := render.NewPaginationContext(i+1, pageCount, entries[i*size:end], render.NewPageContext("index", dc))
		body, err := b.renderTemplate(log, tpl, ctx)
		if err != nil {
			return err
		}

		outputs := []string{path.Join(dc.RelPath(), strconv.Itoa(i+1), site.IndexFile)}
		if i == 0 {
			outputs = append([]string{path.Join(dc.RelPath(), site.IndexFile)}, outputs...)
		}
		for _, out := range outputs {
			if err := writeOutput(b.site.StagePath(out), body); err != nil {
				return err
			}
		}
		b.report.PaginatedPages++
		b.recorder.AddFiles(metrics.FilePaginated, len(outputs))
	}
	log.Debug("Paginated directory", logfields.Dir(dc.RelPath()), logfields.Count(len(entries)), logfields.Page(pageCount))
	return nil
}

// processFile renders, copies or skips one source file.
func (b *Builder) processFile(log *slog.Logger, dc *render.DirectoryContext, src, layout string) error {
	name := filepath.Base(src)
	rel := b.site.RelPath(src)
	switch {
	case name == site.LayoutFile, b.site.IsIgnored(rel):
		return nil
	case b.site.IsStatic(rel):
		if err := copyFile(src, b.site.StagePath(rel)); err != nil {
			return err
		}
		b.report.CopiedFiles++
		b.recorder.AddFiles(metrics.FileCopied, 1)
		return nil
	}

	dst, err := b.site.OutputPath(src)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(name, site.TemplateExt) {
		if err := copyFile(src, dst); err != nil {
			return err
		}
		b.report.CopiedFiles++
		b.recorder.AddFiles(metrics.FileCopied, 1)
		return nil
	}

	tpl, err := tmpl.Load(src, layout)
	if err != nil {
		tmpl.LogFailure(log, src, err)
		return err
	}
	page := render.NewPageContext(strings.TrimSuffix(name, site.TemplateExt), dc)
	body, err := b.renderTemplate(log, tpl, page)
	if err != nil {
		return err
	}
	if err := writeOutput(dst, body); err != nil {
		return err
	}
	b.report.RenderedPages++
	b.recorder.AddFiles(metrics.FileRendered, 1)
	log.Debug("Rendered page", logfields.File(rel), logfields.Output(dst))
	return nil
}

func (b *Builder) renderTemplate(log *slog.Logger, tpl *tmpl.Template, ctx render.Context) (string, error) {
	out, err := tpl.Render(ctx.Params())
	if err != nil {
		tmpl.LogFailure(log, tpl.Name(), err)
		return "", err
	}
	return out.Body, nil
}

// escapeGlob quotes the glob metacharacters of a literal directory path.
func escapeGlob(p string) string {
	var b strings.Builder
	for _, r := range p {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// skipIgnored is the CopyTree filter for static trees.
func (b *Builder) skipIgnored(p string) bool {
	return b.site.IsIgnored(b.site.RelPath(p))
}

func writeOutput(dst, body string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", filepath.Dir(dst)).
			Build()
	}
	if err := os.WriteFile(dst, []byte(body), 0o644); err != nil {
		return errors.FileSystemError("failed to write output").
			WithCause(err).
			WithContext("output", dst).
			Build()
	}
	return nil
}
