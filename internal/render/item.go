package render

import (
	"cmp"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/summary"
	"git.home.luguber.info/inful/mksite/internal/tmpl"
)

// ContentItem is a template bound to the context it renders in. Metadata
// comes from the parsed front matter; only Contents and Summarize render, and
// they render afresh on every call.
type ContentItem struct {
	tpl *tmpl.Template
	ctx Context
}

func NewContentItem(tpl *tmpl.Template, ctx Context) *ContentItem {
	return &ContentItem{tpl: tpl, ctx: ctx}
}

// Source is the template's source path.
func (c *ContentItem) Source() string { return c.tpl.Name() }

func (c *ContentItem) Context() Context { return c.ctx }

// rendering holds the sources of content items being rendered. Reaching an
// item again while it renders is a template error.
var rendering = struct {
	sync.Mutex
	sources map[string]bool
}{sources: map[string]bool{}}

func (c *ContentItem) render() (*tmpl.Rendered, error) {
	src := c.Source()
	rendering.Lock()
	if rendering.sources[src] {
		rendering.Unlock()
		return nil, errors.TemplateError("content item renders its own contents").
			WithContext("source", src).
			Build()
	}
	rendering.sources[src] = true
	rendering.Unlock()
	defer func() {
		rendering.Lock()
		delete(rendering.sources, src)
		rendering.Unlock()
	}()

	out, err := c.tpl.Render(c.ctx.Params())
	if err != nil {
		tmpl.LogFailure(slog.Default(), src, err)
		return nil, err
	}
	return out, nil
}

// Contents renders the item, truncated to maxLength runes when given.
func (c *ContentItem) Contents(maxLength ...int) (string, error) {
	out, err := c.render()
	if err != nil {
		return "", err
	}
	if len(maxLength) > 0 {
		return tmpl.Truncate(maxLength[0], out.Body), nil
	}
	return out.Body, nil
}

// Summarize returns the leading paragraphs of the rendered item in a <div>.
func (c *ContentItem) Summarize() (string, error) {
	body, err := c.Contents()
	if err != nil {
		return "", err
	}
	return summary.Extract(body, summary.DefaultLimit)
}

func (c *ContentItem) Metadata() tmpl.Metadata { return c.tpl.Metadata() }

func (c *ContentItem) Title() string { return c.tpl.Metadata().Title }

// Date is the parsed front matter date. Missing and malformed dates are
// sort_key errors.
func (c *ContentItem) Date() (time.Time, error) {
	t, err := c.tpl.Metadata().Time()
	if err != nil {
		return time.Time{}, errors.SortKeyError("missing or malformed date").
			WithCause(err).
			WithContext("source", c.Source()).
			WithContext("order", "date").
			Build()
	}
	return t, nil
}

// SortKey returns the comparable value of the metadata attribute order.
func (c *ContentItem) SortKey(order string) (any, error) {
	if order == "date" {
		t, err := c.Date()
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	v, ok := c.tpl.Metadata().Lookup(order)
	if !ok {
		return nil, errors.SortKeyError("missing sort key").
			WithContext("source", c.Source()).
			WithContext("order", order).
			Build()
	}
	key, err := normalizeKey(v)
	if err != nil {
		return nil, errors.SortKeyError("unsupported sort key").
			WithCause(err).
			WithContext("source", c.Source()).
			WithContext("order", order).
			Build()
	}
	return key, nil
}

func normalizeKey(v any) (any, error) {
	switch k := v.(type) {
	case string, time.Time:
		return k, nil
	case int:
		return float64(k), nil
	case int64:
		return float64(k), nil
	case uint64:
		return float64(k), nil
	case float64:
		return k, nil
	default:
		return nil, fmt.Errorf("value of type %T cannot be ordered", v)
	}
}

// compareKeys orders two normalized keys of the same kind.
func compareKeys(a, b any) (int, error) {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), nil
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}
