// Package render models the chain of parameter scopes a page is rendered
// with: site, directory, page and pagination. Each scope copies its parent's
// parameters and overlays its own, so nearer scopes shadow farther ones.
package render

import "maps"

// Params is the mapping handed to the template engine.
type Params map[string]any

// With returns a copy of p with overlay applied on top. p is not modified.
func (p Params) With(overlay Params) Params {
	out := make(Params, len(p)+len(overlay))
	maps.Copy(out, p)
	maps.Copy(out, overlay)
	return out
}

// Context is one link in the parameter chain.
type Context interface {
	Params() Params
	// Config is the owning directory's local configuration, nil when absent.
	Config() map[string]any
}

// PageContext scopes a single page inside a directory.
type PageContext struct {
	name   string
	parent Context
}

// NewPageContext binds name under parent. The page also sees its directory's
// path as dirpath.
func NewPageContext(name string, parent Context) *PageContext {
	return &PageContext{name: name, parent: parent}
}

func (p *PageContext) Name() string { return p.name }

func (p *PageContext) Params() Params {
	base := p.parent.Params()
	return base.With(Params{
		"name":    p.name,
		"dirpath": base["path"],
	})
}

func (p *PageContext) Config() map[string]any { return p.parent.Config() }

// PaginationContext scopes one page of a paginated listing.
//
// prev_page points at the next higher page number (older content) and is nil
// on the last page; next_page points at the next lower number and is nil on
// page 1.
type PaginationContext struct {
	pageNumber int
	pageCount  int
	pageItems  []Entry
	parent     Context
}

func NewPaginationContext(pageNumber, pageCount int, pageItems []Entry, parent Context) *PaginationContext {
	return &PaginationContext{
		pageNumber: pageNumber,
		pageCount:  pageCount,
		pageItems:  pageItems,
		parent:     parent,
	}
}

func (p *PaginationContext) PageNumber() int { return p.pageNumber }

func (p *PaginationContext) Params() Params {
	var prev, next any
	if p.pageNumber < p.pageCount {
		prev = p.pageNumber + 1
	}
	if p.pageNumber > 1 {
		next = p.pageNumber - 1
	}
	return p.parent.Params().With(Params{
		"page_number": p.pageNumber,
		"page_count":  p.pageCount,
		"page_items":  p.pageItems,
		"prev_page":   prev,
		"next_page":   next,
	})
}

func (p *PaginationContext) Config() map[string]any { return p.parent.Config() }
