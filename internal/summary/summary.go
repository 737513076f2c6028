// Package summary extracts a short HTML excerpt from a rendered page.
package summary

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
)

// DefaultLimit is the serialized length at which Extract stops adding paragraphs.
const DefaultLimit = 400

// Extract collects the paragraphs of doc, in document order, into a <div>.
// Paragraphs are appended until the serialized div reaches limit characters or
// none remain, so the last paragraph may carry it past the limit. A document
// without paragraphs yields "<div></div>".
func Extract(doc string, limit int) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryTemplate, "failed to parse rendered HTML").Build()
	}

	var paragraphs []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			paragraphs = append(paragraphs, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)

	div := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	out, err := render(div)
	if err != nil {
		return "", err
	}
	for _, p := range paragraphs {
		if len(out) >= limit {
			break
		}
		p.Parent.RemoveChild(p)
		div.AppendChild(p)
		if out, err = render(div); err != nil {
			return "", err
		}
	}
	return out, nil
}

func render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to render summary").Build()
	}
	return buf.String(), nil
}
