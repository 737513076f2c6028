// Package frontmatter splits `---` delimited YAML front matter from a template
// or markdown document and decodes it.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Document is a source file separated into its front matter fields and body.
type Document struct {
	Fields map[string]any
	Body   []byte
	// HasFrontMatter is false when the file did not start with a delimiter.
	HasFrontMatter bool
	// Newline is the line ending detected in the source, "\n" or "\r\n".
	Newline string
}

// Split separates raw front matter from the body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input.
func Split(content []byte) (front []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line without a trailing newline.
		tail := []byte(nl + delimiter)
		if bytes.HasSuffix(content, tail) {
			return content[start : len(content)-len(delimiter)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Parse splits content and decodes the YAML front matter.
func Parse(content []byte) (*Document, error) {
	front, body, had, err := Split(content)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &fields); err != nil {
			return nil, fmt.Errorf("decode front matter: %w", err)
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}
	return &Document{
		Fields:         fields,
		Body:           body,
		HasFrontMatter: had,
		Newline:        detectNewline(content),
	}, nil
}

// Encode serializes fields as YAML without delimiters. Map keys come out
// sorted so output is stable. An empty map encodes to nothing.
func Encode(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Bytes reassembles the document. Documents without fields and without a
// source front matter block are returned as the bare body.
func (d *Document) Bytes() ([]byte, error) {
	if !d.HasFrontMatter && len(d.Fields) == 0 {
		return d.Body, nil
	}
	nl := d.Newline
	if nl == "" {
		nl = "\n"
	}
	front, err := Encode(d.Fields)
	if err != nil {
		return nil, err
	}
	if nl != "\n" {
		front = bytes.ReplaceAll(front, []byte("\n"), []byte(nl))
	}

	var out bytes.Buffer
	out.WriteString(delimiter + nl)
	out.Write(front)
	out.WriteString(delimiter + nl)
	out.Write(d.Body)
	return out.Bytes(), nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
