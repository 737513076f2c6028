package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("<p>Hello</p>\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hi\n---\n<p>x</p>\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hi\n"), fm)
	require.Equal(t, []byte("<p>x</p>\n"), body)
}

func TestSplit_EmptyFrontmatter(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\nbody"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("body"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Hi\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hi\n"), fm)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: Hi\n<p>x</p>\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: Hi\r\n---\r\n<p>x</p>\r\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hi\r\n"), fm)
	require.Equal(t, []byte("<p>x</p>\r\n"), body)
}

func TestParse_DecodesFields(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Hi\ntags: [a, b]\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, doc.HasFrontMatter)
	require.Equal(t, "Hi", doc.Fields["title"])
	require.Equal(t, []any{"a", "b"}, doc.Fields["tags"])
	require.Equal(t, "body\n", string(doc.Body))
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	require.Error(t, err)
}

func TestParse_NoFrontmatter_EmptyFields(t *testing.T) {
	doc, err := Parse([]byte("plain"))
	require.NoError(t, err)
	require.False(t, doc.HasFrontMatter)
	require.NotNil(t, doc.Fields)
	require.Empty(t, doc.Fields)
}

func TestEncode_SortedKeys(t *testing.T) {
	out, err := Encode(map[string]any{"b": "two", "a": "one", "c": 3})
	require.NoError(t, err)
	require.Equal(t, "a: one\nb: two\nc: 3\n", string(out))

	empty, err := Encode(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestDocumentBytes_RoundTripCRLF(t *testing.T) {
	doc := &Document{Fields: map[string]any{"title": "Hi"}, Body: []byte("x\r\n"), Newline: "\r\n"}
	out, err := doc.Bytes()
	require.NoError(t, err)
	require.Equal(t, "---\r\ntitle: Hi\r\n---\r\nx\r\n", string(out))
}

func TestDocumentBytes_BareBody(t *testing.T) {
	doc := &Document{Fields: map[string]any{}, Body: []byte("x")}
	out, err := doc.Bytes()
	require.NoError(t, err)
	require.Equal(t, "x", string(out))
}
