package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	long := strings.Repeat("x", 380)

	cases := []struct {
		name  string
		doc   string
		limit int
		want  string
	}{
		{
			name:  "no paragraphs",
			doc:   "<h1>Title</h1><ul><li>a</li></ul>",
			limit: DefaultLimit,
			want:  "<div></div>",
		},
		{
			name:  "all short paragraphs",
			doc:   "<h1>T</h1><p>one</p><div><p>two</p></div>",
			limit: DefaultLimit,
			want:  "<div><p>one</p><p>two</p></div>",
		},
		{
			name:  "stops once limit reached",
			doc:   "<p>" + long + "</p><p>second</p><p>third</p>",
			limit: DefaultLimit,
			want:  "<div><p>" + long + "</p><p>second</p></div>",
		},
		{
			name:  "inline markup kept",
			doc:   `<p>a <a href="/x">link</a></p>`,
			limit: DefaultLimit,
			want:  `<div><p>a <a href="/x">link</a></p></div>`,
		},
		{
			name:  "zero limit keeps container only",
			doc:   "<p>one</p>",
			limit: 0,
			want:  "<div></div>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.doc, tc.limit)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
