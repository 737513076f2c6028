package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mksite/internal/config"
	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/site"
	"git.home.luguber.info/inful/mksite/internal/tmpl"
)

var buildTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// newSite writes files (site-relative path → content) under a temp site root.
func newSite(t *testing.T, files map[string]string, mutate func(*config.Config)) *site.Site {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		SiteRoot:    filepath.Join(dir, "content"),
		BuildRoot:   filepath.Join(dir, "build"),
		SiteURL:     "http://x/",
		RewriteURLs: true,
	}
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, os.MkdirAll(cfg.SiteRoot, 0o750))
	for rel, content := range files {
		p := filepath.Join(cfg.SiteRoot, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	s, err := site.New(cfg, buildTime)
	require.NoError(t, err)
	return s
}

func post(title, date, body string) string {
	return "---\ntitle: " + title + "\ndate: " + date + "\n---\n" + body
}

func dirContext(t *testing.T, s *site.Site, rel string) *DirectoryContext {
	t.Helper()
	d, err := NewDirectoryContext(s, s.SourcePath(rel))
	require.NoError(t, err)
	return d
}

func urls(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.URL)
	}
	return out
}

func TestParamsWithDoesNotMutate(t *testing.T) {
	base := Params{"a": 1, "b": 2}
	child := base.With(Params{"b": 3, "c": 4})
	require.Equal(t, Params{"a": 1, "b": 2}, base)
	require.Equal(t, Params{"a": 1, "b": 3, "c": 4}, child)
}

func TestDirectoryParams(t *testing.T) {
	s := newSite(t, map[string]string{"blog/__config__.json": `{"paginate": 2, "label": "Blog"}`}, nil)
	d := dirContext(t, s, "blog")

	p := d.Params()
	require.Equal(t, "blog", p["name"])
	require.Equal(t, "blog", p["path"])
	require.Equal(t, buildTime, p["now"])
	require.Same(t, s, p["site"])
	require.Equal(t, "Blog", p["config"].(map[string]any)["label"])
	require.Equal(t, 2, d.Paginate())

	urlFn, ok := p["url"].(func(...string) string)
	require.True(t, ok)
	require.Equal(t, "http://x/blog/post", urlFn("post.html"))
	require.Equal(t, "http://x/", urlFn())
}

func TestPageContextShadowsDirectory(t *testing.T) {
	s := newSite(t, map[string]string{"blog/__config__.json": `{"k": "v"}`}, nil)
	d := dirContext(t, s, "blog")
	page := NewPageContext("hello", d)

	p := page.Params()
	require.Equal(t, "hello", p["name"])
	require.Equal(t, "blog", p["dirpath"])
	require.Equal(t, "blog", p["path"])
	require.Equal(t, "blog", d.Params()["name"])
	require.Equal(t, d.Config(), page.Config())
}

func TestPaginationContextNeighbours(t *testing.T) {
	s := newSite(t, nil, nil)
	d := dirContext(t, s, ".")

	cases := []struct {
		page, count int
		prev, next  any
	}{
		{1, 3, 2, nil},
		{2, 3, 3, 1},
		{3, 3, nil, 2},
		{1, 1, nil, nil},
	}
	for _, tc := range cases {
		pc := NewPaginationContext(tc.page, tc.count, nil, NewPageContext("index", d))
		p := pc.Params()
		require.Equal(t, tc.page, p["page_number"])
		require.Equal(t, tc.count, p["page_count"])
		require.Equal(t, tc.prev, p["prev_page"], "prev_page for %d/%d", tc.page, tc.count)
		require.Equal(t, tc.next, p["next_page"], "next_page for %d/%d", tc.page, tc.count)
		require.Equal(t, "index", p["name"])
		require.Nil(t, pc.Config())
	}
}

func TestDirectoryConfig(t *testing.T) {
	s := newSite(t, map[string]string{
		"bad/__config__.json":  `{"paginate": `,
		"none/page.html":       "x",
		"zero/__config__.json": `{"paginate": 0}`,
	}, nil)

	_, err := NewDirectoryContext(s, s.SourcePath("bad"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	none := dirContext(t, s, "none")
	require.Nil(t, none.Config())
	require.Equal(t, 0, none.Paginate())

	require.Equal(t, 0, dirContext(t, s, "zero").Paginate())
}

func TestContentsExcludesLayout(t *testing.T) {
	s := newSite(t, map[string]string{
		"b.html":          "b",
		"a.html":          "a",
		"__layout__.html": "layout",
		"sub/x.html":      "x",
	}, nil)

	listing, err := dirContext(t, s, ".").Contents()
	require.NoError(t, err)
	require.Equal(t, []string{"sub"}, listing.Dirnames)
	require.Equal(t, []string{"a.html", "b.html"}, listing.Filenames)
}

func TestItemsOrderingAndLimit(t *testing.T) {
	s := newSite(t, map[string]string{
		"blog/first.html":  post("First", "2024-01-01T00:00:00", "<p>1</p>"),
		"blog/second.html": post("Second", "2024-02-01T00:00:00", "<p>2</p>"),
		"blog/third.html":  post("Third", "2024-03-01T00:00:00", "<p>3</p>"),
		"blog/index.html":  "index",
		"blog/notes.txt":   "raw",
		"about.html":       post("About", "2023-01-01T00:00:00", "about"),
	}, nil)
	d := dirContext(t, s, ".")

	asc, err := d.Items(ItemQuery{Pattern: "blog/*"})
	require.NoError(t, err)
	require.Equal(t, []string{"http://x/blog/first", "http://x/blog/second", "http://x/blog/third"}, urls(asc))

	desc, err := d.Items(ItemQuery{Pattern: "/blog/*", Limit: 2, Reversed: true})
	require.NoError(t, err)
	require.Equal(t, []string{"http://x/blog/third", "http://x/blog/second"}, urls(desc))

	all, err := d.Items(ItemQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "http://x/about", all[0].URL)

	byTitle, err := d.Items(ItemQuery{Order: "title", Reversed: true})
	require.NoError(t, err)
	require.Equal(t, "http://x/blog/third", byTitle[0].URL)
	require.Equal(t, "http://x/about", byTitle[len(byTitle)-1].URL)
}

func TestItemsExcludesIgnoredAndStatic(t *testing.T) {
	s := newSite(t, map[string]string{
		"blog/post.html":     post("Post", "2024-01-01T00:00:00", "p"),
		"drafts/wip.html":    post("WIP", "2024-01-02T00:00:00", "w"),
		"raw/verbatim.html":  "{{ not a template",
		"blog/__hidden.html": post("Hidden", "2024-01-03T00:00:00", "h"),
	}, func(c *config.Config) {
		c.Ignored = []string{"drafts"}
		c.Static = []string{"raw"}
	})

	entries, err := dirContext(t, s, ".").Items(ItemQuery{})
	require.NoError(t, err)
	require.Equal(t, []string{"http://x/blog/post"}, urls(entries))
}

func TestItemsMissingDateFails(t *testing.T) {
	s := newSite(t, map[string]string{
		"blog/dated.html":   post("Dated", "2024-01-01T00:00:00", "d"),
		"blog/undated.html": "---\ntitle: Undated\n---\nu",
	}, nil)

	_, err := dirContext(t, s, ".").Items(ItemQuery{Pattern: "blog/*"})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategorySortKey))
}

func TestItemsMalformedDateFails(t *testing.T) {
	s := newSite(t, map[string]string{
		"blog/bad.html": post("Bad", "yesterday", "b"),
	}, nil)

	_, err := dirContext(t, s, ".").Items(ItemQuery{})
	require.True(t, errors.HasCategory(err, errors.CategorySortKey))
}

func TestItemsMissingCustomKeyFails(t *testing.T) {
	s := newSite(t, map[string]string{
		"a.html": "---\nweight: 1\n---\na",
		"b.html": "---\ntitle: B\n---\nb",
	}, nil)

	_, err := dirContext(t, s, ".").Items(ItemQuery{Order: "weight"})
	require.True(t, errors.HasCategory(err, errors.CategorySortKey))
}

func TestItemsBindPageName(t *testing.T) {
	s := newSite(t, map[string]string{
		"blog/hello.html": post("Hello", "2024-01-01T00:00:00", "<p>{{ .name }} in {{ .dirpath }}</p>"),
	}, nil)

	entries, err := dirContext(t, s, ".").Items(ItemQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	body, err := entries[0].Item.Contents()
	require.NoError(t, err)
	require.Equal(t, "<p>hello in blog</p>", body)
}

func TestItemsFromTemplate(t *testing.T) {
	s := newSite(t, map[string]string{
		"blog/a.html": post("A", "2024-01-01T00:00:00", "a"),
		"blog/b.html": post("B", "2024-02-01T00:00:00", "b"),
		"blog/c.html": post("C", "2024-03-01T00:00:00", "c"),
	}, nil)
	d := dirContext(t, s, "blog")

	tpl, err := tmpl.Parse("index.html", []byte(`{{ range call .items "blog/*" 2 "date" true }}{{ .Item.Title }};{{ end }}`))
	require.NoError(t, err)
	out, err := tpl.Render(NewPageContext("index", d).Params())
	require.NoError(t, err)
	require.Equal(t, "C;B;", out.Body)

	_, err = d.itemsFunc("blog/*", "two")
	require.Error(t, err)
}

func TestContentItemAccessors(t *testing.T) {
	s := newSite(t, map[string]string{
		"p.html": post("Title", "2024-05-05T05:05:05", "<h1>h</h1><p>first</p><p>second</p>"),
	}, nil)
	d := dirContext(t, s, ".")

	tpl, err := tmpl.Load(s.SourcePath("p.html"), "")
	require.NoError(t, err)
	item := NewContentItem(tpl, NewPageContext("p", d))

	require.Equal(t, "Title", item.Title())

	date, err := item.Date()
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC), date)

	short, err := item.Contents(9)
	require.NoError(t, err)
	require.Equal(t, "<h1>h</h1", short)

	sum, err := item.Summarize()
	require.NoError(t, err)
	require.Equal(t, "<div><p>first</p><p>second</p></div>", sum)
}

func TestCompareKeys(t *testing.T) {
	c, err := compareKeys(1.0, 2.0)
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = compareKeys("b", "a")
	require.NoError(t, err)
	require.Equal(t, 1, c)

	_, err = compareKeys("a", 1.0)
	require.Error(t, err)
}
