package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
)

func TestParseJSONDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"siteurl": "http://x/", "paginate": 3}`), FormatJSON)
	require.NoError(t, err)
	require.Equal(t, DefaultSiteRoot, cfg.SiteRoot)
	require.Equal(t, DefaultBuildRoot, cfg.BuildRoot)
	require.Equal(t, "http://x/", cfg.SiteURL)
	require.False(t, cfg.RewriteURLs)
	require.Contains(t, cfg.Params, "paginate")
}

func TestParseFormats(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		data   string
	}{
		{"json", FormatJSON, `{"siteurl":"http://x/","siteroot":"src","rewrite-urls":true,"static":["css*"],"title":"Blog"}`},
		{"yaml", FormatYAML, "siteurl: http://x/\nsiteroot: src\nrewrite-urls: true\nstatic:\n  - css*\ntitle: Blog\n"},
		{"toml", FormatTOML, "siteurl = \"http://x/\"\nsiteroot = \"src\"\nrewrite-urls = true\nstatic = [\"css*\"]\ntitle = \"Blog\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)
			require.Equal(t, "src", cfg.SiteRoot)
			require.True(t, cfg.RewriteURLs)
			require.Equal(t, []string{"css*"}, cfg.Static)
			require.Equal(t, "Blog", cfg.Title)
		})
	}
}

func TestValidateRequiresSiteURL(t *testing.T) {
	cfg, err := Parse([]byte(`{"siteroot": "content"}`), FormatJSON)
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"siteurl": `), FormatJSON)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestValidateBuildRootInsideSiteRoot(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"nested", `{"siteurl":"http://x/","siteroot":"content","buildroot":"content/out"}`, true},
		{"same", `{"siteurl":"http://x/","siteroot":"content","buildroot":"content"}`, true},
		{"sibling with shared prefix", `{"siteurl":"http://x/","siteroot":"content","buildroot":"content-build"}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tc.data), FormatJSON)
			require.NoError(t, err)
			if tc.wantErr {
				require.Error(t, cfg.Validate())
			} else {
				require.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestOverrideRescuesNestedBuildRoot(t *testing.T) {
	cfg, err := Parse([]byte(`{"siteurl":"http://x/","siteroot":"content","buildroot":"content/out"}`), FormatJSON)
	require.NoError(t, err)

	out, err := cfg.WithOverrides("", "public")
	require.NoError(t, err)
	require.Equal(t, "public", out.BuildRoot)

	_, err = cfg.WithOverrides("", "")
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestFormatFromPath(t *testing.T) {
	require.Equal(t, FormatYAML, FormatFromPath("site.yml"))
	require.Equal(t, FormatYAML, FormatFromPath("site.YAML"))
	require.Equal(t, FormatTOML, FormatFromPath("site.toml"))
	require.Equal(t, FormatJSON, FormatFromPath("config.json"))
	require.Equal(t, FormatJSON, FormatFromPath("config"))
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("MKSITE_TEST_URL", "https://example.org/")
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("siteurl: ${MKSITE_TEST_URL}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://example.org/", cfg.SiteURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestWithOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`{"siteurl":"http://x/"}`), FormatJSON)
	require.NoError(t, err)

	out, err := cfg.WithOverrides("site", "")
	require.NoError(t, err)
	require.Equal(t, "site", out.SiteRoot)
	require.Equal(t, DefaultBuildRoot, out.BuildRoot)
	require.Equal(t, DefaultSiteRoot, cfg.SiteRoot)
}
