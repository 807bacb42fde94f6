package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/siteconfig/internal/foundation/errors"
	"git.home.luguber.info/inful/siteconfig/internal/metrics"
	"git.home.luguber.info/inful/siteconfig/internal/plugin"
)

func TestBuiltin(t *testing.T) {
	cfg, err := Builtin()
	require.NoError(t, err)

	md := cfg.SiteMetadata
	assert.Equal(t, "Tobias Busch", md.Title)
	assert.Equal(t, "Tobias Busch", md.Name)
	assert.Equal(t, "https://tobiasbusch.xyz", md.SiteURL)
	assert.Equal(t, "Personal website of Tobias Busch.", md.Description)
	assert.Equal(t, "Hi, I'm Tobias! I write about R and data visualization.", md.Hero.Heading)
	assert.Equal(t, 652, md.Hero.MaxWidth)

	require.Len(t, md.Social, 4)
	names := []string{md.Social[0].Name, md.Social[1].Name, md.Social[2].Name, md.Social[3].Name}
	assert.Equal(t, []string{"twitter", "github", "instagram", "linkedin"}, names)

	gh, ok := cfg.SocialByName("github")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/teebusch", gh.URL)

	assert.Equal(t, []string{plugin.NovelaThemeID, plugin.ManifestID, plugin.GoogleAnalyticsID}, cfg.PluginIDs())
	assert.True(t, cfg.AuthorPagesEnabled())

	ga, ok := cfg.PluginByResolve(plugin.GoogleAnalyticsID)
	require.True(t, ok)
	assert.Equal(t, "UA-100070749-2", ga.Options["trackingId"])

	theme, ok := cfg.ContentTheme()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"local": true}, theme.Options["sources"])
}

func TestBuiltinIsIdempotent(t *testing.T) {
	a, err := Builtin()
	require.NoError(t, err)
	b, err := Builtin()
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("two loads differ (-first +second):\n%s", diff)
	}

	a.SiteMetadata.Social[0].URL = "https://example.com"
	a.Plugins[0].Options["basePath"] = "/blog"
	assert.Equal(t, "https://twitter.com/drtobilotti", b.SiteMetadata.Social[0].URL)
	assert.Equal(t, "/", b.Plugins[0].Options["basePath"])
}

func TestClone(t *testing.T) {
	cfg, err := Builtin()
	require.NoError(t, err)

	clone := cfg.Clone()
	if diff := cmp.Diff(cfg, clone); diff != "" {
		t.Fatalf("clone differs:\n%s", diff)
	}
	clone.Plugins[1].Options["name"] = "changed"
	clone.SiteMetadata.Social = clone.SiteMetadata.Social[:1]
	assert.Equal(t, "Novela by Narative", cfg.Plugins[1].Options["name"])
	assert.Len(t, cfg.SiteMetadata.Social, 4)

	var nilCfg *Config
	assert.Nil(t, nilCfg.Clone())
}

const minimalSite = `
siteMetadata:
  title: Example
  siteUrl: https://example.com
  hero:
    heading: Hello
    maxWidth: 600
`

func TestParseMissingSiteURL(t *testing.T) {
	_, err := Parse([]byte(`
siteMetadata:
  title: Tobias Busch
  hero:
    heading: Hi
    maxWidth: 652
`))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "siteUrl")

	field, ok := FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "siteMetadata.siteUrl", field)
}

func TestParseZeroPluginsIsValid(t *testing.T) {
	cfg, err := Parse([]byte(minimalSite + "plugins: []\n"))
	require.NoError(t, err)

	_, ok := cfg.ContentTheme()
	assert.False(t, ok)
	assert.False(t, cfg.AuthorPagesEnabled())
	assert.Empty(t, cfg.PluginIDs())

	cfg, err = Parse([]byte(minimalSite))
	require.NoError(t, err)
	assert.Nil(t, cfg.Plugins)
}

func TestParsePreservesPluginOrder(t *testing.T) {
	cfg, err := Parse([]byte(minimalSite + `
plugins:
  - resolve: "@narative/gatsby-theme-novela"
  - resolve: gatsby-plugin-google-analytics
    options:
      trackingId: G-ABCDEF12
  - resolve: gatsby-plugin-offline
  - resolve: gatsby-plugin-manifest
    options:
      name: Example
`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		plugin.NovelaThemeID,
		plugin.GoogleAnalyticsID,
		"gatsby-plugin-offline",
		plugin.ManifestID,
	}, cfg.PluginIDs())
	assert.False(t, cfg.AuthorPagesEnabled(), "authorsPage defaults to false")
}

func TestParseDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"not yaml", "siteMetadata: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig), "got %v", err)
			assert.False(t, IsValidationError(err))
		})
	}
}

func TestParseMalformedFieldsAreValidationErrors(t *testing.T) {
	builtinDoc := string(BuiltinYAML())

	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"non-integer hero width", strings.Replace(builtinDoc, "maxWidth: 652", "maxWidth: wide", 1), "siteMetadata.hero.maxWidth"},
		{"unknown top-level key", minimalSite + "pathPrefix: /blog\n", "pathPrefix"},
		{"unknown metadata key", "siteMetadata:\n  author: me\n", "siteMetadata.author"},
		{"wrong type", "siteMetadata:\n  hero:\n    maxWidth: wide\n", "siteMetadata.hero.maxWidth"},
		{"scalar social list", "siteMetadata:\n  social: twitter\n", "siteMetadata.social"},
		{"unknown social key", "siteMetadata:\n  social:\n    - name: github\n      link: https://github.com\n", "siteMetadata.social[0].link"},
		{"unknown plugin key", minimalSite + "plugins:\n  - resolve: x\n    opts: {}\n", "plugins[0].opts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "got %v", err)
			field, ok := FieldOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, field)

			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.True(t, strings.HasPrefix(classified.Message(), tt.field), classified.Message())
		})
	}
}

func TestParseNormalizesOptionKeys(t *testing.T) {
	doc := minimalSite + `
plugins:
  - resolve: "@narative/gatsby-theme-novela"
  - resolve: gatsby-plugin-offline
    options:
      sizes:
        1: small
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	offline, ok := cfg.PluginByResolve("gatsby-plugin-offline")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"1": "small"}, offline.Options["sizes"])
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing title", func(c *Config) { c.SiteMetadata.Title = " " }, "siteMetadata.title"},
		{"relative site url", func(c *Config) { c.SiteMetadata.SiteURL = "tobiasbusch.xyz" }, "siteMetadata.siteUrl"},
		{"unparseable site url", func(c *Config) { c.SiteMetadata.SiteURL = "https://exa mple.com/%zz" }, "siteMetadata.siteUrl"},
		{"non-http site url", func(c *Config) { c.SiteMetadata.SiteURL = "ftp://tobiasbusch.xyz" }, "siteMetadata.siteUrl"},
		{"missing hero heading", func(c *Config) { c.SiteMetadata.Hero.Heading = "" }, "siteMetadata.hero.heading"},
		{"zero hero width", func(c *Config) { c.SiteMetadata.Hero.MaxWidth = 0 }, "siteMetadata.hero.maxWidth"},
		{"negative hero width", func(c *Config) { c.SiteMetadata.Hero.MaxWidth = -1 }, "siteMetadata.hero.maxWidth"},
		{"social without name", func(c *Config) { c.SiteMetadata.Social[1].Name = "" }, "siteMetadata.social[1].name"},
		{"social without url", func(c *Config) { c.SiteMetadata.Social[2].URL = "" }, "siteMetadata.social[2].url"},
		{"social relative url", func(c *Config) { c.SiteMetadata.Social[3].URL = "linkedin.com/tobias" }, "siteMetadata.social[3].url"},
		{"social host-less url", func(c *Config) { c.SiteMetadata.Social[0].URL = "https:///drtobilotti" }, "siteMetadata.social[0].url"},
		{"plugin without resolve", func(c *Config) { c.Plugins[2].Resolve = "" }, "plugins[2].resolve"},
		{"theme not first", func(c *Config) { c.Plugins[0], c.Plugins[1] = c.Plugins[1], c.Plugins[0] }, "plugins[0].resolve"},
		{"unknown first plugin", func(c *Config) {
			c.Plugins = append([]plugin.Entry{{Resolve: "gatsby-plugin-offline"}}, c.Plugins...)
		}, "plugins[0].resolve"},
		{"theme option", func(c *Config) { c.Plugins[0].Options["basePath"] = "blog" }, "plugins[0].options.basePath"},
		{"manifest option", func(c *Config) { c.Plugins[1].Options["display"] = "windowed" }, "plugins[1].options.display"},
		{"analytics option", func(c *Config) { delete(c.Plugins[2].Options, "trackingId") }, "plugins[2].options.trackingId"},
		{"malformed options", func(c *Config) { c.Plugins[0].Options["authorsPage"] = "sometimes" }, "plugins[0].options"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Builtin()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = Validate(cfg)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			field, ok := FieldOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, field)
			assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityFatal))

			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Contains(t, classified.Message(), tt.field)
		})
	}
}

func TestValidateLogsRejectedPluginOptions(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg, err := Builtin()
	require.NoError(t, err)
	cfg.Plugins[1].Options["display"] = "windowed"
	require.Error(t, Validate(cfg))

	out := buf.String()
	assert.Contains(t, out, "plugin="+plugin.ManifestID)
	assert.Contains(t, out, "plugin_type=manifest")
	assert.Contains(t, out, "field=plugins[1].options.display")
}

func TestValidateNil(t *testing.T) {
	assert.True(t, IsValidationError(Validate(nil)))
}

func TestValidateWithCustomRegistry(t *testing.T) {
	cfg, err := Builtin()
	require.NoError(t, err)

	// With an empty registry nothing is a theme, so the first plugin is rejected.
	err = ValidateWith(cfg, plugin.NewRegistry())
	field, _ := FieldOf(err)
	assert.Equal(t, "plugins[0].resolve", field)

	reg := plugin.DefaultRegistry()
	require.NoError(t, reg.Register(plugin.Descriptor{Name: "gatsby-theme-blog", Type: plugin.TypeTheme}))
	cfg.Plugins[0] = plugin.Entry{Resolve: "gatsby-theme-blog", Options: map[string]any{"anything": 1}}
	assert.NoError(t, ValidateWith(cfg, reg))
}

func TestFieldOfNonValidationError(t *testing.T) {
	_, ok := FieldOf(ferrors.ConfigError("x").WithContext(FieldKey, "title").Build())
	assert.False(t, ok)
	_, ok = FieldOf(nil)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SITECONFIG_TEST_GA_ID=G-LOADTEST1\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SITECONFIG_TEST_GA_ID") })

	path := filepath.Join(dir, "site.yaml")
	doc := minimalSite + `
plugins:
  - resolve: "@narative/gatsby-theme-novela"
  - resolve: gatsby-plugin-google-analytics
    options:
      trackingId: ${SITECONFIG_TEST_GA_ID}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := NewLoader(WithEnvFiles(envFile)).Load(path)
	require.NoError(t, err)
	ga, ok := cfg.PluginByResolve(plugin.GoogleAnalyticsID)
	require.True(t, ok)
	assert.Equal(t, "G-LOADTEST1", ga.Options["trackingId"])
}

func TestLoadExpandsOnlyBracedReferences(t *testing.T) {
	t.Setenv("SITECONFIG_TEST_HEADING", "Hi")
	t.Setenv("HOME", "/home/site")

	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	doc := "siteMetadata:\n" +
		"  title: T\n" +
		"  siteUrl: https://example.com\n" +
		"  description: Costs $HOME and ${UNSET_SITECONFIG_VAR}nothing\n" +
		"  hero:\n" +
		"    heading: ${SITECONFIG_TEST_HEADING}, data viz for $5 a month.\n" +
		"    maxWidth: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := NewLoader(WithEnvFiles()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Hi, data viz for $5 a month.", cfg.SiteMetadata.Hero.Heading)
	assert.Equal(t, "Costs $HOME and nothing", cfg.SiteMetadata.Description)
}

func TestLoadEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SITECONFIG_TEST_URL=https://from-file.example\n"), 0o600))
	t.Setenv("SITECONFIG_TEST_URL", "https://from-env.example")

	path := filepath.Join(dir, "site.yaml")
	doc := "siteMetadata:\n  title: T\n  siteUrl: ${SITECONFIG_TEST_URL}\n  hero:\n    heading: H\n    maxWidth: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := NewLoader(WithEnvFiles(envFile, filepath.Join(dir, "missing.env"))).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example", cfg.SiteMetadata.SiteURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(WithEnvFiles()).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")

	require.NoError(t, Init(path, false))
	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryExists))
	require.NoError(t, Init(path, true))

	loaded, err := NewLoader(WithEnvFiles()).Load(path)
	require.NoError(t, err)
	builtin, err := Builtin()
	require.NoError(t, err)
	if diff := cmp.Diff(builtin, loaded); diff != "" {
		t.Fatalf("initialized file differs from builtin:\n%s", diff)
	}
}

type countingRecorder struct {
	results  map[metrics.ResultLabel]int
	failures []string
	plugins  int
	social   int
}

func (c *countingRecorder) ObserveLoad(_ string, _ time.Duration, r metrics.ResultLabel) {
	c.results[r]++
}
func (c *countingRecorder) IncValidationFailure(field string) { c.failures = append(c.failures, field) }
func (c *countingRecorder) SetPlugins(n int)                  { c.plugins = n }
func (c *countingRecorder) SetSocialLinks(n int)              { c.social = n }

func TestLoaderRecordsOutcomes(t *testing.T) {
	rec := &countingRecorder{results: map[metrics.ResultLabel]int{}}
	loader := NewLoader(WithRecorder(rec), WithEnvFiles())

	_, err := loader.Builtin()
	require.NoError(t, err)
	_, err = loader.Parse([]byte("siteMetadata:\n  title: x\n"))
	require.Error(t, err)
	_, err = loader.Parse([]byte("siteMetadata:\n  hero:\n    maxWidth: wide\n"))
	require.Error(t, err)
	_, err = loader.Parse([]byte("siteMetadata: [\n"))
	require.Error(t, err)

	assert.Equal(t, 1, rec.results[metrics.ResultSuccess])
	assert.Equal(t, 2, rec.results[metrics.ResultInvalid])
	assert.Equal(t, 1, rec.results[metrics.ResultFailed])
	assert.Equal(t, []string{"siteMetadata.siteUrl", "siteMetadata.hero.maxWidth"}, rec.failures)
	assert.Equal(t, 3, rec.plugins)
	assert.Equal(t, 4, rec.social)
}

func TestBuiltinYAMLIsCopy(t *testing.T) {
	a := BuiltinYAML()
	a[0] = 'X'
	assert.NotEqual(t, a[0], BuiltinYAML()[0])
}
