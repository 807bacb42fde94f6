package plugin

import (
	"path"
	"strings"
)

// NovelaThemeID is the identifier of the novela content theme.
const NovelaThemeID = "@narative/gatsby-theme-novela"

// ThemeOptions are the options understood by the novela content theme.
type ThemeOptions struct {
	ContentPosts   string        `yaml:"contentPosts"`
	ContentAuthors string        `yaml:"contentAuthors"`
	BasePath       string        `yaml:"basePath"`
	AuthorsPage    bool          `yaml:"authorsPage"`
	Sources        *ThemeSources `yaml:"sources"`
}

// ThemeSources selects where the theme reads posts and authors from.
type ThemeSources struct {
	Local      bool `yaml:"local"`
	Contentful bool `yaml:"contentful"`
}

// DefaultThemeOptions mirrors the theme's own defaults. A nil Sources means
// local sources only.
func DefaultThemeOptions() ThemeOptions {
	return ThemeOptions{
		ContentPosts:   "content/posts",
		ContentAuthors: "content/authors",
		BasePath:       "/",
	}
}

// DecodeThemeOptions decodes a theme options record on top of the theme defaults.
func DecodeThemeOptions(options map[string]any) (ThemeOptions, error) {
	opts := DefaultThemeOptions()
	if err := decodeOptions(options, &opts); err != nil {
		return ThemeOptions{}, err
	}
	if opts.Sources == nil {
		opts.Sources = &ThemeSources{Local: true}
	}
	return opts, nil
}

// NovelaTheme returns the descriptor for the novela content theme.
func NovelaTheme() Descriptor {
	return Descriptor{
		Name:        NovelaThemeID,
		Type:        TypeTheme,
		Description: "Content theme: posts, authors and page templates",
		Validate:    validateThemeOptions,
	}
}

func validateThemeOptions(options map[string]any) error {
	opts, err := DecodeThemeOptions(options)
	if err != nil {
		return err
	}
	if err := validateContentDir("contentPosts", opts.ContentPosts); err != nil {
		return err
	}
	if err := validateContentDir("contentAuthors", opts.ContentAuthors); err != nil {
		return err
	}
	if !strings.HasPrefix(opts.BasePath, "/") {
		return optionErr("basePath", "must start with '/', got %q", opts.BasePath)
	}
	if !opts.Sources.Local && !opts.Sources.Contentful {
		return optionErr("sources", "at least one of local or contentful must be enabled")
	}
	return nil
}

func validateContentDir(key, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return optionErr(key, "must not be empty")
	}
	if path.IsAbs(dir) {
		return optionErr(key, "must be relative to the site root, got %q", dir)
	}
	if clean := path.Clean(dir); clean == ".." || strings.HasPrefix(clean, "../") {
		return optionErr(key, "must stay inside the site root, got %q", dir)
	}
	return nil
}
