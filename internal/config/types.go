package config

import (
	"git.home.luguber.info/inful/siteconfig/internal/plugin"
)

// Config is the site configuration record handed to the host framework.
// Values returned by the loader are read-only; use Clone before modifying one.
type Config struct {
	SiteMetadata SiteMetadata   `yaml:"siteMetadata" json:"siteMetadata"`
	Plugins      []plugin.Entry `yaml:"plugins" json:"plugins"`
}

// SiteMetadata describes the site itself.
type SiteMetadata struct {
	Title       string       `yaml:"title" json:"title"`
	Name        string       `yaml:"name,omitempty" json:"name,omitempty"`
	SiteURL     string       `yaml:"siteUrl" json:"siteUrl"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Hero        Hero         `yaml:"hero" json:"hero"`
	Social      []SocialLink `yaml:"social,omitempty" json:"social,omitempty"`
}

// Hero is the landing page banner.
type Hero struct {
	Heading  string `yaml:"heading" json:"heading"`
	MaxWidth int    `yaml:"maxWidth" json:"maxWidth"` // pixels
}

// SocialLink is one profile link; the slice order is the display order.
type SocialLink struct {
	Name string `yaml:"name" json:"name"` // free-form platform label
	URL  string `yaml:"url" json:"url"`
}

// ContentTheme returns the content-theme entry. On a validated configuration the
// theme is always the first plugin; an empty plugin list has no theme.
func (c *Config) ContentTheme() (plugin.Entry, bool) {
	if c == nil || len(c.Plugins) == 0 {
		return plugin.Entry{}, false
	}
	return c.Plugins[0], true
}

// AuthorPagesEnabled reports whether the content theme will generate author pages.
func (c *Config) AuthorPagesEnabled() bool {
	theme, ok := c.ContentTheme()
	if !ok {
		return false
	}
	opts, err := plugin.DecodeThemeOptions(theme.Options)
	if err != nil {
		return false
	}
	return opts.AuthorsPage
}

// PluginByResolve returns the first plugin entry with the given identifier.
func (c *Config) PluginByResolve(id string) (plugin.Entry, bool) {
	for _, p := range c.Plugins {
		if p.Resolve == id {
			return p, true
		}
	}
	return plugin.Entry{}, false
}

// SocialByName returns the first social link with the given platform label.
func (c *Config) SocialByName(name string) (SocialLink, bool) {
	for _, s := range c.SiteMetadata.Social {
		if s.Name == name {
			return s, true
		}
	}
	return SocialLink{}, false
}

// PluginIDs returns the plugin identifiers in initialization order.
func (c *Config) PluginIDs() []string {
	ids := make([]string, len(c.Plugins))
	for i, p := range c.Plugins {
		ids[i] = p.Resolve
	}
	return ids
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.SiteMetadata.Social != nil {
		out.SiteMetadata.Social = append([]SocialLink(nil), c.SiteMetadata.Social...)
	}
	if c.Plugins != nil {
		out.Plugins = make([]plugin.Entry, len(c.Plugins))
		for i, p := range c.Plugins {
			out.Plugins[i] = p.Clone()
		}
	}
	return &out
}
