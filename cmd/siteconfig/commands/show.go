package commands

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/siteconfig/internal/config"
	"git.home.luguber.info/inful/siteconfig/internal/plugin"
)

// ShowCmd implements the 'show' command.
type ShowCmd struct{}

func (s *ShowCmd) Run(g *Global, root *CLI) error {
	loader := config.NewLoader()
	cfg, err := root.LoadConfig(loader)
	if err != nil {
		return err
	}
	return writeSummary(g.out(), cfg, loader.Registry())
}

func writeSummary(w io.Writer, cfg *config.Config, reg *plugin.Registry) error {
	meta := cfg.SiteMetadata
	title := cases.Title(language.English)

	var b strings.Builder
	fmt.Fprintf(&b, "Title:       %s\n", meta.Title)
	if meta.Name != "" {
		fmt.Fprintf(&b, "Author:      %s\n", meta.Name)
	}
	fmt.Fprintf(&b, "URL:         %s\n", meta.SiteURL)
	if meta.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", meta.Description)
	}
	fmt.Fprintf(&b, "Hero:        %s (max width %dpx)\n", meta.Hero.Heading, meta.Hero.MaxWidth)

	fmt.Fprintf(&b, "\nSocial (%d):\n", len(meta.Social))
	for _, link := range meta.Social {
		fmt.Fprintf(&b, "  %-10s %s\n", title.String(link.Name), link.URL)
	}

	fmt.Fprintf(&b, "\nPlugins (%d):\n", len(cfg.Plugins))
	for i, p := range cfg.Plugins {
		fmt.Fprintf(&b, "  %d. %s [%s]\n", i+1, p.Resolve, reg.TypeOf(p.Resolve))
	}

	pages := "no"
	if cfg.AuthorPagesEnabled() {
		pages = "yes"
	}
	if _, ok := cfg.ContentTheme(); !ok {
		pages = "no (no content theme)"
	}
	fmt.Fprintf(&b, "\nAuthor pages: %s\n", pages)

	_, err := io.WriteString(w, b.String())
	return err
}
