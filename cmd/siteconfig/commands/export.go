package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/siteconfig/internal/config"
	"git.home.luguber.info/inful/siteconfig/internal/export"
	"git.home.luguber.info/inful/siteconfig/internal/version"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Output string `short:"o" help:"Output directory for exported files" default:"./public" type:"path"`
	Format string `help:"Export format" default:"json" enum:"json,yaml,yml"`
}

func (e *ExportCmd) Run(g *Global, root *CLI) error {
	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	loader := config.NewLoader()
	cfg, err := root.LoadConfig(loader)
	if err != nil {
		return err
	}

	m, err := export.Write(context.Background(), cfg, e.Output, export.Options{
		Format:   format,
		Source:   root.Source(),
		Version:  version.Version,
		Registry: loader.Registry(),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.out(), "Exported %s to %s (export %s)\n", format.FileName(), e.Output, m.ID)
	return err
}
