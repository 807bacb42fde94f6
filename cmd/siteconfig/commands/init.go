package commands

import (
	"fmt"

	"git.home.luguber.info/inful/siteconfig/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing configuration file"`
	Path  string `arg:"" optional:"" help:"Where to write the configuration" default:"site.yaml" type:"path"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	if err := config.Init(i.Path, i.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.out(), "Wrote example configuration to %s\n", i.Path)
	return err
}
