package commands

import "fmt"

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	if _, err := root.LoadConfig(nil); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.out(), "✓ %s is valid\n", root.Source())
	return err
}
