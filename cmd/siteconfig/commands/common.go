package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/siteconfig/internal/config"
)

// Global holds state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (empty uses the built-in configuration)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Validate ValidateCmd `cmd:"" default:"1" help:"Load and validate the site configuration"`
	Show     ShowCmd     `cmd:"" help:"Print a summary of the site configuration"`
	Export   ExportCmd   `cmd:"" help:"Export the configuration for the site generator"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Watch    WatchCmd    `cmd:"" help:"Revalidate the configuration whenever it changes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// Source describes where the configuration is read from.
func (c *CLI) Source() string {
	if c.Config == "" {
		return "built-in configuration"
	}
	return c.Config
}

// LoadConfig loads the file named by --config, or the built-in record when unset.
func (c *CLI) LoadConfig(loader *config.Loader) (*config.Config, error) {
	if loader == nil {
		loader = config.NewLoader()
	}
	if c.Config == "" {
		return loader.Builtin()
	}
	return loader.Load(c.Config)
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}
