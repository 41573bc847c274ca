// Package cli implements the behave command-line interface.
//
// The commands work on project bundles, single JSON files holding every
// container of a project together with its asset library:
//
//   - validate: open every container and report what would not load
//   - export: compile the project into the runtime export format
//   - render: draw one container as SVG or DOT
//   - inspect: summarize containers, dependencies and references
//   - layout: auto-layout every container and rewrite the bundle
//   - push, pull: copy containers between a bundle and the configured store
//
// # Configuration
//
// An optional TOML file (--config, default
// $XDG_CONFIG_HOME/behave/behave.toml) selects the store backend and sets
// export and layout defaults. See [Config].
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log. Status lines go to stdout, logs to stderr.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/behave/pkg/buildinfo"
	"github.com/matzehuels/behave/pkg/canvas"
	pkgio "github.com/matzehuels/behave/pkg/io"
	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/project"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "behave"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "behave inspects, lays out and exports behaviour graph projects",
		Long:         `behave works on behaviour graph projects: it validates containers, renders them as diagrams, lays them out and compiles the project into the runtime export format.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/behave/behave.toml)")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.pullCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Project Loading
// =============================================================================

// projectOptions are the options every command builds projects with.
func (c *CLI) projectOptions(extra ...project.Option) []project.Option {
	opts := []project.Option{
		project.WithLogger(c.Logger),
		project.WithHooks(observability.LogHooks(c.Logger)),
	}
	return append(opts, extra...)
}

// loadProject reads a bundle file into a project.
func (c *CLI) loadProject(path string, extra ...project.Option) (*project.Project, error) {
	b, err := pkgio.ImportBundle(path)
	if err != nil {
		return nil, err
	}
	return project.FromBundle(b, c.projectOptions(extra...)...)
}

// openAll opens every container of p and returns the load diagnostics per
// container id.
func openAll(ctx context.Context, p *project.Project) (map[string][]canvas.Diagnostic, error) {
	diags := map[string][]canvas.Diagnostic{}
	for _, ct := range p.Containers() {
		_, res, err := p.OpenContainer(ctx, ct.ID())
		if err != nil {
			return diags, err
		}
		if len(res.Diagnostics) > 0 {
			diags[ct.ID()] = res.Diagnostics
		}
	}
	return diags, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/behave/).
func configDir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/behave/).
func dataDir() (string, error) {
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// outputPath returns explicit when set, otherwise input with its extension
// replaced by suffix.
func outputPath(explicit, input, suffix string) string {
	if explicit != "" {
		return explicit
	}
	return input[:len(input)-len(filepath.Ext(input))] + suffix
}
