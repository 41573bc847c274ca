package cli

import (
	"context"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/behave/pkg/io"
	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/project"
	"github.com/matzehuels/behave/pkg/store"
)

// openStore opens the configured store backend.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config.storeConfig()
	if err != nil {
		return nil, err
	}
	cfg.Hooks = observability.LogHooks(c.Logger)
	c.Logger.Debug("opening store", "backend", cfg.Backend)
	return store.Open(ctx, cfg)
}

// pushCommand creates the push command.
func (c *CLI) pushCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push [bundle.json]",
		Short: "Save every container of a bundle to the configured store",
		Long: `Save every container of a bundle to the configured store.

Script nodes without a stored record get one provisioned on the way. The
store keeps containers only; assets and groups stay in the bundle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPush(cmd.Context(), args[0])
		},
	}
	return cmd
}

func (c *CLI) runPush(ctx context.Context, input string) error {
	prog := newProgress(c.Logger)
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := c.loadProject(input, project.WithStore(s))
	if err != nil {
		return err
	}
	if _, err := openAll(ctx, p); err != nil {
		return err
	}
	if err := p.SaveAll(ctx); err != nil {
		return err
	}
	prog.done("Pushed " + p.Name())

	printSuccess("Saved %d containers", len(p.Containers()))
	printNextStep("Fetch them back", appName+" pull -o "+input)
	return nil
}

// pullCommand creates the pull command.
func (c *CLI) pullCommand() *cobra.Command {
	var (
		output string
		name   string
		assets string
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Write every container of the configured store to a bundle",
		Long: `Write every container of the configured store to a bundle.

The store holds containers only. Pass --assets with an existing bundle to
carry its asset library and name over into the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPull(cmd.Context(), output, name, assets)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output bundle file (required)")
	cmd.Flags().StringVar(&name, "name", appName, "project name when no --assets bundle is given")
	cmd.Flags().StringVar(&assets, "assets", "", "bundle to take the asset library from")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (c *CLI) runPull(ctx context.Context, output, name, assets string) error {
	prog := newProgress(c.Logger)
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var p *project.Project
	if assets != "" {
		b, err := pkgio.ImportBundle(assets)
		if err != nil {
			return err
		}
		b.Containers = nil
		if p, err = project.FromBundle(b, c.projectOptions(project.WithStore(s))...); err != nil {
			return err
		}
	} else {
		p = project.New(name, c.projectOptions(project.WithStore(s))...)
	}

	n, err := p.LoadAll(ctx)
	if err != nil {
		return err
	}
	b, _ := p.Bundle(ctx)
	if err := pkgio.ExportBundle(b, output, pkgio.Options{Indent: c.config.Export.Indent}); err != nil {
		return err
	}
	prog.done("Pulled " + p.Name())

	printSuccess("Loaded %d containers", n)
	printFile(output)
	return nil
}
