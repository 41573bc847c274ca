package cli

import (
	"context"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/behave/pkg/io"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout [bundle.json]",
		Short: "Auto-layout every container of a project",
		Long: `Auto-layout every container of a project.

Nodes are placed in columns by link depth, and each column is ordered to
reduce crossing links. Comments keep their positions. Gaps come from the
layout section of the config file.

The bundle is rewritten in place unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string) error {
	prog := newProgress(c.Logger)
	p, err := c.loadProject(input)
	if err != nil {
		return err
	}
	diags, err := openAll(ctx, p)
	if err != nil {
		return err
	}
	for id, ds := range diags {
		c.Logger.Warn("items dropped on load", "container", id, "count", len(ds))
	}

	opts := c.config.layoutOptions()
	nodes := 0
	for _, ct := range p.Containers() {
		cv := ct.Canvas()
		cv.RecomputeAll()
		if err := cv.AutoLayout(opts); err != nil {
			return err
		}
		nodes += cv.Len()
	}

	b, _ := p.Bundle(ctx)
	path := input
	if output != "" {
		path = output
	}
	if err := pkgio.ExportBundle(b, path, pkgio.Options{Indent: c.config.Export.Indent}); err != nil {
		return err
	}
	prog.done("Laid out " + p.Name())

	printSuccess("Layout complete")
	printFile(path)
	printStats(stat{len(p.Containers()), "containers"}, stat{nodes, "nodes"})
	printNewline()
	printNextStep("Render", appName+" render "+path)
	return nil
}
