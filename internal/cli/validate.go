package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/export"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [bundle.json]",
		Short: "Check that every container of a project loads cleanly",
		Long: `Check that every container of a project loads cleanly.

Every container is opened on a fresh canvas. Items that would be dropped on
load (unknown types, duplicate portal proxies, cyclic or missing instances,
links whose endpoints do not resolve) are reported per container. The
project is then compiled once to catch export failures.

With --strict, any report makes the command fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any item would be dropped")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, input string, strict bool) error {
	prog := newProgress(c.Logger)
	p, err := c.loadProject(input)
	if err != nil {
		return err
	}

	diags, err := openAll(ctx, p)
	if err != nil {
		return err
	}
	total, nodes, links := 0, 0, 0
	for _, ct := range p.Containers() {
		nodes += ct.Canvas().Len()
		links += len(ct.Canvas().Links())
		ds := diags[ct.ID()]
		if len(ds) == 0 {
			continue
		}
		total += len(ds)
		printWarning("%s: %d item(s) dropped", ct.Name(), len(ds))
		for _, d := range ds {
			printDetail("%s", d)
		}
	}

	_, buildDiags, err := export.New(export.WithLogger(c.Logger)).Export(ctx, p)
	if err != nil {
		printError("Export failed")
		return err
	}
	for _, d := range buildDiags {
		total++
		printWarning("%s", d)
	}
	prog.done("Validated " + p.Name())

	if total > 0 {
		if strict {
			return errors.New(errors.ErrCodeInvalidInput, "%d problem(s) in %s", total, input)
		}
		printInfo("%d problem(s) found", total)
	} else {
		printSuccess("Project is valid")
	}
	printStats(stat{len(p.Containers()), "containers"}, stat{nodes, "nodes"}, stat{links, "links"})
	return nil
}
