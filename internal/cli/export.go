package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/behave/pkg/export"
	pkgio "github.com/matzehuels/behave/pkg/io"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output      string
		fileBaseURL string
		compact     bool
	)

	cmd := &cobra.Command{
		Use:   "export [bundle.json]",
		Short: "Compile a project into the runtime export format",
		Long: `Compile a project into the runtime export format.

Property and portal values are projected to their wire form, comments and
shortcuts are dropped, and every container lists the assets and groups it
reaches. File paths are resolved against --file-base-url, or the export
section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("file-base-url") {
				fileBaseURL = c.config.Export.FileBaseURL
			}
			return c.runExport(cmd.Context(), args[0], output, fileBaseURL, compact)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.export.json)")
	cmd.Flags().StringVar(&fileBaseURL, "file-base-url", "", "base URL for relative file paths")
	cmd.Flags().BoolVar(&compact, "compact", false, "write compact JSON")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input, output, fileBaseURL string, compact bool) error {
	prog := newProgress(c.Logger)
	p, err := c.loadProject(input)
	if err != nil {
		return err
	}

	exp, diags, err := export.New(export.WithFileBaseURL(fileBaseURL), export.WithLogger(c.Logger)).Export(ctx, p)
	if err != nil {
		return err
	}
	for _, d := range diags {
		printWarning("%s", d)
	}

	opts := pkgio.Options{Indent: c.config.Export.Indent}
	if compact {
		opts.Indent = ""
	}
	path := outputPath(output, input, ".export.json")
	if err := pkgio.ExportFile(exp, path, opts); err != nil {
		return err
	}
	prog.done("Exported " + p.Name())

	printSuccess("Export complete")
	printFile(path)
	printStats(stat{len(exp.Containers), "containers"}, stat{len(exp.Assets), "assets"}, stat{len(exp.Groups), "groups"})
	return nil
}
