package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/behave/pkg/cache"
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/project"
	"github.com/matzehuels/behave/pkg/render"
)

// Output formats supported by render.
const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output    string
		container string
		opts      render.Options
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "render [bundle.json]",
		Short: "Draw a container as an SVG or DOT diagram",
		Long: `Draw a container as an SVG or DOT diagram.

The format follows the output extension: .dot writes Graphviz source, any
other extension writes SVG. Without --container the first container of the
project is drawn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], container, output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<container>.svg)")
	cmd.Flags().StringVarP(&container, "container", "c", "", "container name")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show portal data types")
	cmd.Flags().BoolVar(&opts.Pinned, "pinned", false, "keep canvas positions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always run graphviz, ignoring cached SVGs")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, name, output string, opts render.Options, noCache bool) error {
	p, err := c.loadProject(input)
	if err != nil {
		return err
	}
	ct, err := pickContainer(p, name)
	if err != nil {
		return err
	}
	cv, res, err := p.OpenContainer(ctx, ct.ID())
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		printWarning("%s", d)
	}

	if output == "" {
		output = outputPath("", input, "."+strings.ToLower(ct.Name())+"."+formatSVG)
	}
	dot := render.ToDOT(cv, opts)
	data := []byte(dot)
	if formatOf(output) == formatSVG {
		if data, err = c.renderSVG(ctx, dot, noCache); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render %s", ct.Name())
		}
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", output)
	}

	printSuccess("Rendered %s", ct.Name())
	printFile(output)
	printStats(stat{cv.Len(), "nodes"}, stat{len(cv.Links()), "links"})
	return nil
}

// renderSVG runs graphviz on dot, reusing an earlier result for the same
// source from the cache in the data directory.
func (c *CLI) renderSVG(ctx context.Context, dot string, noCache bool) ([]byte, error) {
	var rc cache.Cache = cache.NullCache{}
	if !noCache {
		if dir, err := dataDir(); err == nil {
			if fc, err := cache.NewFileCache(filepath.Join(dir, "cache")); err == nil {
				rc = fc
			} else {
				c.Logger.Warn("render cache unavailable", "error", err)
			}
		}
	}
	defer rc.Close()

	key := cache.Key("svg", dot)
	if data, hit, err := rc.Get(ctx, key); err == nil && hit {
		c.Logger.Debug("render cache hit", "key", key[:12])
		return data, nil
	}
	data, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	if err := rc.Set(ctx, key, data, 0); err != nil {
		c.Logger.Warn("render cache write failed", "error", err)
	}
	return data, nil
}

// pickContainer returns the container called name, or the first container
// when name is empty.
func pickContainer(p *project.Project, name string) (*project.Container, error) {
	if name == "" {
		cs := p.Containers()
		if len(cs) == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "project %s has no containers", p.Name())
		}
		return cs[0], nil
	}
	ct, ok := p.ContainerByName(name)
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeNotFound, project.ErrUnknownContainer, "container %q", name)
	}
	return ct, nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), "."+formatDOT) {
		return formatDOT
	}
	return formatSVG
}
