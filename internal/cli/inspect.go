package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/project"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [bundle.json]",
		Short: "Summarize the containers of a project",
		Long: `Summarize the containers of a project.

For every container, inspect lists its node and link counts by kind, the
containers it instances, its exposed portals and the assets and groups it
references.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0])
		},
	}
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string) error {
	p, err := c.loadProject(input)
	if err != nil {
		return err
	}
	if _, err := openAll(ctx, p); err != nil {
		return err
	}

	printTitle(p.Name())
	printKeyValue("containers", fmt.Sprint(len(p.Containers())))
	printKeyValue("assets", fmt.Sprint(len(p.Library().Assets())))
	printKeyValue("groups", fmt.Sprint(len(p.Library().Groups())))

	for _, ct := range p.Containers() {
		cv := ct.Canvas()
		printNewline()
		printTitle(fmt.Sprintf("%s #%d", ct.Name(), ct.ShallowID()))
		printKeyValue("nodes", nodeSummary(cv))
		printKeyValue("links", fmt.Sprint(len(cv.Links())))
		if iface := cv.Interface(); len(iface) > 0 {
			printKeyValue("interface", interfaceSummary(iface))
		}
		if targets := cv.InstanceTargets(); len(targets) > 0 {
			printKeyValue("instances", strings.Join(containerNames(p, targets), ", "))
		}
		refs := cv.References()
		if len(refs.Assets) > 0 || len(refs.Groups) > 0 {
			printKeyValue("references", fmt.Sprintf("assets %v, groups %v", refs.Assets, refs.Groups))
		}
	}
	return nil
}

// nodeSummary counts nodes per type tag, in first-seen order.
func nodeSummary(cv *canvas.Canvas) string {
	var order []string
	counts := map[string]int{}
	for _, n := range cv.Nodes() {
		t := n.Variant().Type()
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	parts := []string{fmt.Sprint(cv.Len())}
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s×%d", t, counts[t]))
	}
	return strings.Join(parts, "  ")
}

func interfaceSummary(specs []canvas.PortalSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = fmt.Sprintf("%s (%s %s)", s.Name, s.Kind, s.DataType)
	}
	return strings.Join(parts, ", ")
}

func containerNames(p *project.Project, ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id
		if name, ok := p.ContainerName(id); ok {
			names[i] = name
		}
	}
	return names
}
