// Package export compiles a project into the form the runtime consumes.
//
// Export walks every container that has a token (a fresh build when the
// container is open, its saved token otherwise) and produces one
// [token.ExportContainer] per container:
//
//   - property and portal values are projected to wire values, see
//     [value.Wire]
//   - comments and shortcuts are dropped, and links drawn through a shortcut
//     point at the shortcut's target
//   - instance nodes carry the shallow id of the container they call
//   - the container's asset and group sets hold every id reachable from its
//     asset nodes and reference-typed values, following asset properties and
//     group members to a fixed point
//
// The export also lists every asset of the project with flattened
// properties and every group with its ordered members. Lifecycle hooks see
// the finished export before it is returned and may annotate its plugin
// map; a hook error aborts the export.
//
// # Usage
//
//	exp, diags, err := export.New(export.WithFileBaseURL(cdn)).Export(ctx, p)
package export

import (
	"cmp"
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/project"
	"github.com/matzehuels/behave/pkg/token"
	"github.com/matzehuels/behave/pkg/value"
)

// Exporter compiles projects. The zero value is not usable; use [New].
type Exporter struct {
	wire   value.WireOptions
	logger *log.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFileBaseURL sets the base URL prepended to relative file paths.
func WithFileBaseURL(base string) Option {
	return func(e *Exporter) { e.wire.FileBaseURL = base }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export compiles p. Diagnostics from building open containers are
// returned alongside the export; they never abort it.
func (e *Exporter) Export(ctx context.Context, p *project.Project) (*token.Export, []canvas.Diagnostic, error) {
	exp := &token.Export{
		Name:       p.Name(),
		Containers: []token.ExportContainer{},
		Assets:     []token.ExportAsset{},
		Groups:     []token.ExportGroup{},
		Plugins:    map[string]any{},
	}
	var diags []canvas.Diagnostic
	for _, c := range p.Containers() {
		tok, d, err := p.BuildToken(ctx, c.ID())
		if err != nil {
			return nil, diags, err
		}
		diags = append(diags, d...)
		if tok == nil {
			e.logger.Debug("container skipped", "container", c.ID(), "reason", "no token")
			continue
		}
		exp.Containers = append(exp.Containers, e.container(p, c, tok))
	}

	lib := p.Library()
	for _, a := range lib.Assets() {
		exp.Assets = append(exp.Assets, token.ExportAsset{
			ShallowID:  a.ShallowID,
			Name:       a.Name,
			Kind:       a.Kind,
			Properties: e.properties(a.Properties),
		})
	}
	for _, g := range lib.Groups() {
		members := append([]int{}, g.Members...)
		exp.Groups = append(exp.Groups, token.ExportGroup{ID: g.ID, Name: g.Name, Members: members})
	}

	if err := p.Hooks().OnExporting(ctx, exp); err != nil {
		return nil, diags, errors.Wrap(cmp.Or(errors.GetCode(err), errors.ErrCodeInternal), err, "export %s", p.Name())
	}
	e.logger.Debug("project exported", "project", p.Name(), "containers", len(exp.Containers), "assets", len(exp.Assets))
	return exp, diags, nil
}

// container compiles one container's token.
func (e *Exporter) container(p *project.Project, c *project.Container, tok *token.CanvasToken) token.ExportContainer {
	out := token.ExportContainer{
		ID:         c.ID(),
		ShallowID:  c.ShallowID(),
		Name:       c.Name(),
		Behaviours: []token.ExportBehaviour{},
		Links:      []token.ExportLink{},
	}

	// Container properties count as references of the container.
	props := c.Properties()
	out.Properties = e.properties(props)
	seedAssets, seedGroups := props.AssetRefs(), props.GroupRefs()

	// Shortcut item ids resolve to their targets; comment ids resolve to
	// nothing.
	alias := map[string]string{}
	exported := map[string]bool{}
	for _, it := range tok.Items {
		switch it.Type {
		case token.TypeLink, token.TypeComment:
			continue
		case token.TypeShortcut:
			alias[it.ID] = it.BehaviourID
			continue
		}
		b, assets, groups := e.behaviour(p, c.ID(), it)
		out.Behaviours = append(out.Behaviours, b)
		exported[it.ID] = true
		seedAssets = append(seedAssets, assets...)
		seedGroups = append(seedGroups, groups...)
	}

	endpoint := func(direct, target string) (string, bool) {
		id := direct
		if target != "" {
			id = target
		}
		if t, ok := alias[id]; ok {
			id = t
		}
		return id, exported[id]
	}
	for _, it := range tok.Items {
		if !it.IsLink() {
			continue
		}
		start, okS := endpoint(it.StartBehaviour, it.TargetStartBehaviour)
		end, okE := endpoint(it.EndBehaviour, it.TargetEndBehaviour)
		if !okS || !okE {
			e.logger.Warn("link dropped", "container", c.ID(), "item", it.ID, "reason", "endpoint not exported")
			continue
		}
		l := token.ExportLink{
			StartBehaviour: start,
			StartPortal:    it.StartPortal,
			EndBehaviour:   end,
			EndPortal:      it.EndPortal,
		}
		if it.FrameDelay != nil {
			l.FrameDelay = *it.FrameDelay
		}
		out.Links = append(out.Links, l)
	}

	lib := p.Library()
	out.AssetIDs, out.GroupIDs = canvas.ResolveReferences(seedAssets, seedGroups, lib, lib)
	if out.AssetIDs == nil {
		out.AssetIDs = []int{}
	}
	if out.GroupIDs == nil {
		out.GroupIDs = []int{}
	}
	return out
}
