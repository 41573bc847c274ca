package export

import (
	"github.com/matzehuels/behave/pkg/project"
	"github.com/matzehuels/behave/pkg/token"
	"github.com/matzehuels/behave/pkg/value"
)

// behaviour compiles one node item. It also returns the asset and group
// ids the item references directly.
func (e *Exporter) behaviour(p *project.Project, containerID string, it token.Item) (token.ExportBehaviour, []int, []int) {
	b := token.ExportBehaviour{
		ID:   it.ID,
		Type: it.Type,
		Name: it.Name,
	}
	if it.Alias != "" {
		b.Name = it.Alias
	}
	var assets, groups []int
	refs := func(dt value.DataType, v any) {
		assets = append(assets, value.AssetRefs(dt, v)...)
		groups = append(groups, value.GroupRefs(dt, v)...)
	}

	switch it.Type {
	case token.TypeBehaviour:
		b.Template = it.Template
	case token.TypeAsset:
		b.AssetID = it.AssetID
		if it.AssetID != 0 {
			assets = append(assets, it.AssetID)
		}
	case token.TypeScript:
		b.ScriptID = it.ShallowID
	case token.TypeInstance:
		if c, ok := p.Container(it.ContainerID); ok {
			b.Container = c.ShallowID()
		} else {
			e.logger.Warn("instance target missing", "container", containerID, "item", it.ID, "reason", it.ContainerID)
		}
	case token.TypePortal:
		v := e.canonical(containerID, it.ID, it.DataType, it.Value)
		b.PortalType = it.PortalType
		b.DataType = it.DataType
		b.Value = value.Wire(it.DataType, v, e.wire)
		refs(it.DataType, v)
	}

	for _, pt := range it.Portals {
		v := e.canonical(containerID, it.ID, pt.DataType, pt.Value)
		b.Portals = append(b.Portals, token.ExportPortal{
			Name:     pt.Name,
			Type:     pt.Type,
			DataType: pt.DataType,
			Value:    value.Wire(pt.DataType, v, e.wire),
		})
		refs(pt.DataType, v)
	}
	return b, assets, groups
}

// canonical normalizes a token value. Saved tokens hold decoded JSON, so
// values are normalized again before projection; a value that does not fit
// its type exports as the type's default.
func (e *Exporter) canonical(containerID, item string, dt value.DataType, raw any) any {
	v, err := value.Normalize(dt, raw)
	if err != nil {
		e.logger.Warn("value reset", "container", containerID, "item", item, "reason", err)
		return value.Default(dt)
	}
	return v
}

// properties flattens a property bag to name -> wire value.
func (e *Exporter) properties(ps value.Properties) map[string]any {
	out := make(map[string]any, len(ps))
	for _, prop := range ps {
		out[prop.Name] = value.Wire(prop.Type, prop.Value, e.wire)
	}
	return out
}
