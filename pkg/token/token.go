// Package token defines the persisted and exported forms of behaviour graphs.
//
// A [CanvasToken] is what the editor saves for one container: the container's
// name and properties, plugin data, and a flat list of [Item]s. An item is
// either a node (one of the behaviour type tags) or a link (type "Link").
// Links reference their endpoint nodes by item id and their portals by name:
//
//	{
//	  "containerId": "8d7c...",
//	  "name": "Root",
//	  "properties": [],
//	  "plugins": {},
//	  "items": [
//	    {"id": "n1", "type": "Behaviour", "left": 40, "top": 60,
//	     "portals": [{"name": "Exit", "type": "output", "dataType": "object", "customPortal": false}]},
//	    {"id": "n2", "type": "Behaviour", "left": 240, "top": 60,
//	     "portals": [{"name": "Enter", "type": "input", "dataType": "object", "customPortal": false}]},
//	    {"id": "l1", "type": "Link", "startPortal": "Exit", "endPortal": "Enter",
//	     "startBehaviour": "n1", "endBehaviour": "n2", "frameDelay": 2}
//	  ]
//	}
//
// An [Export] is the compiled, project-wide form handed to the runtime, and a
// [Bundle] is the single-file project format the command line tools read.
package token

import (
	"maps"
	"slices"

	"github.com/matzehuels/behave/pkg/value"
)

// Item type tags.
const (
	TypeBehaviour = "Behaviour"
	TypeAsset     = "BehaviourAsset"
	TypeScript    = "BehaviourScript"
	TypeInstance  = "BehaviourInstance"
	TypePortal    = "BehaviourPortal"
	TypeComment   = "BehaviourComment"
	TypeShortcut  = "BehaviourShortcut"
	TypeLink      = "Link"
)

// CanvasToken is the serialized form of one container's canvas.
type CanvasToken struct {
	ContainerID string           `json:"containerId"`
	Name        string           `json:"name"`
	Properties  value.Properties `json:"properties"`
	Items       []Item           `json:"items"`
	Plugins     map[string]any   `json:"plugins"`
}

// Item is a node or a link of a serialized canvas. Which fields are set
// depends on Type.
type Item struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// Node placement.
	Left     float64 `json:"left,omitempty"`
	Top      float64 `json:"top,omitempty"`
	ZIndex   int     `json:"zIndex,omitempty"`
	Position string  `json:"position,omitempty"`

	Name     string `json:"name,omitempty"`
	Alias    string `json:"alias,omitempty"`
	Template string `json:"template,omitempty"`
	Text     string `json:"text,omitempty"`

	// Variant references.
	AssetID     int    `json:"assetID,omitempty"`
	ShallowID   int    `json:"shallowId,omitempty"`
	ContainerID string `json:"containerId,omitempty"`
	BehaviourID string `json:"behaviourID,omitempty"`

	// Portal proxy.
	PortalType string         `json:"portalType,omitempty"`
	DataType   value.DataType `json:"dataType,omitempty"`
	Value      any            `json:"value,omitempty"`

	Portals []Portal `json:"portals,omitempty"`

	// Link endpoints.
	StartPortal          string `json:"startPortal,omitempty"`
	EndPortal            string `json:"endPortal,omitempty"`
	StartBehaviour       string `json:"startBehaviour,omitempty"`
	EndBehaviour         string `json:"endBehaviour,omitempty"`
	TargetStartBehaviour string `json:"targetStartBehaviour,omitempty"`
	TargetEndBehaviour   string `json:"targetEndBehaviour,omitempty"`
	FrameDelay           *int   `json:"frameDelay,omitempty"`
}

// Portal is one serialized portal of a node item.
type Portal struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	DataType value.DataType `json:"dataType"`
	Value    any            `json:"value,omitempty"`
	Custom   bool           `json:"customPortal"`
}

// IsLink reports whether the item is a link.
func (it *Item) IsLink() bool { return it.Type == TypeLink }

// InstanceTargets returns the container ids referenced by BehaviourInstance
// items, in item order and without duplicates.
func (t *CanvasToken) InstanceTargets() []string {
	if t == nil {
		return nil
	}
	var ids []string
	for _, it := range t.Items {
		if it.Type == TypeInstance && it.ContainerID != "" && !slices.Contains(ids, it.ContainerID) {
			ids = append(ids, it.ContainerID)
		}
	}
	return ids
}

// Clone returns a deep copy of the token.
func (t *CanvasToken) Clone() *CanvasToken {
	if t == nil {
		return nil
	}
	out := &CanvasToken{
		ContainerID: t.ContainerID,
		Name:        t.Name,
		Properties:  t.Properties.Clone(),
		Plugins:     maps.Clone(t.Plugins),
	}
	if t.Items != nil {
		out.Items = make([]Item, len(t.Items))
		for i, it := range t.Items {
			out.Items[i] = it.clone()
		}
	}
	return out
}

func (it Item) clone() Item {
	it.Value = value.Clone(it.Value)
	if it.FrameDelay != nil {
		d := *it.FrameDelay
		it.FrameDelay = &d
	}
	if it.Portals != nil {
		ps := make([]Portal, len(it.Portals))
		for i, p := range it.Portals {
			p.Value = value.Clone(p.Value)
			ps[i] = p
		}
		it.Portals = ps
	}
	return it
}
