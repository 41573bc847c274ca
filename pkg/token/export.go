package token

import "github.com/matzehuels/behave/pkg/value"

// Export is the compiled project handed to the runtime.
type Export struct {
	Name       string            `json:"name"`
	Containers []ExportContainer `json:"containers"`
	Assets     []ExportAsset     `json:"assets"`
	Groups     []ExportGroup     `json:"groups"`
	Plugins    map[string]any    `json:"plugins,omitempty"`
}

// ExportContainer is one compiled behaviour graph.
type ExportContainer struct {
	ID         string            `json:"id"`
	ShallowID  int               `json:"shallowId"`
	Name       string            `json:"name"`
	Properties map[string]any    `json:"properties"`
	Behaviours []ExportBehaviour `json:"behaviours"`
	Links      []ExportLink      `json:"links"`

	// AssetIDs and GroupIDs are every asset and group reachable from the
	// container, sorted ascending.
	AssetIDs []int `json:"assets"`
	GroupIDs []int `json:"groups"`
}

// ExportBehaviour is a compiled node. Comments and shortcuts never appear.
type ExportBehaviour struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Template  string `json:"template,omitempty"`
	AssetID   int    `json:"assetId,omitempty"`
	ScriptID  int    `json:"scriptId,omitempty"`
	Container int    `json:"container,omitempty"`

	PortalType string         `json:"portalType,omitempty"`
	DataType   value.DataType `json:"dataType,omitempty"`
	Value      any            `json:"value,omitempty"`

	Portals []ExportPortal `json:"portals,omitempty"`
}

// ExportPortal is a compiled portal with its wire value.
type ExportPortal struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	DataType value.DataType `json:"dataType"`
	Value    any            `json:"value,omitempty"`
}

// ExportLink is a compiled link between two exported behaviours.
// Links drawn through shortcuts point at the shortcut's target.
type ExportLink struct {
	StartBehaviour string `json:"startBehaviour"`
	StartPortal    string `json:"startPortal"`
	EndBehaviour   string `json:"endBehaviour"`
	EndPortal      string `json:"endPortal"`
	FrameDelay     int    `json:"frameDelay,omitempty"`
}

// ExportAsset is an asset with its properties flattened to wire values.
type ExportAsset struct {
	ShallowID  int            `json:"shallowId"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind,omitempty"`
	Properties map[string]any `json:"properties"`
}

// ExportGroup is a group and its ordered member ids.
type ExportGroup struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Members []int  `json:"members"`
}
