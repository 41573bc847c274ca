package token

import (
	"github.com/matzehuels/behave/pkg/asset"
	"github.com/matzehuels/behave/pkg/value"
)

// Bundle is a whole project in one document: every container with its last
// saved token, plus the asset library.
type Bundle struct {
	Name          string            `json:"name"`
	NextShallowID int               `json:"nextShallowId,omitempty"`
	Containers    []BundleContainer `json:"containers"`
	Assets        []asset.Asset     `json:"assets,omitempty"`
	Groups        []asset.Group     `json:"groups,omitempty"`
}

// BundleContainer is the persisted identity of one container.
type BundleContainer struct {
	ID         string           `json:"id"`
	ShallowID  int              `json:"shallowId"`
	Name       string           `json:"name"`
	Properties value.Properties `json:"properties,omitempty"`
	Token      *CanvasToken     `json:"token,omitempty"`
}
