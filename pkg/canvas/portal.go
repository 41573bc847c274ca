package canvas

import (
	"fmt"
	"slices"

	"github.com/matzehuels/behave/pkg/value"
)

// PortalKind is the role of a portal. Outputs and products emit; inputs and
// parameters receive.
type PortalKind string

const (
	Parameter PortalKind = "parameter"
	Product   PortalKind = "product"
	Input     PortalKind = "input"
	Output    PortalKind = "output"
)

// ParsePortalKind returns the kind named s.
func ParsePortalKind(s string) (PortalKind, error) {
	switch k := PortalKind(s); k {
	case Parameter, Product, Input, Output:
		return k, nil
	default:
		return "", fmt.Errorf("unknown portal kind %q", s)
	}
}

// Emits reports whether links start at portals of this kind.
func (k PortalKind) Emits() bool { return k == Output || k == Product }

// Mirror returns the kind seen from the other side of a container boundary.
// A container-level Input is an Output inside the canvas, a Parameter is a
// Product, and so on.
func (k PortalKind) Mirror() PortalKind {
	switch k {
	case Input:
		return Output
	case Output:
		return Input
	case Parameter:
		return Product
	case Product:
		return Parameter
	default:
		return k
	}
}

// left reports whether the portal is drawn on the left (receiving) column.
func (k PortalKind) left() bool { return k == Input || k == Parameter }

// PortalSpec describes a portal to create or the new state of an edited one.
type PortalSpec struct {
	Name     string
	Kind     PortalKind
	DataType value.DataType
	Value    any
	Custom   bool
}

// Portal is a typed, named connection point owned by exactly one node.
type Portal struct {
	name     string
	kind     PortalKind
	dataType value.DataType
	value    any
	custom   bool
	links    []LinkID
}

// NewPortal creates a detached portal. The value is normalized for the data
// type; a nil value yields the type's default. Name uniqueness is the owning
// node's concern.
func NewPortal(spec PortalSpec) (*Portal, error) {
	if _, err := ParsePortalKind(string(spec.Kind)); err != nil {
		return nil, err
	}
	if !spec.DataType.Valid() {
		return nil, fmt.Errorf("portal %s: unknown data type %q", spec.Name, spec.DataType)
	}
	v, err := value.Normalize(spec.DataType, spec.Value)
	if err != nil {
		return nil, fmt.Errorf("portal %s: %w", spec.Name, err)
	}
	return &Portal{
		name:     spec.Name,
		kind:     spec.Kind,
		dataType: spec.DataType,
		value:    v,
		custom:   spec.Custom,
	}, nil
}

func (p *Portal) Name() string             { return p.name }
func (p *Portal) Kind() PortalKind         { return p.kind }
func (p *Portal) DataType() value.DataType { return p.dataType }
func (p *Portal) Value() any               { return value.Clone(p.value) }
func (p *Portal) Custom() bool             { return p.custom }

// Links returns the links attached to the portal.
func (p *Portal) Links() []LinkID { return slices.Clone(p.links) }

// Connected reports whether at least one link is attached. The editor draws
// connected portals filled.
func (p *Portal) Connected() bool { return len(p.links) > 0 }

// Spec returns the portal's current state as a spec.
func (p *Portal) Spec() PortalSpec {
	return PortalSpec{Name: p.name, Kind: p.kind, DataType: p.dataType, Value: p.Value(), Custom: p.custom}
}

func (p *Portal) addLink(id LinkID) {
	if !slices.Contains(p.links, id) {
		p.links = append(p.links, id)
	}
}

func (p *Portal) removeLink(id LinkID) {
	p.links = slices.DeleteFunc(p.links, func(l LinkID) bool { return l == id })
}
