package value

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Property is one typed entry of a container's or asset's property bag.
type Property struct {
	Name     string   `json:"name"`
	Type     DataType `json:"type"`
	Value    any      `json:"value"`
	Category string   `json:"category,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// UnmarshalJSON decodes a property and normalizes its value to the canonical
// shape for its type.
func (p *Property) UnmarshalJSON(data []byte) error {
	type raw Property
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	v, err := Normalize(r.Type, r.Value)
	if err != nil {
		return fmt.Errorf("property %s: %w", r.Name, err)
	}
	r.Value = v
	*p = Property(r)
	return nil
}

// Properties is an ordered property bag. Names are unique.
type Properties []Property

// Get returns the property called name.
func (ps Properties) Get(name string) (Property, bool) {
	i := slices.IndexFunc(ps, func(p Property) bool { return p.Name == name })
	if i < 0 {
		return Property{}, false
	}
	return ps[i], true
}

// Set replaces the property with the same name, or appends p.
// The value is normalized first; an incompatible value is rejected.
func (ps *Properties) Set(p Property) error {
	v, err := Normalize(p.Type, p.Value)
	if err != nil {
		return fmt.Errorf("property %s: %w", p.Name, err)
	}
	p.Value = v
	if i := slices.IndexFunc(*ps, func(q Property) bool { return q.Name == p.Name }); i >= 0 {
		(*ps)[i] = p
		return nil
	}
	*ps = append(*ps, p)
	return nil
}

// Remove deletes the property called name. It reports whether one existed.
func (ps *Properties) Remove(name string) bool {
	n := len(*ps)
	*ps = slices.DeleteFunc(*ps, func(p Property) bool { return p.Name == name })
	return len(*ps) != n
}

// Clone returns a deep copy of the bag.
func (ps Properties) Clone() Properties {
	if ps == nil {
		return nil
	}
	out := make(Properties, len(ps))
	for i, p := range ps {
		p.Value = Clone(p.Value)
		p.Options = slices.Clone(p.Options)
		out[i] = p
	}
	return out
}

// AssetRefs returns the asset ids referenced by any property in the bag.
func (ps Properties) AssetRefs() []int {
	var ids []int
	for _, p := range ps {
		ids = append(ids, AssetRefs(p.Type, p.Value)...)
	}
	return ids
}

// GroupRefs returns the group ids referenced by any property in the bag.
func (ps Properties) GroupRefs() []int {
	var ids []int
	for _, p := range ps {
		ids = append(ids, GroupRefs(p.Type, p.Value)...)
	}
	return ids
}
