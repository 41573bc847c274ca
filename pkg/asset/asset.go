// Package asset holds the project's assets and groups.
//
// Assets and groups are managed by the editor's asset browser, which is not
// part of this module. The graph model only needs to look them up by id and
// to follow the references between them, so this package keeps them as plain
// records in an in-memory [Library].
package asset

import (
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/behave/pkg/value"
)

// Asset is a project resource (sprite, sound, data table...) addressed by
// its shallow id. Its properties may reference further assets and groups.
type Asset struct {
	ShallowID  int              `json:"shallowId"`
	Name       string           `json:"name"`
	Kind       string           `json:"kind,omitempty"`
	Properties value.Properties `json:"properties,omitempty"`
}

// Group is an ordered collection of assets.
type Group struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Members []int  `json:"members"`
}

// Library is an in-memory registry of assets and groups.
// It is safe for concurrent use.
type Library struct {
	mu     sync.RWMutex
	assets map[int]*Asset
	groups map[int]*Group
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		assets: make(map[int]*Asset),
		groups: make(map[int]*Group),
	}
}

// PutAsset adds or replaces an asset.
func (l *Library) PutAsset(a Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a.Properties = a.Properties.Clone()
	l.assets[a.ShallowID] = &a
}

// PutGroup adds or replaces a group.
func (l *Library) PutGroup(g Group) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g.Members = slices.Clone(g.Members)
	l.groups[g.ID] = &g
}

// RemoveAsset deletes an asset. Groups keep dangling member ids; they are
// skipped during reference resolution.
func (l *Library) RemoveAsset(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.assets, id)
}

// RemoveGroup deletes a group.
func (l *Library) RemoveGroup(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.groups, id)
}

// Asset returns the asset with the given shallow id.
func (l *Library) Asset(id int) (*Asset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.assets[id]
	return a, ok
}

// Group returns the group with the given id.
func (l *Library) Group(id int) (*Group, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.groups[id]
	return g, ok
}

// Assets returns all assets ordered by shallow id.
func (l *Library) Assets() []*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Asset, 0, len(l.assets))
	for _, id := range slices.Sorted(maps.Keys(l.assets)) {
		out = append(out, l.assets[id])
	}
	return out
}

// Groups returns all groups ordered by id.
func (l *Library) Groups() []*Group {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Group, 0, len(l.groups))
	for _, id := range slices.Sorted(maps.Keys(l.groups)) {
		out = append(out, l.groups[id])
	}
	return out
}

// MaxID returns the largest asset or group id in the library, or 0.
func (l *Library) MaxID() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	hi := 0
	for id := range l.assets {
		hi = max(hi, id)
	}
	for id := range l.groups {
		hi = max(hi, id)
	}
	return hi
}
