// Package project holds the containers of a behaviour project and manages
// their lifecycle.
//
// A [Container] is the persisted identity of one graph: id, shallow id,
// name, properties and the last saved token. While a container is open for
// editing it also owns a live [canvas.Canvas]; closing it serializes the
// canvas back into the token and detaches it.
//
// The [Project] wires every canvas to its capabilities: the asset library
// for asset and group lookups, the converter registry, the other containers
// (for instance interfaces and the cyclic-dependency check) and the store
// for script records.
//
// # Lifecycle hooks
//
// The project calls its [observability.LifecycleHooks] after a container is
// opened and before it is saved. Exports call them before returning.
//
// # Saving
//
// A container being saved is marked busy and its canvas rejects mutations
// until the save returns, so an in-flight save never races an edit of the
// same graph.
package project

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/behave/pkg/asset"
	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/store"
	"github.com/matzehuels/behave/pkg/value"
)

// Project is a set of containers plus the asset library they share. It is
// not safe for concurrent use.
type Project struct {
	name       string
	containers map[string]*Container
	library    *asset.Library
	converters canvas.ConverterRegistry
	hooks      observability.LifecycleHooks
	store      store.Store
	logger     *log.Logger

	lastShallowID int
}

// Option configures a Project.
type Option func(*Project)

// WithHooks sets the lifecycle hooks.
func WithHooks(h observability.LifecycleHooks) Option {
	return func(p *Project) { p.hooks = observability.OrNoop(h) }
}

// WithStore sets the store used for saving containers and provisioning
// scripts. Without a store, saves only update the in-memory token.
func WithStore(s store.Store) Option {
	return func(p *Project) { p.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Project) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithConverters replaces the default converter registry.
func WithConverters(c canvas.ConverterRegistry) Option {
	return func(p *Project) { p.converters = c }
}

// WithLibrary sets the asset library.
func WithLibrary(l *asset.Library) Option {
	return func(p *Project) {
		if l != nil {
			p.library = l
		}
	}
}

// New creates an empty project.
func New(name string, opts ...Option) *Project {
	p := &Project{
		name:       name,
		containers: make(map[string]*Container),
		library:    asset.NewLibrary(),
		converters: value.DefaultConverters(),
		hooks:      observability.NoopLifecycleHooks{},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if m := p.library.MaxID(); m > p.lastShallowID {
		p.lastShallowID = m
	}
	return p
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// Library returns the asset library.
func (p *Project) Library() *asset.Library { return p.library }

// Hooks returns the lifecycle hooks.
func (p *Project) Hooks() observability.LifecycleHooks { return p.hooks }

// Logger returns the project's logger.
func (p *Project) Logger() *log.Logger { return p.logger }

// NextShallowID allocates a shallow id. Ids increase monotonically and are
// shared by containers, assets and scripts, so no two of them ever collide.
func (p *Project) NextShallowID() int {
	p.lastShallowID++
	return p.lastShallowID
}

// observeShallowID makes sure later allocations stay above id.
func (p *Project) observeShallowID(id int) {
	p.lastShallowID = max(p.lastShallowID, id)
}

// CreateAsset adds an asset with a fresh shallow id.
func (p *Project) CreateAsset(name, kind string, props value.Properties) *asset.Asset {
	id := p.NextShallowID()
	p.library.PutAsset(asset.Asset{ShallowID: id, Name: name, Kind: kind, Properties: props})
	a, _ := p.library.Asset(id)
	return a
}

// CreateGroup adds a group with a fresh id.
func (p *Project) CreateGroup(name string, members ...int) *asset.Group {
	id := p.NextShallowID()
	p.library.PutGroup(asset.Group{ID: id, Name: name, Members: members})
	g, _ := p.library.Group(id)
	return g
}

// Container returns the container with the given id.
func (p *Project) Container(id string) (*Container, bool) {
	c, ok := p.containers[id]
	return c, ok
}

// ContainerByName returns the first container, by shallow id, with the
// given name.
func (p *Project) ContainerByName(name string) (*Container, bool) {
	for _, c := range p.Containers() {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Containers returns every container ordered by shallow id.
func (p *Project) Containers() []*Container {
	out := make([]*Container, 0, len(p.containers))
	for _, c := range p.containers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Container) int {
		return cmp.Or(cmp.Compare(a.shallowID, b.shallowID), cmp.Compare(a.id, b.id))
	})
	return out
}
