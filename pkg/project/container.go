package project

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
	"github.com/matzehuels/behave/pkg/value"
)

// Sentinel errors for container operations.
var (
	// ErrUnknownContainer is returned when a container id is not part of
	// the project.
	ErrUnknownContainer = errors.New(errors.ErrCodeNotFound, "unknown container")

	// ErrCyclicDependency is returned when an instance would make a
	// container contain itself, directly or through other containers. It is
	// the error canvases report for refused instance nodes.
	ErrCyclicDependency = canvas.ErrCyclicInstance

	// ErrSaving is returned when a container is saved while a save of the
	// same container is still in flight.
	ErrSaving = errors.New(errors.ErrCodeContainerBusy, "container is being saved")

	// ErrContainerInUse is returned when removing a container that other
	// containers still instance.
	ErrContainerInUse = errors.New(errors.ErrCodeInvalidInput, "container is instanced by other containers")
)

// Container is the persisted identity of one behaviour graph.
type Container struct {
	id         string
	shallowID  int
	name       string
	properties value.Properties
	token      *token.CanvasToken
	canvas     *canvas.Canvas
	saving     bool
}

func (c *Container) ID() string     { return c.id }
func (c *Container) ShallowID() int { return c.shallowID }
func (c *Container) Name() string   { return c.name }

// Properties returns a copy of the container's property bag.
func (c *Container) Properties() value.Properties { return c.properties.Clone() }

// Token returns a copy of the last saved token, or nil if the container
// was never saved.
func (c *Container) Token() *token.CanvasToken { return c.token.Clone() }

// Canvas returns the live canvas, or nil when the container is closed.
func (c *Container) Canvas() *canvas.Canvas { return c.canvas }

// Open reports whether the container has a live canvas.
func (c *Container) Open() bool { return c.canvas != nil }

// Saving reports whether a save of the container is in flight.
func (c *Container) Saving() bool { return c.saving }

// record returns the persisted form of the container.
func (c *Container) record() *token.BundleContainer {
	return &token.BundleContainer{
		ID:         c.id,
		ShallowID:  c.shallowID,
		Name:       c.name,
		Properties: c.properties.Clone(),
		Token:      c.token.Clone(),
	}
}

// instanceTargets returns the containers c instances, read from the live
// canvas when open since it may be ahead of the saved token.
func (c *Container) instanceTargets() []string {
	if c.canvas != nil {
		return c.canvas.InstanceTargets()
	}
	return c.token.InstanceTargets()
}

// =============================================================================
// Container management
// =============================================================================

// CreateContainer adds an empty container with a fresh id and shallow id.
func (p *Project) CreateContainer(name string) (*Container, error) {
	if err := errors.ValidateContainerName(name); err != nil {
		return nil, err
	}
	c := &Container{
		id:        uuid.NewString(),
		shallowID: p.NextShallowID(),
		name:      name,
	}
	p.containers[c.id] = c
	p.logger.Debug("container created", "container", c.id, "name", name)
	return c, nil
}

// AddContainer adds a container from its persisted record, replacing any
// container with the same id. Later shallow ids are allocated above the
// record's.
func (p *Project) AddContainer(rec token.BundleContainer) (*Container, error) {
	if rec.ID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "container record without id")
	}
	if err := errors.ValidateContainerName(rec.Name); err != nil {
		return nil, err
	}
	if old, ok := p.containers[rec.ID]; ok && old.canvas != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "container %s is open", rec.ID)
	}
	if rec.ShallowID == 0 {
		rec.ShallowID = p.NextShallowID()
	}
	p.observeShallowID(rec.ShallowID)
	if rec.Token != nil {
		for _, it := range rec.Token.Items {
			if it.Type == token.TypeScript {
				p.observeShallowID(it.ShallowID)
			}
		}
	}
	c := &Container{
		id:         rec.ID,
		shallowID:  rec.ShallowID,
		name:       rec.Name,
		properties: rec.Properties.Clone(),
		token:      rec.Token.Clone(),
	}
	p.containers[c.id] = c
	return c, nil
}

// RenameContainer changes a container's name. Instances of the container
// keep referencing it by id and display the new name.
func (p *Project) RenameContainer(id, name string) error {
	c, err := p.container(id)
	if err != nil {
		return err
	}
	if err := errors.ValidateContainerName(name); err != nil {
		return err
	}
	c.name = name
	if c.token != nil {
		c.token.Name = name
	}
	return nil
}

// SetProperty sets one of the container's properties.
func (p *Project) SetProperty(id string, prop value.Property) error {
	c, err := p.container(id)
	if err != nil {
		return err
	}
	if err := c.properties.Set(prop); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "container %s", id)
	}
	return nil
}

// RemoveContainer deletes a container and its stored record. It is refused
// while other containers instance it or while the container is saving.
func (p *Project) RemoveContainer(ctx context.Context, id string) error {
	c, err := p.container(id)
	if err != nil {
		return err
	}
	if c.saving {
		return errors.Wrap(errors.ErrCodeContainerBusy, ErrSaving, "container %s", id)
	}
	for _, other := range p.Containers() {
		if other.id != id && slices.Contains(other.instanceTargets(), id) {
			return errors.Wrap(errors.ErrCodeInvalidInput, ErrContainerInUse, "container %s is instanced by %s", id, other.name)
		}
	}
	if p.store != nil {
		if err := p.store.DeleteContainer(ctx, id); err != nil {
			return err
		}
	}
	delete(p.containers, id)
	p.logger.Debug("container removed", "container", id)
	return nil
}

func (p *Project) container(id string) (*Container, error) {
	c, ok := p.containers[id]
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeNotFound, ErrUnknownContainer, "container %s", id)
	}
	return c, nil
}

// =============================================================================
// Lifecycle
// =============================================================================

// OpenContainer attaches a live canvas to the container, rebuilt from its
// saved token, and notifies the opened hook. Opening an open container
// returns its canvas with an empty result.
func (p *Project) OpenContainer(ctx context.Context, id string) (*canvas.Canvas, canvas.OpenResult, error) {
	var res canvas.OpenResult
	c, err := p.container(id)
	if err != nil {
		return nil, res, err
	}
	if c.canvas != nil {
		return c.canvas, res, nil
	}
	cv := canvas.New(c.id, p.env())
	tok := c.token
	if tok == nil {
		tok = &token.CanvasToken{ContainerID: c.id, Name: c.name, Items: []token.Item{}}
	}
	res, err = cv.Open(ctx, tok, canvas.OpenOptions{})
	if err != nil {
		return nil, res, err
	}
	cv.RecomputeAll()
	c.canvas = cv
	p.hooks.OnOpened(ctx, c.id, tok)
	p.logger.Debug("container opened", "container", c.id, "nodes", cv.Len(), "diagnostics", len(res.Diagnostics))
	return cv, res, nil
}

// CloseContainer serializes the live canvas into the container's token and
// detaches it. Nothing is persisted; call SaveContainer first to keep the
// edits in the store.
func (p *Project) CloseContainer(ctx context.Context, id string) ([]canvas.Diagnostic, error) {
	c, err := p.container(id)
	if err != nil {
		return nil, err
	}
	if c.canvas == nil {
		return nil, nil
	}
	if c.saving {
		return nil, errors.Wrap(errors.ErrCodeContainerBusy, ErrSaving, "container %s", id)
	}
	tok, diags := p.build(ctx, c)
	c.token = tok
	c.canvas = nil
	p.logger.Debug("container closed", "container", c.id)
	return diags, nil
}

// SaveContainer builds the container's token, notifies the saving hook and
// writes the record to the store. While the save runs the canvas rejects
// mutations, and a second save of the same container fails with
// CONTAINER_BUSY.
func (p *Project) SaveContainer(ctx context.Context, id string) ([]canvas.Diagnostic, error) {
	c, err := p.container(id)
	if err != nil {
		return nil, err
	}
	if c.saving {
		return nil, errors.Wrap(errors.ErrCodeContainerBusy, ErrSaving, "container %s", id)
	}
	c.saving = true
	if c.canvas != nil {
		c.canvas.SetBusy(true)
	}
	defer func() {
		c.saving = false
		if c.canvas != nil {
			c.canvas.SetBusy(false)
		}
	}()

	var diags []canvas.Diagnostic
	tok := c.token
	if c.canvas != nil {
		tok, diags = p.build(ctx, c)
	}
	if tok == nil {
		tok = &token.CanvasToken{ContainerID: c.id, Name: c.name, Items: []token.Item{}}
	}
	p.hooks.OnSaving(ctx, c.id, tok)
	c.token = tok

	if p.store != nil {
		if err := p.store.SaveContainer(ctx, c.record()); err != nil {
			return diags, err
		}
	}
	p.logger.Debug("container saved", "container", c.id, "items", len(tok.Items))
	return diags, nil
}

// BuildToken returns the container's most recent token: a fresh build of
// the live canvas when open, otherwise a copy of the saved token. A
// container that was never saved or opened returns nil.
func (p *Project) BuildToken(ctx context.Context, id string, subset ...canvas.NodeID) (*token.CanvasToken, []canvas.Diagnostic, error) {
	c, err := p.container(id)
	if err != nil {
		return nil, nil, err
	}
	if c.canvas == nil {
		return c.token.Clone(), nil, nil
	}
	tok, diags := p.build(ctx, c, subset...)
	return tok, diags, nil
}

func (p *Project) build(ctx context.Context, c *Container, subset ...canvas.NodeID) (*token.CanvasToken, []canvas.Diagnostic) {
	tok, diags := c.canvas.Build(ctx, subset...)
	tok.Name = c.name
	tok.Properties = c.properties.Clone()
	if tok.Properties == nil {
		tok.Properties = value.Properties{}
	}
	return tok, diags
}

// RefreshInstances rebuilds the portals of every instance of target on
// every open canvas. It returns the links that no longer fit, per hosting
// container.
func (p *Project) RefreshInstances(target string) (map[string][]canvas.LinkID, error) {
	if _, err := p.container(target); err != nil {
		return nil, err
	}
	removed := map[string][]canvas.LinkID{}
	for _, c := range p.Containers() {
		if c.canvas == nil || c.id == target {
			continue
		}
		for _, n := range c.canvas.Nodes() {
			in, ok := n.Variant().(canvas.Instance)
			if !ok || in.ContainerID != target {
				continue
			}
			ids, err := c.canvas.RefreshInstance(n.ID())
			if err != nil {
				return removed, err
			}
			if len(ids) > 0 {
				removed[c.id] = append(removed[c.id], ids...)
				p.logger.Warn("instance links dropped", "container", c.id, "instance", target, "links", len(ids))
			}
		}
	}
	return removed, nil
}
