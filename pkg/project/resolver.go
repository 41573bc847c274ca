package project

import (
	"context"

	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
)

// env returns the capabilities canvases of this project are built with.
func (p *Project) env() canvas.Env {
	return canvas.Env{
		Assets:     p.library,
		Groups:     p.library,
		Converters: p.converters,
		Containers: p,
		Scripts:    scriptService{p},
		Logger:     p.logger,
	}
}

// IsCyclicDependency reports whether candidate reaches originating through
// instance nodes, directly or transitively. Each container is read from its
// live canvas when open and from its saved token otherwise; a container
// with neither is a leaf.
func (p *Project) IsCyclicDependency(candidate, originating string) bool {
	if candidate == originating {
		return true
	}
	seen := map[string]bool{}
	var walk func(id string) bool
	walk = func(id string) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		c, ok := p.containers[id]
		if !ok {
			return false
		}
		for _, next := range c.instanceTargets() {
			if next == originating || walk(next) {
				return true
			}
		}
		return false
	}
	return walk(candidate)
}

// ContainerName implements canvas.ContainerResolver.
func (p *Project) ContainerName(id string) (string, bool) {
	c, ok := p.containers[id]
	if !ok {
		return "", false
	}
	return c.name, true
}

// ContainerInterface implements canvas.ContainerResolver. The interface
// comes from the live canvas when the container is open, otherwise from
// the proxy items of its saved token.
func (p *Project) ContainerInterface(id string) ([]canvas.PortalSpec, bool) {
	c, ok := p.containers[id]
	if !ok {
		return nil, false
	}
	if c.canvas != nil {
		return c.canvas.Interface(), true
	}
	return tokenInterface(c.token), true
}

// CheckInstance implements canvas.ContainerResolver.
func (p *Project) CheckInstance(host, target string) error {
	if _, ok := p.containers[target]; !ok {
		return errors.Wrap(errors.ErrCodeNotFound, ErrUnknownContainer, "container %s", target)
	}
	if p.IsCyclicDependency(target, host) {
		p.logger.Warn("instance refused", "container", host, "item", target, "reason", "cyclic dependency")
		return errors.Wrap(errors.ErrCodeCyclicDependency, ErrCyclicDependency, "container %s already reaches %s", target, host)
	}
	return nil
}

func tokenInterface(tok *token.CanvasToken) []canvas.PortalSpec {
	if tok == nil {
		return nil
	}
	var out []canvas.PortalSpec
	for _, it := range tok.Items {
		if it.Type != token.TypePortal {
			continue
		}
		kind, err := canvas.ParsePortalKind(it.PortalType)
		if err != nil {
			continue
		}
		out = append(out, canvas.PortalSpec{
			Name:     it.Name,
			Kind:     kind,
			DataType: it.DataType,
			Value:    it.Value,
		})
	}
	return out
}

// scriptService provisions script records with project shallow ids and
// mirrors them into the store, when there is one.
type scriptService struct{ p *Project }

func (s scriptService) ProvisionScript(ctx context.Context) (int, error) {
	id := s.p.NextShallowID()
	if s.p.store == nil {
		return id, nil
	}
	if err := s.p.store.ProvisionScript(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s scriptService) DeleteScript(ctx context.Context, shallowID int) error {
	if s.p.store == nil {
		return nil
	}
	return s.p.store.DeleteScript(ctx, shallowID)
}
