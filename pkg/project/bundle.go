package project

import (
	"context"

	"github.com/matzehuels/behave/pkg/asset"
	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/token"
)

// FromBundle creates a project holding the bundle's containers, assets and
// groups. A library passed with WithLibrary is replaced by the bundle's.
func FromBundle(b *token.Bundle, opts ...Option) (*Project, error) {
	lib := asset.NewLibrary()
	for _, a := range b.Assets {
		lib.PutAsset(a)
	}
	for _, g := range b.Groups {
		lib.PutGroup(g)
	}
	p := New(b.Name, append(opts, WithLibrary(lib))...)
	p.observeShallowID(b.NextShallowID - 1)
	for _, rec := range b.Containers {
		if _, err := p.AddContainer(rec); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Bundle returns the whole project as a bundle. Open containers contribute
// a fresh build of their canvas; the diagnostics of those builds are
// returned alongside.
func (p *Project) Bundle(ctx context.Context) (*token.Bundle, []canvas.Diagnostic) {
	b := &token.Bundle{
		Name:          p.name,
		NextShallowID: p.lastShallowID + 1,
		Containers:    []token.BundleContainer{},
	}
	var diags []canvas.Diagnostic
	for _, c := range p.Containers() {
		rec := c.record()
		if c.canvas != nil {
			tok, d := p.build(ctx, c)
			rec.Token = tok
			diags = append(diags, d...)
		}
		b.Containers = append(b.Containers, *rec)
	}
	for _, a := range p.library.Assets() {
		b.Assets = append(b.Assets, *a)
	}
	for _, g := range p.library.Groups() {
		b.Groups = append(b.Groups, *g)
	}
	return b, diags
}
