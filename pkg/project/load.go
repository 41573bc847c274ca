package project

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
)

// loadConcurrency bounds parallel store reads in LoadAll.
const loadConcurrency = 8

// LoadAll adds every container record in the store to the project.
// Records are fetched in parallel; the project itself is only touched
// once all fetches have succeeded.
func (p *Project) LoadAll(ctx context.Context) (int, error) {
	if p.store == nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "project has no store")
	}
	ids, err := p.store.ListContainers(ctx)
	if err != nil {
		return 0, err
	}

	recs := make([]*token.BundleContainer, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := p.store.LoadContainer(gctx, id)
			if err != nil {
				return err
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for _, rec := range recs {
		if _, err := p.AddContainer(*rec); err != nil {
			return 0, errors.Wrap(errors.GetCode(err), err, "load container %s", rec.ID)
		}
	}
	p.logger.Debug("containers loaded", "count", len(recs))
	return len(recs), nil
}

// SaveAll saves every container, open or not. It stops at the first
// failure.
func (p *Project) SaveAll(ctx context.Context) error {
	for _, c := range p.Containers() {
		if _, err := p.SaveContainer(ctx, c.id); err != nil {
			return err
		}
	}
	return nil
}
