package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotelmerge/internal/adapters/observability"
	"hotelmerge/internal/amenity"
	"hotelmerge/internal/domain"
	"hotelmerge/internal/mapping"
	"hotelmerge/internal/merge"
	"hotelmerge/internal/tree"
)

// Reconciler runs fetch → map → classify → merge → filter over a fixed,
// ordered set of supplier adapters.
type Reconciler struct {
	mapper     *mapping.Mapper
	classifier *amenity.Classifier
	engine     *merge.Engine
	workers    int
}

func NewReconciler(m *mapping.Mapper, c *amenity.Classifier, e *merge.Engine, workers int) *Reconciler {
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{mapper: m, classifier: c, engine: e, workers: workers}
}

// Result is one run's output plus what was dropped on the way.
type Result struct {
	RunID  string
	Hotels []domain.Hotel
	// Seq is each merged hotel's first-seen position, taken before
	// filtering, so a filtered run persists the same order as a full one.
	Seq           map[string]int
	Rejected      []error
	FailedSources []string
}

// batch is one adapter's contribution; each goroutine owns exactly one.
type batch struct {
	docs     []tree.Node
	rejected []error
	err      error
}

// Run fetches every adapter concurrently but merges their records in the
// order the adapters were given, so output never depends on which fetch
// finished first. A failing adapter is skipped; only cancellation of ctx
// is returned as an error.
func (r *Reconciler) Run(ctx context.Context, adapters []domain.SourceAdapter, f domain.Filter) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", res.RunID).Logger()

	batches := make([]batch, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, a := range adapters {
		i, a := i, a
		g.Go(func() error {
			batches[i] = r.collect(gctx, a)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return res, err
	}

	var docs []tree.Node
	for i, b := range batches {
		name := adapters[i].Name()
		if b.err != nil {
			observability.ObserveFetchError(name)
			logger.Warn().Err(b.err).Str("source", name).Msg("supplier skipped")
			res.FailedSources = append(res.FailedSources, name)
			continue
		}
		res.Rejected = append(res.Rejected, b.rejected...)
		docs = append(docs, b.docs...)
	}

	merged := r.engine.MergeAll(docs)
	observability.ObserveMerged(len(merged))

	res.Hotels = make([]domain.Hotel, 0, len(merged))
	res.Seq = make(map[string]int, len(merged))
	for i, doc := range merged {
		h, err := buildHotel(doc)
		if err != nil {
			logger.Warn().Err(err).Msg("merged record dropped")
			continue
		}
		res.Seq[h.ID] = i
		if f.Match(h) {
			res.Hotels = append(res.Hotels, h)
		}
	}

	logger.Info().
		Int("sources", len(adapters)).
		Int("failed_sources", len(res.FailedSources)).
		Int("records", len(docs)).
		Int("rejected", len(res.Rejected)).
		Int("hotels", len(res.Hotels)).
		Msg("reconciliation finished")
	return res, nil
}

func (r *Reconciler) collect(ctx context.Context, a domain.SourceAdapter) batch {
	raws, err := a.FetchRaw(ctx)
	if err != nil {
		return batch{err: &domain.FetchError{Source: a.Name(), Err: err}}
	}
	docs, rejected := r.mapper.MapAll(a.Name(), raws, a.Rules())
	for _, doc := range docs {
		if err := r.classifier.Reclassify(doc); err != nil {
			observability.ObservePathConflict("classify")
			log.Warn().Err(err).Str("source", a.Name()).Msg("amenities left unclassified")
		}
	}
	return batch{docs: docs, rejected: rejected}
}
