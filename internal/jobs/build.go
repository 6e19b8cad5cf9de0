// Package jobs runs record builds in batches: normalize each record into
// its ordered field list, then score root posts against the reblog counter.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"hivedex/internal/config"
	"hivedex/internal/metrics"
	"hivedex/internal/model"
	"hivedex/internal/post"
	"hivedex/internal/score"
)

// Record is one unit of batch work.
type Record struct {
	PostID   int64
	Post     *model.Post
	Level    model.WriteLevel
	Promoted *float64
}

// Result carries one record's outputs. Err is per-record: one bad record
// never aborts the batch.
type Result struct {
	PostID int64
	Fields model.FieldList
	Scores score.Scores
	Scored bool
	Err    error
}

// Pipeline builds and scores batches of records.
type Pipeline struct {
	builder *post.Builder
	calc    *score.Calculator
	limiter *rate.Limiter
	workers int
	log     zerolog.Logger
}

// New assembles a pipeline. The worker count bounds concurrent builds and
// thereby concurrent reblog lookups; the limiter additionally caps lookup
// rate against the backing store.
func New(cfg config.PipelineConfig, builder *post.Builder, calc *score.Calculator, log zerolog.Logger) *Pipeline {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	limit := rate.Inf
	burst := 1
	if cfg.LookupRPS > 0 {
		limit = rate.Limit(cfg.LookupRPS)
		burst = cfg.LookupBurst
		if burst <= 0 {
			burst = 1
		}
	}
	if calc != nil && calc.Trace == nil {
		calc.Trace = func(name string, d time.Duration) {
			metrics.ObserveScoreDuration(d)
			log.Debug().Str("op", name).Dur("took", d).Msg("score computed")
		}
	}
	return &Pipeline{
		builder: builder,
		calc:    calc,
		limiter: rate.NewLimiter(limit, burst),
		workers: workers,
		log:     log,
	}
}

// BuildBatch processes recs concurrently and returns one result per input,
// in input order.
func (p *Pipeline) BuildBatch(ctx context.Context, recs []Record) []Result {
	results := make([]Result, len(recs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			results[i] = p.buildOne(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) buildOne(ctx context.Context, rec Record) Result {
	res := Result{PostID: rec.PostID}

	fields, err := p.builder.ToFields(rec.Post, rec.PostID, rec.Level, rec.Promoted)
	if err != nil {
		metrics.BuildErrors.Inc()
		res.Err = err
		return res
	}
	res.Fields = fields

	// only root posts are ranked; the lookup is the lone suspension point
	if p.calc != nil && rec.Post.Depth == 0 {
		if err := p.limiter.Wait(ctx); err != nil {
			res.Err = err
			return res
		}
		sc, err := p.calc.PostScores(ctx, rec.PostID, rec.Post)
		if err != nil {
			metrics.BuildErrors.Inc()
			res.Err = err
			return res
		}
		res.Scores = sc
		res.Scored = true
	}

	metrics.Builds.Inc()
	return res
}

// RunLoop fetches, builds, and sinks a batch every interval until ctx is
// cancelled. The first batch runs immediately.
func (p *Pipeline) RunLoop(ctx context.Context, interval time.Duration,
	fetch func(ctx context.Context) ([]Record, error),
	sink func(ctx context.Context, results []Result) error) error {

	t := time.NewTicker(interval)
	defer t.Stop()
	p.runOnce(ctx, fetch, sink)
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("build loop stop")
			return ctx.Err()
		case <-t.C:
			p.runOnce(ctx, fetch, sink)
		}
	}
}

func (p *Pipeline) runOnce(ctx context.Context,
	fetch func(ctx context.Context) ([]Record, error),
	sink func(ctx context.Context, results []Result) error) {

	recs, err := fetch(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("fetch batch")
		return
	}
	if len(recs) == 0 {
		return
	}
	start := time.Now()
	results := p.BuildBatch(ctx, recs)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if err := sink(ctx, results); err != nil {
		p.log.Error().Err(err).Msg("sink batch")
		return
	}
	p.log.Info().
		Int("records", len(recs)).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("batch built")
}
