// Package score computes the time-decayed trending and hot ranking scores
// for root posts from net vote weight and social amplification signals.
package score

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"hivedex/internal/model"
	"hivedex/internal/normalize"
)

// rsharesScale normalizes raw rshares before the logarithmic compression.
const rsharesScale = 1e7

// ReblogCounter reports how many times a post has been reblogged.
type ReblogCounter interface {
	CountReblogs(ctx context.Context, postID int64) (int, error)
}

// Config holds the ranking tunables.
type Config struct {
	VoteWeight        float64 `yaml:"voteWeight"`        // weight of the vote-magnitude component
	InteractionWeight float64 `yaml:"interactionWeight"` // weight of the interaction component
	ReblogWeight      float64 `yaml:"reblogWeight"`      // reblogs inside the interaction component
	CommentWeight     float64 `yaml:"commentWeight"`     // replies inside the interaction component
	ReblogDivisor     float64 `yaml:"reblogDivisor"`     // reblog normalization divisor
	CommentDivisor    float64 `yaml:"commentDivisor"`    // reply normalization divisor
	TrendingTimescale float64 `yaml:"trendingTimescale"` // seconds; 240k is about 66.7 hours
	HotFactor         float64 `yaml:"hotFactor"`         // hot decays this much faster than trending
}

// DefaultConfig returns the documented default tunables.
func DefaultConfig() Config {
	return Config{
		VoteWeight:        0.2,
		InteractionWeight: 0.7,
		ReblogWeight:      1.0,
		CommentWeight:     0.7,
		ReblogDivisor:     1.0,
		CommentDivisor:    2.0,
		TrendingTimescale: 240000,
		HotFactor:         24,
	}
}

// Scores is a post's ranking pair.
type Scores struct {
	Trending float64
	Hot      float64
}

// Calculator derives trending/hot scores. It is the only part of the engine
// with an I/O dependency: the injected reblog counter.
type Calculator struct {
	cfg     Config
	reblogs ReblogCounter

	// Trace, when set, receives the duration of every score computation.
	Trace func(name string, d time.Duration)
}

// NewCalculator builds a calculator around the given tunables and counter.
func NewCalculator(cfg Config, reblogs ReblogCounter) *Calculator {
	return &Calculator{cfg: cfg, reblogs: reblogs}
}

// PostScores computes the trending and hot scores for a record. Non-root
// posts always score zero. A failed reblog lookup fails only this record's
// scoring and carries the lookup error in its chain.
func (c *Calculator) PostScores(ctx context.Context, postID int64, p *model.Post) (Scores, error) {
	if c.Trace != nil {
		start := time.Now()
		defer func() { c.Trace("post_scores", time.Since(start)) }()
	}

	// ranking applies to top-level posts only
	if p.Depth > 0 {
		return Scores{}, nil
	}

	created, err := normalize.ParseTime(p.Created)
	if err != nil {
		return Scores{}, fmt.Errorf("%w: %v", model.ErrInvalidRecord, err)
	}
	ts := normalize.UTCTimestamp(created)

	votesScore := logMagnitude(float64(p.NetRshares) / rsharesScale)

	reblogs, err := c.reblogs.CountReblogs(ctx, postID)
	if err != nil {
		return Scores{}, fmt.Errorf("reblog count for post %d: %w", postID, err)
	}

	interactionScore := c.cfg.ReblogWeight*math.Log10(math.Max(float64(reblogs)/c.cfg.ReblogDivisor, 1)) +
		c.cfg.CommentWeight*math.Log10(math.Max(float64(p.Children)/c.cfg.CommentDivisor, 1))

	baseScore := votesScore*c.cfg.VoteWeight + interactionScore*c.cfg.InteractionWeight

	return Scores{
		Trending: baseScore + ts/c.cfg.TrendingTimescale,
		Hot:      baseScore + ts/(c.cfg.TrendingTimescale/c.cfg.HotFactor),
	}, nil
}

// Score is the plain single-component trending/hot score: logarithmically
// compressed vote weight plus linear time decay.
func Score(rshares int64, createdTimestamp, timescale float64) float64 {
	return logMagnitude(float64(rshares)/rsharesScale) + createdTimestamp/timescale
}

// logMagnitude compresses a signed magnitude: log10 of the absolute value
// floored at one, carrying the input's sign. Very large and very small vote
// totals differ by score, not by raw magnitude.
func logMagnitude(v float64) float64 {
	order := math.Log10(math.Max(math.Abs(v), 1))
	if v < 0 {
		return -order
	}
	return order
}

// Strategy is an alternative per-post vote-signal function. The weighted
// median strategy below is kept as an independent signal; it is not part of
// the trending/hot formula.
type Strategy func(votes []model.Vote) int64

// WeightedMedianRshares takes the median vote rshares, scales it down
// sharply for posts with ten or fewer votes, then weights it linearly by
// vote count up to a thirty-vote ceiling.
func WeightedMedianRshares(votes []model.Vote) int64 {
	if len(votes) == 0 {
		return 0
	}
	rshares := make([]int64, len(votes))
	for i, v := range votes {
		rshares[i] = int64(v.Rshares)
	}
	sort.Slice(rshares, func(i, j int) bool { return rshares[i] < rshares[j] })

	median := float64(rshares[len(rshares)/2])
	if len(rshares) <= 10 {
		median *= 0.00001
	}
	return int64(median * math.Min(float64(len(rshares))/30, 1))
}
