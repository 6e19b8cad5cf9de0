package post

import (
	"fmt"
	"strconv"

	"hivedex/internal/model"
	"hivedex/internal/normalize"
)

// pendingPayoutFloor is the smallest pending payout that counts as
// meaningful when deciding whether to hide a low-reputation author's post.
const pendingPayoutFloor = 0.02

// Stats holds per-post vote statistics and visibility flags.
type Stats struct {
	Hide       bool
	Gray       bool
	AuthorRep  float64
	FlagWeight int
	TotalVotes int
	UpVotes    int
}

// PostStats derives vote counts, downvote stake weight, and the
// reputation-based visibility flags from a record's active vote list.
func PostStats(p *model.Post) (*Stats, error) {
	var negRshares int64
	var totalVotes, upVotes int
	for _, v := range p.ActiveVotes {
		rshares := int64(v.Rshares)
		if rshares == 0 {
			continue
		}
		totalVotes++
		if rshares > 0 {
			upVotes++
		} else {
			negRshares += rshares
		}
	}

	// Halve negative rshares and count decimal digits (sign included) minus
	// eleven, a rough log10 of downvoting stake. Each unit is about an order
	// of magnitude more flagged stake.
	flagWeight := len(strconv.FormatInt(negRshares/2, 10)) - 11
	if flagWeight < 0 {
		flagWeight = 0
	}

	authorRep := normalize.RepLog10(int64(p.AuthorReputation))
	pending, err := normalize.ParseAmount(p.PendingPayoutValue)
	if err != nil {
		return nil, fmt.Errorf("pending_payout_value: %w", err)
	}
	hasPendingPayout := pending >= pendingPayoutFloor

	return &Stats{
		Hide:       authorRep < 0 && !hasPendingPayout,
		Gray:       authorRep < 1,
		AuthorRep:  authorRep,
		FlagWeight: flagWeight,
		TotalVotes: totalVotes,
		UpVotes:    upVotes,
	}, nil
}
