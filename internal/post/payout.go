package post

import (
	"fmt"
	"strconv"
	"strings"

	"hivedex/internal/model"
	"hivedex/internal/normalize"
)

// Payout aggregates a post's monetary payout components and vote rshares.
type Payout struct {
	Payout  float64
	Rshares int64
	// CSVotes is a compact newline-joined vote ledger:
	// one "voter,rshares,percent,rep" line per vote, in original order.
	CSVotes string
}

// PostPayout sums completed and pending payout amounts and aggregates the
// active vote list. A record with no active votes must carry zero net
// rshares; anything else is upstream corruption and fails the build.
func PostPayout(p *model.Post) (*Payout, error) {
	var payout float64
	for _, amt := range []struct {
		name, value string
	}{
		{"total_payout_value", p.TotalPayoutValue},
		{"curator_payout_value", p.CuratorPayoutValue},
		{"pending_payout_value", p.PendingPayoutValue},
	} {
		v, err := normalize.ParseAmount(amt.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", amt.name, err)
		}
		payout += v
	}

	if len(p.ActiveVotes) == 0 && p.NetRshares != 0 {
		return nil, fmt.Errorf("%w: net_rshares %d with no active votes",
			model.ErrInvalidRecord, int64(p.NetRshares))
	}

	var rshares int64
	lines := make([]string, len(p.ActiveVotes))
	for i, v := range p.ActiveVotes {
		rshares += int64(v.Rshares)
		lines[i] = voteCSVRow(v)
	}

	return &Payout{
		Payout:  payout,
		Rshares: rshares,
		CSVotes: strings.Join(lines, "\n"),
	}, nil
}

// voteCSVRow converts a vote into a minimal CSV line.
func voteCSVRow(v model.Vote) string {
	rep := normalize.RepLog10(int64(v.Reputation))
	return fmt.Sprintf("%s,%d,%d,%s",
		v.Voter, int64(v.Rshares), int64(v.Percent),
		strconv.FormatFloat(rep, 'f', -1, 64))
}
