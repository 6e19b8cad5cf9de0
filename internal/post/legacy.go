package post

import "hivedex/internal/model"

// PostLegacy selects the legacy fields worth keeping verbatim in the
// raw_json snapshot. Some UIs still read these; nothing here is indexed or
// used for further computation.
func PostLegacy(p *model.Post) map[string]any {
	return map[string]any{
		"id":                     p.ID,
		"url":                    p.URL,
		"root_comment":           p.RootComment,
		"root_author":            p.RootAuthor,
		"root_permlink":          p.RootPermlink,
		"root_title":             p.RootTitle,
		"parent_author":          p.ParentAuthor,
		"parent_permlink":        p.ParentPermlink,
		"max_accepted_payout":    p.MaxAcceptedPayout,
		"percent_steem_dollars":  p.PercentSteemDollars,
		"curator_payout_value":   p.CuratorPayoutValue,
		"allow_replies":          p.AllowReplies,
		"allow_votes":            p.AllowVotes,
		"allow_curation_rewards": p.AllowCurationRewards,
		"beneficiaries":          p.Beneficiaries,
	}
}
