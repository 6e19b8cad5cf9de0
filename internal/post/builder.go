package post

import (
	"encoding/json"
	"fmt"

	"hivedex/internal/model"
)

// maxChildren clamps the stored children count to the schema's smallint.
const maxChildren = 32767

// Builder composes normalized metadata, payout aggregates, and vote stats
// into the ordered field sequence for one write level.
type Builder struct {
	// CommunityOverride replaces the computed hide/gray flags with the
	// community's moderation decisions on community-owned posts.
	CommunityOverride bool
}

// NewBuilder returns a builder with community moderation precedence on.
func NewBuilder() *Builder {
	return &Builder{CommunityOverride: true}
}

// ToFields builds the internal representation of a raw post record for the
// given write level. promoted, when non-nil, is a pending promotion amount
// to flush. The returned list is ordered exactly as the destination schema
// and is never mutated afterwards.
func (b *Builder) ToFields(p *model.Post, postID int64, level model.WriteLevel, promoted *float64) (model.FieldList, error) {
	if p.CommunityID == nil {
		return nil, fmt.Errorf("%w: community_id not loaded", model.ErrInvalidRecord)
	}

	values := model.FieldList{{Name: "post_id", Value: postID}}

	// immutable; written only once (edge case: undeleted posts reinsert)
	if level == model.LevelInsert {
		values = append(values,
			model.Field{Name: "author", Value: p.Author},
			model.Field{Name: "permlink", Value: p.Permlink},
			model.Field{Name: "category", Value: p.Category},
			model.Field{Name: "depth", Value: p.Depth})
	}

	// full content block, skipped for plain vote updates
	if level == model.LevelInsert || level == model.LevelPayout || level == model.LevelUpdate {
		basic, err := PostBasic(p)
		if err != nil {
			return nil, err
		}
		mdJSON, err := json.Marshal(basic.JSONMetadata)
		if err != nil {
			return nil, fmt.Errorf("json_metadata: %w", err)
		}
		rawJSON, err := json.Marshal(PostLegacy(p))
		if err != nil {
			return nil, fmt.Errorf("raw_json: %w", err)
		}
		values = append(values,
			model.Field{Name: "community_id", Value: *p.CommunityID},
			model.Field{Name: "created_at", Value: p.Created},
			model.Field{Name: "updated_at", Value: p.LastUpdate},
			model.Field{Name: "title", Value: p.Title},
			model.Field{Name: "payout_at", Value: basic.PayoutAt},
			model.Field{Name: "preview", Value: basic.Preview},
			model.Field{Name: "body", Value: basic.Body},
			model.Field{Name: "img_url", Value: basic.Thumbnail},
			model.Field{Name: "is_nsfw", Value: basic.IsNsfw},
			model.Field{Name: "is_declined", Value: basic.IsPayoutDeclined},
			model.Field{Name: "is_full_power", Value: basic.IsFullPower},
			model.Field{Name: "is_paidout", Value: basic.IsPaidout},
			model.Field{Name: "json", Value: string(mdJSON)},
			model.Field{Name: "raw_json", Value: string(rawJSON)})
	}

	// pending promotion amount, if any, flushed at every level
	if promoted != nil {
		values = append(values, model.Field{Name: "promoted", Value: *promoted})
	}

	payout, err := PostPayout(p)
	if err != nil {
		return nil, err
	}
	stats, err := PostStats(p)
	if err != nil {
		return nil, err
	}

	// community moderation takes precedence over reputation heuristics
	if b.CommunityOverride && *p.CommunityID != 0 {
		stats.Hide = p.Hide
		stats.Gray = p.Gray
	}

	children := p.Children
	if children > maxChildren {
		children = maxChildren
	}

	values = append(values,
		model.Field{Name: "payout", Value: payout.Payout},
		model.Field{Name: "rshares", Value: payout.Rshares},
		model.Field{Name: "votes", Value: payout.CSVotes},
		model.Field{Name: "flag_weight", Value: stats.FlagWeight},
		model.Field{Name: "total_votes", Value: stats.TotalVotes},
		model.Field{Name: "up_votes", Value: stats.UpVotes},
		model.Field{Name: "is_hidden", Value: stats.Hide},
		model.Field{Name: "is_grayed", Value: stats.Gray},
		model.Field{Name: "author_rep", Value: stats.AuthorRep},
		model.Field{Name: "children", Value: children})

	return values, nil
}
