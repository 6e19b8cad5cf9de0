package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidRecord marks fatal precondition failures on an input record.
// It signals upstream data corruption; the build for that record is aborted
// while the rest of a batch proceeds.
var ErrInvalidRecord = errors.New("invalid input record")

// WriteLevel selects which field groups a build emits.
type WriteLevel string

const (
	LevelInsert WriteLevel = "insert"
	LevelPayout WriteLevel = "payout"
	LevelUpdate WriteLevel = "update"
	// LevelVote is the implicit vote-only level: payout/vote/stat fields only.
	LevelVote WriteLevel = ""
)

// Int64 decodes integers that upstream emits either as JSON numbers or as
// numeric strings (rshares, net_rshares, reputation).
type Int64 int64

func (i *Int64) UnmarshalJSON(b []byte) error {
	if len(b) > 1 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("int64 string %q: %w", s, err)
		}
		*i = Int64(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*i = Int64(v)
	return nil
}

func (i Int64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(i), 10)), nil
}

// Vote is one entry of a post's active vote list.
type Vote struct {
	Voter      string `json:"voter"`
	Rshares    Int64  `json:"rshares"`
	Percent    Int64  `json:"percent"`
	Reputation Int64  `json:"reputation"`
}

// Beneficiary routes a share of a post's payout to another account.
type Beneficiary struct {
	Account string `json:"account"`
	Weight  Int64  `json:"weight"`
}

// Post is a raw content record as published by the upstream content API,
// plus the community moderation fields injected before a build.
type Post struct {
	ID       Int64  `json:"id"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Category string `json:"category"`
	Depth    int    `json:"depth"`

	// CommunityID must be loaded before a build; nil is a fatal error.
	CommunityID *int64 `json:"community_id"`
	// Hide and Gray carry community moderation decisions.
	Hide bool `json:"hide"`
	Gray bool `json:"gray"`

	Created      string `json:"created"`
	LastUpdate   string `json:"last_update"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	JSONMetadata string `json:"json_metadata"`

	CashoutTime         string        `json:"cashout_time"`
	LastPayout          string        `json:"last_payout"`
	MaxAcceptedPayout   string        `json:"max_accepted_payout"`
	PercentSteemDollars Int64         `json:"percent_steem_dollars"`
	Beneficiaries       []Beneficiary `json:"beneficiaries"`

	ActiveVotes      []Vote `json:"active_votes"`
	Children         int    `json:"children"`
	NetRshares       Int64  `json:"net_rshares"`
	AuthorReputation Int64  `json:"author_reputation"`

	TotalPayoutValue   string `json:"total_payout_value"`
	CuratorPayoutValue string `json:"curator_payout_value"`
	PendingPayoutValue string `json:"pending_payout_value"`

	// Legacy fields kept verbatim in the raw_json snapshot.
	URL                  string `json:"url"`
	RootComment          Int64  `json:"root_comment"`
	RootAuthor           string `json:"root_author"`
	RootPermlink         string `json:"root_permlink"`
	RootTitle            string `json:"root_title"`
	ParentAuthor         string `json:"parent_author"`
	ParentPermlink       string `json:"parent_permlink"`
	AllowReplies         bool   `json:"allow_replies"`
	AllowVotes           bool   `json:"allow_votes"`
	AllowCurationRewards bool   `json:"allow_curation_rewards"`
}

// Field is one (name, value) pair of a normalized record.
type Field struct {
	Name  string
	Value any
}

// FieldList is an ordered field sequence mirroring the destination schema.
// Order is stable for a given write level; names are unique within one list.
// A list is built fresh per call and never mutated after being returned.
type FieldList []Field

// Names returns the field names in emission order.
func (fl FieldList) Names() []string {
	out := make([]string, len(fl))
	for i, f := range fl {
		out[i] = f.Name
	}
	return out
}

// Get returns the value stored under name, if present.
func (fl FieldList) Get(name string) (any, bool) {
	for _, f := range fl {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}
