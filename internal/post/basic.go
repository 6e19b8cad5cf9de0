// Package post normalizes raw content records into the ordered, typed field
// sequences the storage schema expects, and derives payout and vote metrics.
package post

import (
	"encoding/json"
	"fmt"
	"strings"

	"hivedex/internal/model"
	"hivedex/internal/normalize"
)

const (
	// paidoutYear prefixes cashout_time once a post has been paid out.
	paidoutYear = "1969"
	// burnAccount receives payouts that are effectively declined.
	burnAccount = "null"

	maxTags      = 5
	maxTagLen    = 32
	previewChars = 1024
)

// Basic is the normalized-metadata view of a post: repaired JSON metadata,
// tag set, sanitized body, and payout timing flags.
type Basic struct {
	JSONMetadata     map[string]any
	Thumbnail        string
	Tags             []string
	IsNsfw           bool
	Body             string
	Preview          string
	PayoutAt         string
	IsPaidout        bool
	IsPayoutDeclined bool
	IsFullPower      bool
}

// PostBasic performs basic post normalization: json metadata, tags, and
// payout flags. Malformed metadata degrades to an empty mapping and never
// fails the build.
func PostBasic(p *model.Post) (*Basic, error) {
	md := parseMetadata(p.JSONMetadata)
	thumb := normalizeImages(md)
	tags := normalizeTags(p.Category, md)

	isNsfw := false
	for _, t := range tags {
		if t == "nsfw" {
			isNsfw = true
			break
		}
	}

	body := p.Body
	if strings.Contains(body, "\x00") {
		body = strings.ReplaceAll(body, "\x00", "[NUL]")
	}

	// payout date is last_payout if paid, cashout_time if pending
	isPaidout := strings.HasPrefix(p.CashoutTime, paidoutYear)
	payoutAt := p.CashoutTime
	if isPaidout {
		payoutAt = p.LastPayout
	}

	// payout is declined if max payout is zero, or if 100% is burned
	maxPayout, err := normalize.ParseAmount(p.MaxAcceptedPayout)
	if err != nil {
		return nil, fmt.Errorf("max_accepted_payout: %w", err)
	}
	declined := maxPayout == 0
	if !declined && len(p.Beneficiaries) == 1 {
		b := p.Beneficiaries[0]
		if b.Account == burnAccount && b.Weight == 10000 {
			declined = true
		}
	}

	return &Basic{
		JSONMetadata:     md,
		Thumbnail:        thumb,
		Tags:             tags,
		IsNsfw:           isNsfw,
		Body:             body,
		Preview:          truncateRunes(body, previewChars),
		PayoutAt:         payoutAt,
		IsPaidout:        isPaidout,
		IsPayoutDeclined: declined,
		IsFullPower:      p.PercentSteemDollars == 0,
	}, nil
}

// parseMetadata decodes the opaque json_metadata string. Some records carry
// malformed or double-encoded metadata; anything that is not a JSON object
// degrades to an empty mapping.
func parseMetadata(raw string) map[string]any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return map[string]any{}
	}
	md, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return md
}

// normalizeImages coerces the image entry to a list, sanitizes every URL,
// drops the entry when nothing survives, and returns the first surviving URL.
func normalizeImages(md map[string]any) string {
	img, ok := md["image"]
	if !ok {
		return ""
	}
	var urls []any
	if truthy(img) {
		list, isList := img.([]any)
		if !isList {
			list = []any{img}
		}
		for _, v := range list {
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			if u := normalize.SafeImgURL(s); u != "" {
				urls = append(urls, u)
			}
		}
	}
	if len(urls) == 0 {
		delete(md, "image")
		return ""
	}
	md["image"] = urls
	return urls[0].(string)
}

// normalizeTags builds the tag set: category first, metadata tags after,
// each trimmed of '#' and spaces, lower-cased and capped at 32 characters;
// empties dropped, order-preserving dedup, at most five entries.
func normalizeTags(category string, md map[string]any) []string {
	raw := []any{category}
	if list, ok := md["tags"].([]any); ok {
		raw = append(raw, list...)
	}
	seen := make(map[string]bool)
	var tags []string
	for _, v := range raw {
		tag := strings.ToLower(strings.Trim(stringify(v), "# "))
		tag = truncateRunes(tag, maxTagLen)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
