// Package normalize holds the leaf utilities the record engine is built on:
// amount-string parsing, block timestamp parsing, image URL sanitizing, and
// reputation log scaling. All functions are pure.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// blockTimeLayout is the upstream block timestamp format, always UTC.
const blockTimeLayout = "2006-01-02T15:04:05"

// ParseAmount parses a legacy amount string such as "12.000 SBD" into its
// numeric value. The asset symbol is not interpreted.
func ParseAmount(amount string) (float64, error) {
	parts := strings.Fields(amount)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed amount %q", amount)
	}
	v, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", amount, err)
	}
	return v, nil
}

// ParseTime parses an upstream block timestamp.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(blockTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("block time %q: %w", s, err)
	}
	return t, nil
}

// UTCTimestamp returns t as epoch seconds.
func UTCTimestamp(t time.Time) float64 {
	return float64(t.Unix())
}

// SafeImgURL strips an image URL down to the bare minimum: it must be a
// plausible http(s) URL under 1024 characters, and is returned trimmed.
// Anything else yields the empty string.
func SafeImgURL(url string) string {
	if len(url) < 1024 && strings.HasPrefix(url, "http") {
		return strings.TrimSpace(url)
	}
	return ""
}

// RepLog10 rescales a raw reputation integer onto the display scale:
// log10-based, nine points per order of magnitude, centered at 25,
// sign-preserving, rounded to two decimals. Zero maps to 25.
func RepLog10(raw int64) float64 {
	if raw == 0 {
		return 25
	}
	sign := 1.0
	s := strconv.FormatInt(raw, 10)
	if s[0] == '-' {
		sign = -1
		s = s[1:]
	}
	lead := s
	if len(lead) > 4 {
		lead = lead[:4]
	}
	leading, _ := strconv.Atoi(lead)
	lg := math.Log10(float64(leading)) + 0.00000001
	out := float64(len(s)-1) + (lg - math.Trunc(lg))
	// at -9, one unit of earnings is roughly magnitude 1
	out = math.Max(out-9, 0) * sign
	out = out*9 + 25
	return math.Round(out*100) / 100
}
