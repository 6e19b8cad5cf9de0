package util

import (
	"regexp"
	"strings"
)

// mentionRe matches an @-handle (3-16 chars, alnum at both ends, alnum,
// hyphen or dot inside) that is not glued to a preceding word, tag, or URL
// character. The "not followed by a lowercase letter" rule cannot be
// expressed in RE2, so it is applied manually below.
var mentionRe = regexp.MustCompile(`(?:^|[^a-zA-Z0-9_!#$%&*@/])@([a-zA-Z0-9][a-zA-Z0-9.-]{1,14}[a-zA-Z0-9])`)

// Mentions returns the set of lower-cased account names @-mentioned in body.
func Mentions(body string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range mentionRe.FindAllStringSubmatchIndex(body, -1) {
		start, end := m[2], m[3]
		// Backtrack like the full lookahead regex would: shrink the handle
		// until it ends on an alphanumeric and the next character is not a
		// lowercase letter.
		for end-start >= 3 {
			if isAlnum(body[end-1]) && (end == len(body) || !isLower(body[end])) {
				out[strings.ToLower(body[start:end])] = struct{}{}
				break
			}
			end--
		}
	}
	return out
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
