package notify

import (
	"net/url"
	"strings"
	"unicode"
)

// ZaloLink builds chat deep links carrying the composed order message.
// Purely local: it never fails, and an unconfigured target just yields an
// empty link.
type ZaloLink struct {
	target string
}

// NewZaloLink picks the deep-link target: the phone number when set,
// otherwise the Official Account id. Spaces, dashes and parentheses are
// stripped so "090-123 4567" and "0901234567" produce the same link.
func NewZaloLink(phone, oaID string) *ZaloLink {
	target := phone
	if target == "" {
		target = oaID
	}
	target = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, target)
	return &ZaloLink{target: target}
}

// Build returns the zalo.me chat link with the message percent-encoded, or
// "" when no target is configured.
func (z *ZaloLink) Build(message string) string {
	if z == nil || z.target == "" {
		return ""
	}
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://zalo.me/" + z.target + "?text=" + encoded
}
