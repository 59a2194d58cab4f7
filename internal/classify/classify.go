// Package classify decides which detected strings must never be repainted.
//
// Identifiers, addresses and numeric tokens carry structural meaning; erasing
// and redrawing them risks corrupting pixels that were already correct. The
// decision is made from the source text alone: a translator echoing a short
// string unchanged is not a reason to protect it.
package classify

import (
	"regexp"
	"strings"
)

var (
	uuidPattern  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ipv4Pattern  = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
	// Covers plain numbers, percentages, dates, times and phone-style tokens.
	numericPattern = regexp.MustCompile(`^[\d\s.,\-+%:]+$`)
)

// NonTranslatable reports whether the trimmed text matches, in full, a
// structural pattern (GUID, email, IPv4 address, or digits with numeric
// punctuation). Matching regions are left untouched: no background fill,
// no redraw.
func NonTranslatable(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	return uuidPattern.MatchString(s) ||
		emailPattern.MatchString(s) ||
		ipv4Pattern.MatchString(s) ||
		numericPattern.MatchString(s)
}
