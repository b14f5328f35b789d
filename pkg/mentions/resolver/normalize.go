package resolver

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeName canonicalizes an extracted name before registry lookup.
// Scraped rosters mix full-width and half-width characters and pad names
// with ideographic spaces (山田　太郎), so lookups compare NFKC-folded,
// space-stripped forms.
func NormalizeName(name string) string {
	folded := width.Fold.String(norm.NFKC.String(name))
	folded = strings.ReplaceAll(folded, "　", " ")
	fields := strings.Fields(folded)
	return strings.Join(fields, "")
}

// NormalizeParty canonicalizes a party name for comparison. Unlike names,
// internal spacing is preserved; only width and compatibility forms fold.
func NormalizeParty(party string) string {
	return strings.TrimSpace(width.Fold.String(norm.NFKC.String(party)))
}
