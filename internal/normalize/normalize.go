// Package normalize implements the deterministic team/event text pipeline
// (§4.2): Unicode fold, lowercase, affix/punctuation strip, whitespace
// collapse, plus sport-specific overrides. It is pure and side-effect-free —
// used by both the resolver and the persister, exactly as the prior
// matcher.normalizeTeam backs the database unique constraint.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/oddsforge/arbiter/internal/models"
)

// clubAffixes are common club-name prefixes/suffixes stripped before
// comparison, modeled on teamNamePrefixes table
// (internal/calculator/calculator/matcher.go) generalized to prefix+suffix.
var clubAffixes = []string{
	"fc", "sc", "bc", "cf", "afc", "ac", "as", "rc", "fk", "nk", "ud", "cd", "ksk", "ssc",
}

var diacriticFold transform.Transformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Team deterministically normalizes a team name for comparison and storage
// (backs the `team1_norm`/`team2_norm` unique index, §4.2, §6).
func Team(s string) string {
	s, _, _ = transform.String(diacriticFold, s)
	s = strings.ToLower(s)
	s = stripPunctuation(s)
	tokens := stripAffixTokens(strings.Fields(s))
	return strings.Join(tokens, " ")
}

func stripPunctuation(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func stripAffixTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if isAffix(tok) {
			continue
		}
		out = append(out, tok)
	}
	if len(out) == 0 {
		// Never collapse a name to nothing — an all-affix name is still a name.
		return tokens
	}
	return out
}

func isAffix(tok string) bool {
	for _, a := range clubAffixes {
		if tok == a {
			return true
		}
	}
	return false
}

// Event applies Team plus sport-specific overrides. For tennis, names given
// as "Last, First" or "First Last" reduce to the canonical surname token, and
// the pair is compared order-insensitively by the resolver (§4.2).
func Event(s string, sport models.SportID) string {
	if sport == models.SportTennis {
		return Team(tennisSurnameRaw(s))
	}
	return Team(s)
}

// tennisSurnameRaw extracts the surname substring before generic
// punctuation stripping runs, since the comma in "Last, First" is the only
// signal distinguishing it from "First Last" order.
func tennisSurnameRaw(s string) string {
	if idx := strings.IndexRune(s, ','); idx >= 0 {
		// "Djokovic, Novak" -> surname is the part before the comma.
		return s[:idx]
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	// "Novak Djokovic" -> surname is conventionally the last token.
	return fields[len(fields)-1]
}
