package cmc

import (
	"strconv"
	"strings"
)

// Selection grammar (§4.1): a strictly-typed ASCII encoding so two providers
// can never disagree on form.
//
//	H1: / H2:   half prefix
//	H / A / X   team side (home/away/neither)
//	FT:         full-time flag inside a combo
//	&           AND separator
//	|           OR separator
//	/           halftime/fulltime separator (never "-")
//	X:Y         correct score
//	TN          exact-goal count (T-prefixed integer)
//	A-B / N+    goal range
//	GG / NG     both-teams-to-score yes/no

// NormalizeHTFTSeparator rewrites a halftime/fulltime selection that uses "-"
// (one vendor's convention) to the canonical "/" separator, e.g. "1-1" -> "1/1".
// It leaves already-canonical selections (and anything that doesn't look like
// an HT/FT pair) untouched.
func NormalizeHTFTSeparator(sel string) string {
	if strings.Contains(sel, "/") {
		return sel
	}
	parts := strings.SplitN(sel, "-", 2)
	if len(parts) != 2 {
		return sel
	}
	if !isHTFTToken(parts[0]) || !isHTFTToken(parts[1]) {
		return sel
	}
	return parts[0] + "/" + parts[1]
}

func isHTFTToken(s string) bool {
	return s == "1" || s == "X" || s == "2"
}

// RomanHalfToPrefix folds a Roman-numeral half suffix ("I", "II") into the
// canonical H1:/H2: prefix vocabulary, e.g. "I:1+" -> "H1:1+".
func RomanHalfToPrefix(sel string) string {
	switch {
	case strings.HasPrefix(sel, "II:"):
		return "H2:" + sel[3:]
	case strings.HasPrefix(sel, "I:"):
		return "H1:" + sel[2:]
	default:
		return sel
	}
}

// localizedTeamTokens maps one vendor's localized team-side / BTTS labels to
// the canonical vocabulary (H/A, GG/NG).
var localizedTeamTokens = map[string]string{
	"Tim1": "H",
	"Tim2": "A",
	"GG":   "GG",
	"NG":   "NG",
}

// FoldLocalizedTokens replaces any localized team/BTTS token that makes up an
// '&'-joined segment of sel, or the part of a segment after its last ':'
// (e.g. the "Tim1" in "I:Tim1"), with its canonical equivalent.
func FoldLocalizedTokens(sel string) string {
	segs := strings.Split(sel, "&")
	for i, s := range segs {
		prefix, tok := "", s
		if idx := strings.LastIndex(s, ":"); idx >= 0 {
			prefix, tok = s[:idx+1], s[idx+1:]
		}
		if canon, ok := localizedTeamTokens[tok]; ok {
			segs[i] = prefix + canon
		}
	}
	return strings.Join(segs, "&")
}

// GoalRangeDigitToExactGoals re-routes a standalone digit selection emitted
// under a goal-range bet type to the exact-goals selection form, e.g. "3" -> "T3";
// the caller (Encode) switches the bet type to BetExactGoals.
// ok is false when sel is not a bare non-negative integer (i.e. it is a
// genuine range like "0-2" or "3+" and stays under goal-range).
func GoalRangeDigitToExactGoals(sel string) (exactSel string, ok bool) {
	if sel == "" {
		return "", false
	}
	for _, r := range sel {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return "T" + sel, true
}

// ParseCorrectScore splits a correct-score selection "X:Y" into its two
// integers. ok is false for the catch-all "other" selection or malformed input.
func ParseCorrectScore(sel string) (home, away int, ok bool) {
	parts := strings.SplitN(sel, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	a, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return h, a, true
}
