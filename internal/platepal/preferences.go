package platepal

import "strings"

// QuickPreferences are the one-tap dietary labels offered to the user.
var QuickPreferences = []string{
	"Vegan",
	"Vegetarian",
	"Gluten-free",
	"Halal",
	"Kosher",
	"Keto",
	"Paleo",
	"Dairy-free",
	"Nut-free",
	"Low-carb",
	"Organic",
	"Raw",
}

// MaxSuggestions caps how many quick preferences are suggested at once.
const MaxSuggestions = 6

// Tokens splits a comma-separated preference string into trimmed, non-empty
// tokens.
func Tokens(prefs string) []string {
	var tokens []string
	for _, t := range strings.Split(prefs, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// IsActive reports whether label is one of the tokens, ignoring case.
func IsActive(prefs, label string) bool {
	for _, t := range Tokens(prefs) {
		if strings.EqualFold(t, label) {
			return true
		}
	}
	return false
}

// Toggle removes label from prefs when it is active and appends it in lower
// case otherwise. The result is re-joined with ", ".
func Toggle(prefs, label string) string {
	tokens := Tokens(prefs)

	if IsActive(prefs, label) {
		kept := tokens[:0]
		for _, t := range tokens {
			if !strings.EqualFold(t, label) {
				kept = append(kept, t)
			}
		}
		return strings.Join(kept, ", ")
	}

	return strings.Join(append(tokens, strings.ToLower(label)), ", ")
}

// Suggestions returns up to limit quick preferences whose name contains the
// whole input, ignoring case, and that are not already active. The input is
// matched untrimmed, so a trailing space narrows the match.
func Suggestions(prefs string, limit int) []string {
	needle := strings.ToLower(prefs)

	var out []string
	for _, pref := range QuickPreferences {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(pref), needle) && !IsActive(prefs, pref) {
			out = append(out, pref)
		}
	}
	return out
}
