package analyzer

import "strings"

// clubSuffixes are 2-4 letter tokens that appear after a club name on
// printed slips and in API responses but carry no identity ("Liverpool FC"
// and "Liverpool" are the same club).
var clubSuffixes = map[string]struct{}{
	"fc":  {},
	"afc": {},
	"lfc": {},
	"cfc": {},
	"ufc": {},
	"ssc": {},
	"sc":  {},
	"cf":  {},
	"fk":  {},
	"bk":  {},
	"if":  {},
}

// Normalize reduces a team name to a canonical comparable form: lowercase,
// club-suffix tokens stripped, whitespace collapsed. It is pure and is used
// both for anchor matching and for cross-referencing selections against
// match results.
func Normalize(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))

	kept := fields[:0]
	for _, f := range fields {
		// OCR and print styles disagree on "FC" vs "F.C.".
		f = strings.ReplaceAll(f, ".", "")
		if _, ok := clubSuffixes[f]; ok {
			continue
		}
		if f != "" {
			kept = append(kept, f)
		}
	}

	return strings.Join(kept, " ")
}
