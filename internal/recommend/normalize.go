package recommend

import (
	"strings"
	"unicode"
)

// NormalizeTitle reduces a display title to its comparison form: lowercase
// with everything except letters and digits removed. Normalizing an already
// normalized title returns it unchanged. Display strings are never replaced
// by their normalized form.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// kindMarkers are the substrings that classify a free-text kind label as
// episodic content.
var kindMarkers = []string{"tv", "show", "series"}

// ClassifyKind maps a generator-declared kind label onto a MediaKind. Labels
// containing tv, show, or series in any casing resolve to KindSeries; every
// other label, including an empty one, resolves to KindMovie.
func ClassifyKind(label string) MediaKind {
	lowered := strings.ToLower(label)
	for _, marker := range kindMarkers {
		if strings.Contains(lowered, marker) {
			return KindSeries
		}
	}
	return KindMovie
}
