package searching

import (
	"strings"

	"github.com/gosimple/unidecode"

	"playdeck/src/playlist"
)

// The filter is a two-state machine: inactive (empty text, everything
// visible) and active (non-empty text, per-item visibility computed). An
// item is visible iff every whitespace-delimited token of the filter text
// occurs, case- and accent-insensitively, in at least one of its searchable
// fields (location plus metadata values). Filtering never mutates the
// playlist; it only decides which rows a view renders.

// fold normalizes text for matching: accents stripped, lower-cased.
func fold(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}

// Tokenize splits filter text into folded needles. An empty result means
// the filter is inactive.
func Tokenize(text string) []string {
	return strings.Fields(fold(text))
}

// ItemFields assembles an item's searchable fields, already folded.
func ItemFields(item *playlist.Item) []string {
	fields := []string{fold(item.URL())}
	for _, v := range item.Metadata() {
		fields = append(fields, fold(v))
	}
	return fields
}

// Matches reports whether every needle occurs in at least one field. Fields
// must already be folded (ItemFields); an empty needle list matches
// everything.
func Matches(fields []string, needles []string) bool {
	for _, needle := range needles {
		found := false
		for _, field := range fields {
			if strings.Contains(field, needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchItem is the convenience form of Matches for a live item.
func MatchItem(item *playlist.Item, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	return Matches(ItemFields(item), needles)
}
