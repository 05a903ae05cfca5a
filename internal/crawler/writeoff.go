package crawler

import "strings"

// writeOffKeywords are the markers an insurance write-off shows up under.
// Sellers word these inconsistently, so the plain category codes and the
// long forms are both listed.
var writeOffKeywords = []string{
	"write-off", "writeoff", "write off",
	"cat s", "cat n", "cat d", "cat c", "cat b", "cat a",
	"category s", "category n", "category d", "category c",
	"salvage", "damaged", "insurance write",
	"accident damage", "repaired damage",
}

// WriteOffKeyword reports the first exclusion keyword found in the
// listing's descriptive text, searching title, description and attention
// grabber case-insensitively.
func WriteOffKeyword(l Listing) (string, bool) {
	text := strings.ToLower(strings.Join([]string{
		l.Title,
		l.Description,
		l.AttentionGrabber,
	}, " "))

	for _, keyword := range writeOffKeywords {
		if strings.Contains(text, keyword) {
			return keyword, true
		}
	}

	return "", false
}

// IsWriteOff reports whether the listing should be excluded as a write-off
func IsWriteOff(l Listing) bool {
	_, found := WriteOffKeyword(l)
	return found
}
