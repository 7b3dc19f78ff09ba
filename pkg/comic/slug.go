package comic

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a title into a routing-safe identifier.
// e.g., "One Piece!!" -> "one-piece", "Pokémon Adventures" -> "pokemon-adventures"
//
// The result is deterministic and Slugify(Slugify(x)) == Slugify(x). Slugs are not
// unique: distinct titles may collapse to the same slug.
func Slugify(title string) string {
	decomposed := norm.NFD.String(strings.ToLower(title))

	var b strings.Builder
	b.Grow(len(decomposed))

	prevHyphen := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) { // drop combining marks
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
