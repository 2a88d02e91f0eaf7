package pickup

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var umlautReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
	"ß", "ss",
	"ẞ", "SS",
)

var emptyParens = regexp.MustCompile(`\([\s\p{Z}]*\)`)

// Normalize folds German special characters to ASCII digraphs, removes empty
// parenthetical groups and collapses whitespace. Characters outside the substitution
// table pass through unchanged. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = umlautReplacer.Replace(text)
	// A combining mark left behind by the table composes with the digraph's last letter.
	text = norm.NFC.String(text)
	text = collapseSpace(text)
	for emptyParens.MatchString(text) {
		text = emptyParens.ReplaceAllString(text, " ")
	}
	return collapseSpace(text)
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
