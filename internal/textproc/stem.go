// Package textproc turns free-text topics into canonical stem keys and
// builds byte-bounded previews for list views.
package textproc

import (
	"strings"
	"unicode"

	porterstemmer "github.com/reiver/go-porterstemmer"
	"golang.org/x/text/unicode/norm"
)

// StemKey reduces a topic to its canonical stem key: lowercase, stop words
// removed, remaining tokens Porter-stemmed and joined by single spaces in
// their original order.
//
// A topic made only of stop words yields the empty key.
func StemKey(text string) string {
	tokens := Tokenize(strings.ToLower(nfc(text)))

	stems := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if IsStopWord(tok) {
			continue
		}
		stems = append(stems, stem(tok))
	}
	return strings.Join(stems, " ")
}

// Tokenize splits text into words. A word is a maximal run of letters,
// digits or underscores; everything else separates words.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}

// stem leaves the token as is when the stemmer panics, which it does for
// words it reduces to a bare "e" such as "eed" or "eing".
func stem(tok string) (out string) {
	defer func() {
		if recover() != nil {
			out = tok
		}
	}()
	return porterstemmer.StemString(tok)
}

// nfc composes decomposed sequences so "café" typed either way yields one key.
func nfc(s string) string {
	return norm.NFC.String(s)
}
