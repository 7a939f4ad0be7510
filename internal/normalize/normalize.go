// Package normalize folds Brazilian company text for matching: diacritic
// stripping, case folding, and keyword tokenization with Portuguese
// stopword filtering.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stopwords lists Portuguese articles, prepositions, and conjunctions plus
// legal-entity suffixes (ltda, me, epp, sa) that carry no signal in trade
// names. All entries are lowercase and diacritic-free.
var Stopwords = map[string]bool{
	"e": true, "de": true, "do": true, "da": true, "dos": true, "das": true,
	"o": true, "a": true, "os": true, "as": true,
	"um": true, "uma": true, "uns": true, "umas": true,
	"para": true, "com": true, "sem": true, "em": true,
	"no": true, "na": true, "nos": true, "nas": true,
	"ao": true, "aos": true, "por": true, "pelo": true, "pela": true,
	"pelos": true, "pelas": true, "ou": true, "nem": true, "mas": true,
	"mais": true, "menos": true, "desde": true, "ate": true, "apos": true,
	"entre": true, "sob": true, "sobre": true, "ante": true, "contra": true,
	"ltda": true, "me": true, "epp": true, "eireli": true, "sa": true,
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stripDiacritics removes combining marks ("pão" -> "pao", "São" -> "Sao").
func stripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Scalar folds a value for exact-match comparison: trim, strip diacritics,
// uppercase. Used for state codes, city names, and every categorical filter
// value bound into a query.
func Scalar(s string) string {
	return strings.ToUpper(stripDiacritics(strings.TrimSpace(s)))
}

// District folds a district (bairro) name. Source data sometimes carries a
// slash-joined alternate name; only the part before the slash counts.
func District(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return Scalar(s)
}

// Tokenize splits free text into lowercase, diacritic-free keyword tokens.
// Punctuation and digit runs are removed, then tokens of length <= 1 and
// tokens in the stopword set are dropped. Blank input yields nil.
func Tokenize(text string, stopwords map[string]bool) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	text = strings.ToLower(stripDiacritics(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) <= 1 {
			continue
		}
		if stopwords != nil && stopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
