package similarity

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stopWords are frequent English and Portuguese words that carry no meaning
// for matching.
var stopWords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "you": {}, "are": {}, "have": {},
	"will": {}, "this": {}, "that": {}, "from": {}, "our": {}, "your": {}, "their": {},
	"they": {}, "about": {}, "which": {}, "what": {}, "who": {}, "how": {}, "can": {},
	"not": {}, "but": {}, "all": {}, "also": {}, "more": {}, "than": {}, "into": {},
	"has": {}, "its": {}, "was": {}, "were": {}, "been": {}, "each": {}, "such": {},
	"com": {}, "para": {}, "uma": {}, "por": {}, "que": {}, "dos": {}, "das": {},
	"nos": {}, "nas": {}, "como": {}, "mais": {}, "seu": {}, "sua": {}, "ser": {},
	"são": {}, "entre": {}, "sobre": {}, "pela": {}, "pelo": {},
}

// Lexical is an offline Service computing the cosine similarity of term
// frequency vectors. Tokens shorter than three runes and stop words are
// ignored; '+', '#' and '.' stay inside tokens so "c++" and "node.js" survive.
type Lexical struct{}

func NewLexical() *Lexical { return &Lexical{} }

func (l *Lexical) Similarity(ctx context.Context, a, b string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ta, tb := Terms(a), Terms(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0, nil
	}

	vocabulary := make(map[string]struct{}, len(ta)+len(tb))
	for term := range ta {
		vocabulary[term] = struct{}{}
	}
	for term := range tb {
		vocabulary[term] = struct{}{}
	}

	keys := make([]string, 0, len(vocabulary))
	for term := range vocabulary {
		keys = append(keys, term)
	}
	sort.Strings(keys)

	va := make([]float64, len(keys))
	vb := make([]float64, len(keys))
	for i, term := range keys {
		va[i] = float64(ta[term])
		vb[i] = float64(tb[term])
	}

	return Cosine(va, vb), nil
}

// Terms counts the meaningful tokens of text.
func Terms(text string) map[string]int {
	terms := make(map[string]int)
	var word strings.Builder

	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len([]rune(w)) < 3 {
			return
		}
		if _, stop := stopWords[w]; stop {
			return
		}
		terms[w]++
	}

	for _, r := range strings.ToLower(norm.NFC.String(text)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return terms
}
