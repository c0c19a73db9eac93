package gazetteer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// SkillSet is an ordered, de-duplicated list of lowercase skills.
// Order is the order of first appearance in the matched text.
type SkillSet []string

func (s SkillSet) Len() int { return len(s) }

func (s SkillSet) Contains(skill string) bool {
	for _, item := range s {
		if item == skill {
			return true
		}
	}
	return false
}

// Intersect returns the skills of s that are also present in other,
// preserving the order of s.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	if len(s) == 0 || len(other) == 0 {
		return SkillSet{}
	}

	index := make(map[string]struct{}, len(other))
	for _, item := range other {
		index[item] = struct{}{}
	}

	out := make(SkillSet, 0, len(s))
	for _, item := range s {
		if _, ok := index[item]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Clone returns an independent copy. The copy of an empty set is empty, not nil.
func (s SkillSet) Clone() SkillSet {
	out := make(SkillSet, len(s))
	copy(out, s)
	return out
}

// Limit returns at most n leading skills. Non-positive n means no limit.
func (s SkillSet) Limit(n int) SkillSet {
	if n <= 0 || len(s) <= n {
		return s
	}
	out := make(SkillSet, n)
	copy(out, s[:n])
	return out
}

// Normalize prepares text for matching: NFC composition, lowercase and
// single-space separated words.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Match returns the vocabulary entries found in text. Entries are matched as
// contiguous substrings of the normalized text that are not glued to a
// surrounding letter or digit, so "go" does not match inside "django" while
// "node.js" and "sql server" still match as a whole.
func Match(text string, vocabulary *Vocabulary) SkillSet {
	if vocabulary == nil || strings.TrimSpace(text) == "" {
		return SkillSet{}
	}

	return matchNormalized(Normalize(text), vocabulary)
}

type hit struct {
	entry string
	pos   int
	order int
}

func matchNormalized(text string, vocabulary *Vocabulary) SkillSet {
	hits := make([]hit, 0)
	for order, entry := range vocabulary.entries {
		if pos := findWhole(text, entry); pos >= 0 {
			hits = append(hits, hit{entry: entry, pos: pos, order: order})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].order < hits[j].order
	})

	out := make(SkillSet, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.entry)
	}
	return out
}

// findWhole returns the byte offset of the first bounded occurrence of entry
// in text, or -1.
func findWhole(text, entry string) int {
	if entry == "" {
		return -1
	}

	first, _ := utf8.DecodeRuneInString(entry)
	last, _ := utf8.DecodeLastRuneInString(entry)

	offset := 0
	for offset <= len(text)-len(entry) {
		idx := strings.Index(text[offset:], entry)
		if idx < 0 {
			return -1
		}
		start := offset + idx
		end := start + len(entry)

		if boundedBefore(text, start, first) && boundedAfter(text, end, last) {
			return start
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return -1
}

func boundedBefore(text string, start int, first rune) bool {
	if start == 0 || !isWordRune(first) {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(prev)
}

func boundedAfter(text string, end int, last rune) bool {
	if end >= len(text) || !isWordRune(last) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
