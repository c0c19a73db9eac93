// Package gazetteer matches fixed vocabularies of skills against free text.
package gazetteer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Vocabulary is an immutable, ordered list of lowercase entries.
// It is safe for concurrent use once constructed.
type Vocabulary struct {
	name    string
	entries []string
}

// NewVocabulary lowercases, trims and de-duplicates the provided entries,
// keeping the first occurrence of each. Empty entries are skipped.
func NewVocabulary(name string, entries []string) (*Vocabulary, error) {
	seen := make(map[string]struct{}, len(entries))
	cleaned := make([]string, 0, len(entries))

	for _, entry := range entries {
		entry = Normalize(entry)
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		cleaned = append(cleaned, entry)
	}

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("vocabulary %q has no usable entries", name)
	}

	return &Vocabulary{name: name, entries: cleaned}, nil
}

// MustVocabulary is like NewVocabulary but panics on error.
// Intended for built-in vocabularies only.
func MustVocabulary(name string, entries []string) *Vocabulary {
	v, err := NewVocabulary(name, entries)
	if err != nil {
		panic(err)
	}
	return v
}

// LoadVocabulary reads one entry per line. Blank lines and lines starting
// with '#' are ignored.
func LoadVocabulary(name string, r io.Reader) (*Vocabulary, error) {
	var entries []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vocabulary %q: %w", name, err)
	}

	return NewVocabulary(name, entries)
}

// LoadVocabularyFile is LoadVocabulary over a file on disk.
func LoadVocabularyFile(name, path string) (*Vocabulary, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("vocabulary file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary file %q: %w", path, err)
	}
	defer file.Close()

	return LoadVocabulary(name, file)
}

func (v *Vocabulary) Name() string {
	if v == nil {
		return ""
	}
	return v.name
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Entries returns a copy of the vocabulary entries in their original order.
func (v *Vocabulary) Entries() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.entries))
	copy(out, v.entries)
	return out
}

// Set bundles the two vocabularies the scoring engine needs.
type Set struct {
	Technical *Vocabulary
	Soft      *Vocabulary
}

// DefaultSet returns the built-in technical and soft-skill vocabularies.
func DefaultSet() Set {
	return Set{
		Technical: defaultTechnical,
		Soft:      defaultSoft,
	}
}
