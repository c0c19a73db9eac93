// Package extract derives structured experience and education facts from raw
// resume and job text using ordered pattern rules. Absence of a match is a
// valid result, never an error.
package extract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matchsense/matchsense/internal/gazetteer"
)

// Level is a seniority level. The zero value is not a valid level.
type Level int

const (
	Junior Level = iota + 1
	Mid
	Senior
	Specialist
)

var levelNames = map[Level]string{
	Junior:     "junior",
	Mid:        "mid",
	Senior:     "senior",
	Specialist: "specialist",
}

// levelAliases accepts English and Portuguese spellings.
var levelAliases = map[string]Level{
	"junior":       Junior,
	"júnior":       Junior,
	"jr":           Junior,
	"entry":        Junior,
	"mid":          Mid,
	"middle":       Mid,
	"mid-level":    Mid,
	"pleno":        Mid,
	"senior":       Senior,
	"sênior":       Senior,
	"sr":           Senior,
	"specialist":   Specialist,
	"especialista": Specialist,
	"expert":       Specialist,
	"principal":    Specialist,
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// Ordinal maps the level onto 1..4. Unknown levels count as Junior.
func (l Level) Ordinal() int {
	if l < Junior || l > Specialist {
		return int(Junior)
	}
	return int(l)
}

func (l Level) MarshalText() ([]byte, error) {
	if _, ok := levelNames[l]; !ok {
		return nil, fmt.Errorf("unknown experience level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, ok := ParseLevel(string(text))
	if !ok {
		return fmt.Errorf("unknown experience level %q", string(text))
	}
	*l = parsed
	return nil
}

// ParseLevel resolves a level name. Unknown names resolve to Junior with ok=false.
func ParseLevel(name string) (Level, bool) {
	key := gazetteer.Normalize(name)
	if level, ok := levelAliases[key]; ok {
		return level, true
	}
	return Junior, false
}

// LevelForYears maps years of experience onto a level:
// 0-3 Junior, 4-6 Mid, 7-10 Senior, above 10 Specialist.
func LevelForYears(years int) Level {
	switch {
	case years <= 3:
		return Junior
	case years <= 6:
		return Mid
	case years <= 10:
		return Senior
	default:
		return Specialist
	}
}

// ExperienceFact is the experience extracted from a text.
type ExperienceFact struct {
	Years int   `json:"years"`
	Level Level `json:"level"`
}

// experienceRules are evaluated top to bottom; the first rule with any match
// wins and the largest number among its matches is used. Counts too large for
// an int saturate.
var experienceRules = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*\+?\s*(?:anos?|years?)\s*(?:de\s+|of\s+)?(?:experiência|experiencia|experience)`),
	regexp.MustCompile(`(?:experiência|experiencia|experience)\s*(?:de\s+|of\s+)?(\d+)\s*\+?\s*(?:anos?|years?)`),
	regexp.MustCompile(`(\d+)\s*\+?\s*(?:anos?|years?)\s*(?:no\s+|in\s+the\s+)?(?:mercado|market)`),
	regexp.MustCompile(`(\d+)\s*\+?\s*(?:anos?|years?)\s*(?:trabalhando|working)`),
}

// Experience extracts years of experience and the derived level.
func Experience(text string) ExperienceFact {
	years := experienceYears(strings.ToLower(text))
	return ExperienceFact{Years: years, Level: LevelForYears(years)}
}

func experienceYears(text string) int {
	for _, rule := range experienceRules {
		matches := rule.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}

		best := 0
		for _, match := range matches {
			n, err := strconv.Atoi(match[1])
			if errors.Is(err, strconv.ErrRange) {
				n = math.MaxInt
			} else if err != nil || n < 0 {
				continue
			}
			if n > best {
				best = n
			}
		}
		return best
	}
	return 0
}
