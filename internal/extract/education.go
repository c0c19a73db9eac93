package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// EducationLevel is an education category. Levels from None to Doctorate are
// totally ordered; Certification is recorded but never ranked.
type EducationLevel int

const (
	None EducationLevel = iota
	Technical
	Bachelor
	PostGrad
	Masters
	Doctorate
	Certification
)

var educationNames = map[EducationLevel]string{
	None:          "none",
	Technical:     "technical",
	Bachelor:      "bachelor",
	PostGrad:      "postgrad",
	Masters:       "masters",
	Doctorate:     "doctorate",
	Certification: "certification",
}

func (e EducationLevel) String() string {
	if name, ok := educationNames[e]; ok {
		return name
	}
	return "unknown"
}

// Ranked reports whether the level takes part in the None..Doctorate order.
func (e EducationLevel) Ranked() bool {
	return e >= None && e <= Doctorate
}

func (e EducationLevel) MarshalText() ([]byte, error) {
	if _, ok := educationNames[e]; !ok {
		return nil, fmt.Errorf("unknown education level %d", int(e))
	}
	return []byte(e.String()), nil
}

func (e *EducationLevel) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for level, candidate := range educationNames {
		if candidate == name {
			*e = level
			return nil
		}
	}
	return fmt.Errorf("unknown education level %q", string(text))
}

type educationRule struct {
	level   EducationLevel
	pattern *regexp.Regexp
}

// educationRules are tested independently; every matching rule contributes
// its level.
var educationRules = []educationRule{
	{Bachelor, regexp.MustCompile(`\b(?:graduação|graduacao|graduation|bacharelado|bachelor|licenciatura)\b`)},
	{PostGrad, regexp.MustCompile(`\b(?:pós\s*-?\s*graduação|pos\s*-?\s*graduacao|post\s*-?\s*graduation|postgraduate|especialização|especializacao|specialization)\b`)},
	{Masters, regexp.MustCompile(`\b(?:mestrado|masters?|msc|m\.sc)\b`)},
	{Doctorate, regexp.MustCompile(`\b(?:doutorado|ph\.?d|doctorate)\b`)},
	{Technical, regexp.MustCompile(`\b(?:técnico|tecnico|technical|curso\s+técnico)\b`)},
	{Certification, regexp.MustCompile(`\b(?:certificação|certificacao|certification|certificado|certificate)\b`)},
}

// EducationFact is the education extracted from a text. Levels keeps the
// order of educationRules.
type EducationFact struct {
	Levels  []EducationLevel `json:"levels"`
	Highest EducationLevel   `json:"highest"`
}

// Has reports whether level was found.
func (f EducationFact) Has(level EducationLevel) bool {
	for _, l := range f.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Education extracts every education category mentioned in text and the
// highest ranked one.
func Education(text string) EducationFact {
	lowered := strings.ToLower(text)

	fact := EducationFact{Levels: []EducationLevel{}, Highest: None}
	for _, rule := range educationRules {
		if !rule.pattern.MatchString(lowered) {
			continue
		}
		fact.Levels = append(fact.Levels, rule.level)
		if rule.level.Ranked() && rule.level > fact.Highest {
			fact.Highest = rule.level
		}
	}
	return fact
}
