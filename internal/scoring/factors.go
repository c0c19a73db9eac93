// Package scoring turns extracted facts into factor scores and combines them
// into an overall compatibility score with a narrative.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/gazetteer"
)

// Factor names one of the five scoring dimensions.
type Factor string

const (
	FactorSemantic   Factor = "semantic"
	FactorSkills     Factor = "skills"
	FactorExperience Factor = "experience"
	FactorEducation  Factor = "education"
	FactorSoftSkills Factor = "soft_skills"
)

// Factors lists every factor in aggregation order.
func Factors() []Factor {
	return []Factor{FactorSemantic, FactorSkills, FactorExperience, FactorEducation, FactorSoftSkills}
}

const (
	MinScore     = 0.0
	MaxScore     = 100.0
	NeutralScore = 50.0

	skillBonusCap      = 10
	skillBonusPerSkill = 2.0
)

// FactorScores holds the five factor scores, each in [0,100].
type FactorScores struct {
	Semantic   float64 `json:"semantic"`
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	SoftSkills float64 `json:"soft_skills"`
}

// Get returns the score for factor f.
func (s FactorScores) Get(f Factor) float64 {
	switch f {
	case FactorSemantic:
		return s.Semantic
	case FactorSkills:
		return s.Skills
	case FactorExperience:
		return s.Experience
	case FactorEducation:
		return s.Education
	case FactorSoftSkills:
		return s.SoftSkills
	default:
		return 0
	}
}

// Clamped returns a copy with every score clamped to [0,100].
func (s FactorScores) Clamped() FactorScores {
	return FactorScores{
		Semantic:   Clamp(s.Semantic),
		Skills:     Clamp(s.Skills),
		Experience: Clamp(s.Experience),
		Education:  Clamp(s.Education),
		SoftSkills: Clamp(s.SoftSkills),
	}
}

// Clamp bounds v to [0,100]. NaN becomes 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}

// SemanticScore converts a similarity in [0,1] into a score. Negative cosine
// values are floored at 0.
func SemanticScore(similarity float64) float64 {
	return Clamp(similarity * 100)
}

// SkillsScore is the share of job skills covered by the resume plus a small
// bonus for additional resume skills.
func SkillsScore(resume, job gazetteer.SkillSet) float64 {
	if job.Len() == 0 {
		return NeutralScore
	}
	if resume.Len() == 0 {
		return MinScore
	}

	matches := resume.Intersect(job).Len()
	matchPct := float64(matches) / float64(job.Len()) * 100

	extra := resume.Len() - matches
	if extra > skillBonusCap {
		extra = skillBonusCap
	}
	bonus := float64(extra) * skillBonusPerSkill

	return Clamp(math.Min(MaxScore, matchPct+bonus))
}

// ExperienceScore compares the resume level with the job level.
func ExperienceScore(resume, job extract.Level) float64 {
	diff := resume.Ordinal() - job.Ordinal()
	if diff < 0 {
		diff = -diff
	}

	switch diff {
	case 0:
		return 100
	case 1:
		return 75
	case 2:
		return 50
	default:
		return 25
	}
}

var educationBase = map[extract.EducationLevel]float64{
	extract.None:      0,
	extract.Technical: 25,
	extract.Bachelor:  50,
	extract.PostGrad:  75,
	extract.Masters:   90,
	extract.Doctorate: 100,
}

type educationRequirement struct {
	pattern    *regexp.Regexp
	unmet      func(extract.EducationLevel) bool
	multiplier float64
}

// educationRequirements are checked in priority order; only the first rule
// that fires applies.
var educationRequirements = []educationRequirement{
	{
		pattern:    regexp.MustCompile(`\b(?:doutorado|doctorate|phd|ph\.d)\b`),
		unmet:      func(l extract.EducationLevel) bool { return l < extract.Doctorate },
		multiplier: 0.7,
	},
	{
		pattern:    regexp.MustCompile(`\b(?:mestrado|master['’]?s|master\s+of|master\s+degree)\b`),
		unmet:      func(l extract.EducationLevel) bool { return l < extract.Masters },
		multiplier: 0.8,
	},
	{
		pattern:    regexp.MustCompile(`\b(?:graduação|graduacao|graduation|bacharelado|bachelor)\b`),
		unmet:      func(l extract.EducationLevel) bool { return l == extract.None || l == extract.Technical },
		multiplier: 0.6,
	},
}

// EducationScore scores the resume's highest education level and applies a
// penalty when jobText asks for a level the resume does not reach.
func EducationScore(resume extract.EducationFact, jobText string) float64 {
	score := educationBase[resume.Highest]

	job := strings.ToLower(jobText)
	for _, req := range educationRequirements {
		if req.pattern.MatchString(job) && req.unmet(resume.Highest) {
			score *= req.multiplier
			break
		}
	}

	return Clamp(score)
}

// SoftSkillsScore is the share of job soft skills present in the resume.
func SoftSkillsScore(resume, job gazetteer.SkillSet) float64 {
	if resume.Len() == 0 || job.Len() == 0 {
		return NeutralScore
	}

	overlap := resume.Intersect(job).Len()
	return Clamp(float64(overlap) / float64(job.Len()) * 100)
}
