package scoring

// Category classifies an overall score.
type Category string

const (
	CategoryExcellent Category = "Excellent"
	CategoryGood      Category = "Good"
	CategoryModerate  Category = "Moderate"
	CategoryLow       Category = "Low"
)

// Categories lists the categories from highest to lowest.
func Categories() []Category {
	return []Category{CategoryExcellent, CategoryGood, CategoryModerate, CategoryLow}
}

// Aggregate returns the weighted sum of the factor scores. The weights are
// used as given; callers validate or normalize them beforehand. The result
// is clamped to [0,100] since a valid sum may exceed 1.0 by the tolerance.
func Aggregate(scores FactorScores, w Weights) float64 {
	overall := 0.0
	for _, f := range Factors() {
		overall += scores.Get(f) * w.Get(f)
	}
	return Clamp(overall)
}

// CategoryFor classifies an overall score.
func CategoryFor(overall float64) Category {
	switch {
	case overall >= 80:
		return CategoryExcellent
	case overall >= 60:
		return CategoryGood
	case overall >= 40:
		return CategoryModerate
	default:
		return CategoryLow
	}
}

const (
	strengthThreshold = 70.0
	weaknessThreshold = 40.0
	adviceThreshold   = 50.0
)

type narrativeRule struct {
	factor   Factor
	strength string
	weakness string
}

// Education and soft skills are intentionally absent.
var narrativeRules = []narrativeRule{
	{
		factor:   FactorSemantic,
		strength: "High semantic alignment with the job description",
		weakness: "Low semantic alignment with the job description",
	},
	{
		factor:   FactorSkills,
		strength: "Strong match on the required technical skills",
		weakness: "Technical skills do not meet the requirements",
	},
	{
		factor:   FactorExperience,
		strength: "Experience level fits the position",
		weakness: "Experience level may not fit the position",
	},
}

var bandRecommendations = map[Category]string{
	CategoryExcellent: "Excellent compatibility: this candidate is highly recommended for the position.",
	CategoryGood:      "Good compatibility: consider interviewing the candidate to evaluate further.",
	CategoryModerate:  "Moderate compatibility: evaluate whether the candidate can grow into the position.",
	CategoryLow:       "Low compatibility: consider other candidates or revisit the job requirements.",
}

type adviceRule struct {
	factor Factor
	text   string
}

var adviceRules = []adviceRule{
	{FactorSkills, "Consider training in the specific technologies to improve the technical fit."},
	{FactorExperience, "The experience level may not match the position; consider adjusting expectations."},
	{FactorEducation, "The academic background may not meet the requirements; assess whether it is really necessary."},
}

// Narrative is the human readable explanation of a score.
type Narrative struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Narrate builds strengths, weaknesses and recommendations for the given
// scores. Every slice is non-nil.
func Narrate(overall float64, scores FactorScores) Narrative {
	n := Narrative{
		Strengths:       []string{},
		Weaknesses:      []string{},
		Recommendations: []string{bandRecommendations[CategoryFor(overall)]},
	}

	for _, rule := range narrativeRules {
		score := scores.Get(rule.factor)
		if score >= strengthThreshold {
			n.Strengths = append(n.Strengths, rule.strength)
		}
		if score < weaknessThreshold {
			n.Weaknesses = append(n.Weaknesses, rule.weakness)
		}
	}

	for _, rule := range adviceRules {
		if scores.Get(rule.factor) < adviceThreshold {
			n.Recommendations = append(n.Recommendations, rule.text)
		}
	}

	return n
}
