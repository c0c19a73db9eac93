package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// WeightTolerance is how far the weight sum may drift from 1.0 and still be valid.
const WeightTolerance = 0.01

var ErrInvalidWeights = errors.New("invalid weights")

// Weights assigns a non-negative weight to every factor. A valid
// configuration sums to 1.0 within WeightTolerance.
type Weights struct {
	Semantic   float64 `mapstructure:"semantic" json:"semantic" yaml:"semantic" validate:"gte=0,lte=1"`
	Skills     float64 `mapstructure:"skills" json:"skills" yaml:"skills" validate:"gte=0,lte=1"`
	Experience float64 `mapstructure:"experience" json:"experience" yaml:"experience" validate:"gte=0,lte=1"`
	Education  float64 `mapstructure:"education" json:"education" yaml:"education" validate:"gte=0,lte=1"`
	SoftSkills float64 `mapstructure:"soft_skills" json:"soft_skills" yaml:"soft_skills" validate:"gte=0,lte=1"`
}

// DefaultWeights is used when no configuration is supplied and when a zero
// configuration is normalized.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.4,
		Skills:     0.3,
		Experience: 0.2,
		Education:  0.05,
		SoftSkills: 0.05,
	}
}

func (w Weights) Get(f Factor) float64 {
	switch f {
	case FactorSemantic:
		return w.Semantic
	case FactorSkills:
		return w.Skills
	case FactorExperience:
		return w.Experience
	case FactorEducation:
		return w.Education
	case FactorSoftSkills:
		return w.SoftSkills
	default:
		return 0
	}
}

// Map returns the weights keyed by factor name.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, 5)
	for _, f := range Factors() {
		out[string(f)] = w.Get(f)
	}
	return out
}

func (w Weights) Sum() float64 {
	return w.Semantic + w.Skills + w.Experience + w.Education + w.SoftSkills
}

// Valid reports whether every weight is non-negative and the sum is within
// WeightTolerance of 1.0.
func (w Weights) Valid() bool {
	return w.Check() == nil
}

// Check is Valid with a descriptive error wrapping ErrInvalidWeights.
func (w Weights) Check() error {
	for _, f := range Factors() {
		v := w.Get(f)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s weight %v must be a non-negative number", ErrInvalidWeights, f, v)
		}
	}

	sum := w.Sum()
	if math.Abs(sum-1) > WeightTolerance+1e-9 {
		return fmt.Errorf("%w: weights sum to %.4f, expected 1.0 ± %.2f", ErrInvalidWeights, sum, WeightTolerance)
	}
	return nil
}

// Normalize scales the weights so they sum to exactly 1.0. Negative and NaN
// weights count as 0. A zero sum yields DefaultWeights.
func (w Weights) Normalize() Weights {
	w = Weights{
		Semantic:   nonNegative(w.Semantic),
		Skills:     nonNegative(w.Skills),
		Experience: nonNegative(w.Experience),
		Education:  nonNegative(w.Education),
		SoftSkills: nonNegative(w.SoftSkills),
	}

	sum := w.Sum()
	switch {
	case sum == 0 || math.IsInf(sum, 0):
		return DefaultWeights()
	case math.Abs(sum-1) < 1e-9:
		return w
	}

	return Weights{
		Semantic:   w.Semantic / sum,
		Skills:     w.Skills / sum,
		Experience: w.Experience / sum,
		Education:  w.Education / sum,
		SoftSkills: w.SoftSkills / sum,
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// WeightsFromMap decodes a loosely typed mapping such as a viper sub-tree or
// parsed flags. Missing factors keep their zero value, unknown keys are
// rejected. The result is not validated.
func WeightsFromMap(raw map[string]any) (Weights, error) {
	var w Weights

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &w,
	})
	if err != nil {
		return Weights{}, fmt.Errorf("creating weights decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return Weights{}, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	return w, nil
}
