// Package report turns analysis results into export records, statistics
// and a plain-text report.
package report

import (
	"math"
	"time"

	"github.com/matchsense/matchsense/internal/engine"
	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/ranking"
	"github.com/matchsense/matchsense/internal/scoring"
)

// Record is the exported shape of one analysis. Scores are rounded to two
// decimals; everything else is copied from the result.
type Record struct {
	Filename         string                 `json:"filename,omitempty"`
	Overall          float64                `json:"overall"`
	Category         scoring.Category       `json:"category,omitempty"`
	Scores           scoring.FactorScores   `json:"factor_scores"`
	ResumeSkills     []string               `json:"resume_skills"`
	JobSkills        []string               `json:"job_skills"`
	ResumeExperience extract.ExperienceFact `json:"resume_experience"`
	ResumeEducation  extract.EducationFact  `json:"resume_education"`
	Profile          *extract.ProfileFact   `json:"profile,omitempty"`
	Strengths        []string               `json:"strengths"`
	Weaknesses       []string               `json:"weaknesses"`
	Recommendations  []string               `json:"recommendations"`
	Timestamp        time.Time              `json:"timestamp"`
	Error            string                 `json:"error,omitempty"`
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewRecord builds the export record of r. A nil result yields an empty
// record holding the filename and the facts of an empty text.
func NewRecord(filename string, r *engine.Result) Record {
	if r == nil {
		return Record{
			Filename:         filename,
			ResumeSkills:     []string{},
			JobSkills:        []string{},
			ResumeExperience: extract.Experience(""),
			ResumeEducation:  extract.Education(""),
			Strengths:        []string{},
			Weaknesses:       []string{},
			Recommendations:  []string{},
		}
	}

	rec := Record{Filename: filename}

	rec.Overall = Round2(r.Overall)
	rec.Category = r.Category
	rec.Scores = scoring.FactorScores{
		Semantic:   Round2(r.Scores.Semantic),
		Skills:     Round2(r.Scores.Skills),
		Experience: Round2(r.Scores.Experience),
		Education:  Round2(r.Scores.Education),
		SoftSkills: Round2(r.Scores.SoftSkills),
	}
	rec.ResumeSkills = nonNil(r.ResumeSkills)
	rec.JobSkills = nonNil(r.JobSkills)
	rec.ResumeExperience = r.ResumeExperience
	rec.ResumeEducation = r.ResumeEducation
	rec.ResumeEducation.Levels = append([]extract.EducationLevel{}, r.ResumeEducation.Levels...)
	if !r.ResumeProfile.Empty() {
		profile := r.ResumeProfile
		if profile.Languages != nil {
			profile.Languages = nonNil(profile.Languages)
		}
		rec.Profile = &profile
	}
	rec.Strengths = nonNil(r.Strengths)
	rec.Weaknesses = nonNil(r.Weaknesses)
	rec.Recommendations = nonNil(r.Recommendations)
	rec.Timestamp = r.Timestamp
	return rec
}

// FromBatch converts every entry, keeping the ranked order. Failed entries
// keep their filename, a zero score and the error text.
func FromBatch(b *ranking.Batch) []Record {
	if b == nil {
		return nil
	}

	records := make([]Record, 0, len(b.Entries))
	for _, entry := range b.Entries {
		filename := entry.Filename
		if filename == "" {
			filename = entry.ID
		}
		rec := NewRecord(filename, entry.Result)
		if entry.Err != nil {
			rec.Category = scoring.CategoryFor(0)
			rec.Error = entry.Err.Error()
		}
		records = append(records, rec)
	}
	return records
}

// Failed reports whether the record stands for a failed analysis.
func (r Record) Failed() bool {
	return r.Error != ""
}

// category is the stored category, which was derived from the unrounded
// score. Records without one fall back to the rounded Overall.
func (r Record) category() scoring.Category {
	if r.Category != "" {
		return r.Category
	}
	return scoring.CategoryFor(r.Overall)
}

// ToResult rebuilds an analysis result from an imported record. The category
// is recomputed when the record does not carry one.
func (r Record) ToResult() *engine.Result {
	result := &engine.Result{
		Overall:          r.Overall,
		Category:         r.category(),
		Scores:           r.Scores,
		ResumeSkills:     r.ResumeSkills,
		JobSkills:        r.JobSkills,
		ResumeExperience: r.ResumeExperience,
		ResumeEducation:  r.ResumeEducation,
		Strengths:        r.Strengths,
		Weaknesses:       r.Weaknesses,
		Recommendations:  r.Recommendations,
		Timestamp:        r.Timestamp,
	}
	if r.Profile != nil {
		result.ResumeProfile = *r.Profile
	}
	return result
}

func nonNil(s []string) []string {
	return append([]string{}, s...)
}
