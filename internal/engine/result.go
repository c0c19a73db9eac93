package engine

import (
	"time"

	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/gazetteer"
	"github.com/matchsense/matchsense/internal/scoring"
)

// Result is the outcome of one resume analysis. It is not modified after
// Analyze returns.
type Result struct {
	ID               string                 `json:"id"`
	Overall          float64                `json:"overall"`
	Category         scoring.Category       `json:"category"`
	Scores           scoring.FactorScores   `json:"factor_scores"`
	ResumeSkills     gazetteer.SkillSet     `json:"resume_skills"`
	JobSkills        gazetteer.SkillSet     `json:"job_skills"`
	ResumeSoftSkills gazetteer.SkillSet     `json:"resume_soft_skills"`
	JobSoftSkills    gazetteer.SkillSet     `json:"job_soft_skills"`
	ResumeExperience extract.ExperienceFact `json:"resume_experience"`
	ResumeEducation  extract.EducationFact  `json:"resume_education"`
	ResumeProfile    extract.ProfileFact    `json:"resume_profile"`
	Strengths        []string               `json:"strengths"`
	Weaknesses       []string               `json:"weaknesses"`
	Recommendations  []string               `json:"recommendations"`
	Warnings         []string               `json:"warnings,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
}

// Degraded reports whether a collaborator failed and a factor fell back to
// its default.
func (r *Result) Degraded() bool {
	return r != nil && len(r.Warnings) > 0
}

// Job is a job description prepared once and shared read-only by every
// analysis against it.
type Job struct {
	Text       string
	Level      extract.Level
	Skills     gazetteer.SkillSet
	SoftSkills gazetteer.SkillSet
}
