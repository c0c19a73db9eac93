// Package engine runs the full compatibility pipeline for one resume against
// one job description.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/gazetteer"
	"github.com/matchsense/matchsense/internal/logger"
	"github.com/matchsense/matchsense/internal/metrics"
	"github.com/matchsense/matchsense/internal/scoring"
	"github.com/matchsense/matchsense/internal/similarity"
	"github.com/matchsense/matchsense/internal/utils"
)

// MaxResumeSkills caps the technical skills kept from a resume. Job skills
// are not capped.
const MaxResumeSkills = 10

var ErrEmptyText = errors.New("text is empty")

// Config configures an Analyzer. Zero values select the defaults.
type Config struct {
	Vocabulary        gazetteer.Set
	Weights           *scoring.Weights
	SimilarityTimeout time.Duration
	Metrics           *metrics.Metrics
	MaxLogLength      int
}

// Analyzer scores resumes against jobs. It is safe for concurrent use; the
// only mutable state is the current weight configuration.
type Analyzer struct {
	vocab     gazetteer.Set
	sim       similarity.Service
	metrics   *metrics.Metrics
	logger    *zap.Logger
	maxLogLen int
	now       func() time.Time
	newID     func() string

	weightsMu sync.RWMutex
	weights   scoring.Weights
}

// New builds an Analyzer. A nil similarity service is treated as
// permanently unavailable. Configured weights must be valid.
func New(sim similarity.Service, log *zap.Logger, cfg Config) (*Analyzer, error) {
	weights := scoring.DefaultWeights()
	if cfg.Weights != nil {
		if err := cfg.Weights.Check(); err != nil {
			return nil, err
		}
		weights = *cfg.Weights
	}

	vocab := cfg.Vocabulary
	defaults := gazetteer.DefaultSet()
	if vocab.Technical == nil {
		vocab.Technical = defaults.Technical
	}
	if vocab.Soft == nil {
		vocab.Soft = defaults.Soft
	}

	if sim == nil {
		sim = similarity.Unavailable()
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = 120
	}

	return &Analyzer{
		vocab:     vocab,
		sim:       similarity.WithTimeout(sim, cfg.SimilarityTimeout),
		metrics:   cfg.Metrics,
		logger:    logger.WithFields(log).Named("engine"),
		maxLogLen: maxLogLen,
		now:       time.Now,
		newID:     uuid.NewString,
		weights:   weights,
	}, nil
}

// Weights returns the current weight configuration.
func (a *Analyzer) Weights() scoring.Weights {
	a.weightsMu.RLock()
	defer a.weightsMu.RUnlock()
	return a.weights
}

// SetWeights replaces the current weight configuration. Invalid weights are
// rejected and the previous configuration is kept.
func (a *Analyzer) SetWeights(w scoring.Weights) error {
	if err := w.Check(); err != nil {
		return err
	}

	a.weightsMu.Lock()
	a.weights = w
	a.weightsMu.Unlock()

	a.logger.Info("weights updated", zap.Any("weights", w.Map()))
	return nil
}

// PrepareJob extracts the job skills once so they can be shared by many
// analyses.
func (a *Analyzer) PrepareJob(text string, level extract.Level) (*Job, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("job description: %w", ErrEmptyText)
	}
	if _, err := level.MarshalText(); err != nil {
		level = extract.Junior
	}

	return &Job{
		Text:       text,
		Level:      level,
		Skills:     gazetteer.Match(text, a.vocab.Technical),
		SoftSkills: gazetteer.Match(text, a.vocab.Soft),
	}, nil
}

// Request is a single resume/job analysis request. Nil Weights selects the
// analyzer's current configuration.
type Request struct {
	ResumeText string
	JobText    string
	JobLevel   extract.Level
	Weights    *scoring.Weights
}

// Analyze prepares the job and analyzes the resume against it.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	job, err := a.PrepareJob(req.JobText, req.JobLevel)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeJob(ctx, job, req.ResumeText, req.Weights)
}

// AnalyzeJob scores resumeText against a prepared job. Only empty input or
// invalid weights fail; a failing similarity service degrades the semantic
// factor to 0 and records a warning.
func (a *Analyzer) AnalyzeJob(ctx context.Context, job *Job, resumeText string, weights *scoring.Weights) (*Result, error) {
	start := a.now()

	result, err := a.analyze(ctx, job, resumeText, weights)
	if err != nil {
		a.metrics.ObserveAnalysis(metrics.StatusFailed, a.now().Sub(start), 0)
		return nil, err
	}

	status := metrics.StatusOK
	if result.Degraded() {
		status = metrics.StatusDegraded
	}
	a.metrics.ObserveAnalysis(status, a.now().Sub(start), result.Overall)

	a.logger.Debug("analysis finished",
		zap.String("analysis_id", result.ID),
		zap.Float64("overall", result.Overall),
		zap.String("category", string(result.Category)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, job *Job, resumeText string, weights *scoring.Weights) (*Result, error) {
	if job == nil || strings.TrimSpace(job.Text) == "" {
		return nil, fmt.Errorf("job description: %w", ErrEmptyText)
	}
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume: %w", ErrEmptyText)
	}

	w := a.Weights()
	if weights != nil {
		if err := weights.Check(); err != nil {
			return nil, err
		}
		w = *weights
	}

	var warnings []string

	similarityValue, err := a.sim.Similarity(ctx, resumeText, job.Text)
	if err != nil {
		similarityValue = 0
		warnings = append(warnings, fmt.Sprintf("semantic similarity unavailable: %v", err))
		a.logger.Warn("semantic similarity unavailable, scoring semantic factor as 0",
			zap.String("resume_preview", utils.TruncateForLog(resumeText, a.maxLogLen)),
			zap.Error(err),
		)
	}

	resumeSkills := gazetteer.Match(resumeText, a.vocab.Technical).Limit(MaxResumeSkills)
	resumeSoft := gazetteer.Match(resumeText, a.vocab.Soft)
	experience := extract.Experience(resumeText)
	education := extract.Education(resumeText)
	profile := extract.Profile(resumeText)

	scores := scoring.FactorScores{
		Semantic:   scoring.SemanticScore(similarityValue),
		Skills:     scoring.SkillsScore(resumeSkills, job.Skills),
		Experience: scoring.ExperienceScore(experience.Level, job.Level),
		Education:  scoring.EducationScore(education, job.Text),
		SoftSkills: scoring.SoftSkillsScore(resumeSoft, job.SoftSkills),
	}.Clamped()

	overall := scoring.Aggregate(scores, w)
	narrative := scoring.Narrate(overall, scores)

	return &Result{
		ID:               a.newID(),
		Overall:          overall,
		Category:         scoring.CategoryFor(overall),
		Scores:           scores,
		ResumeSkills:     resumeSkills,
		JobSkills:        job.Skills.Clone(),
		ResumeSoftSkills: resumeSoft,
		JobSoftSkills:    job.SoftSkills.Clone(),
		ResumeExperience: experience,
		ResumeEducation:  education,
		ResumeProfile:    profile,
		Strengths:        narrative.Strengths,
		Weaknesses:       narrative.Weaknesses,
		Recommendations:  narrative.Recommendations,
		Warnings:         warnings,
		Timestamp:        a.now(),
	}, nil
}
