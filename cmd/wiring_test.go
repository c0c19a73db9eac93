package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/report"
	"github.com/matchsense/matchsense/internal/scoring"
	"github.com/matchsense/matchsense/internal/similarity"
)

func TestResolveWeights(t *testing.T) {
	tests := []struct {
		name       string
		configured map[string]any
		overrides  []string
		normalize  bool
		want       scoring.Weights
		wantErr    bool
	}{
		{
			name: "defaults",
			want: scoring.DefaultWeights(),
		},
		{
			name:       "configured values replace defaults",
			configured: map[string]any{"semantic": 0.3, "skills": 0.4},
			want:       scoring.Weights{Semantic: 0.3, Skills: 0.4, Experience: 0.2, Education: 0.05, SoftSkills: 0.05},
		},
		{
			name:       "flags win over config",
			configured: map[string]any{"semantic": 0.3, "skills": 0.4},
			overrides:  []string{"semantic=0.4", " skills = 0.3 "},
			want:       scoring.DefaultWeights(),
		},
		{
			name:      "invalid sum rejected",
			overrides: []string{"semantic=0.9"},
			wantErr:   true,
		},
		{
			name:      "invalid sum normalized",
			overrides: []string{"semantic=1", "skills=1", "experience=0", "education=0", "soft_skills=0"},
			normalize: true,
			want:      scoring.Weights{Semantic: 0.5, Skills: 0.5},
		},
		{
			name:      "unknown factor",
			overrides: []string{"charisma=0.1"},
			wantErr:   true,
		},
		{
			name:      "malformed override",
			overrides: []string{"semantic"},
			wantErr:   true,
		},
		{
			name:      "not a number",
			overrides: []string{"semantic=high"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveWeights(tt.configured, tt.overrides, tt.normalize)
			if tt.wantErr {
				assert.ErrorIs(t, err, scoring.ErrInvalidWeights)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Semantic, got.Semantic, 1e-9)
			assert.InDelta(t, tt.want.Skills, got.Skills, 1e-9)
			assert.InDelta(t, tt.want.Experience, got.Experience, 1e-9)
			assert.InDelta(t, tt.want.Education, got.Education, 1e-9)
			assert.InDelta(t, tt.want.SoftSkills, got.SoftSkills, 1e-9)
		})
	}
}

func TestParseJobLevel(t *testing.T) {
	level, err := parseJobLevel("", "senior")
	require.NoError(t, err)
	assert.Equal(t, extract.Senior, level)

	level, err = parseJobLevel("pleno", "senior")
	require.NoError(t, err)
	assert.Equal(t, extract.Mid, level)

	_, err = parseJobLevel("wizard", "mid")
	assert.EqualError(t, err, `unknown job level "wizard"`)
}

func TestDecodeConfig(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
weights:
  semantic: 0.5
  skills: 0.2
job-level: senior
similarity:
  provider: Gemini
  timeout: 3s
  gemini:
    model: custom-embedding
batch:
  concurrency: 8
`)))

	config, err := decodeConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "senior", config.JobLevel)
	assert.Equal(t, "gemini", config.Similarity.Provider)
	assert.Equal(t, 3*time.Second, config.Similarity.Timeout)
	assert.Equal(t, "custom-embedding", config.Similarity.Gemini.Model)
	assert.Equal(t, 3, config.Similarity.Gemini.MaxRetries)
	assert.Equal(t, 8, config.Batch.Concurrency)
	assert.Equal(t, 10, config.Documents.MaxFileSizeMB)
	assert.EqualValues(t, 0.5, config.Weights["semantic"])

	weights, err := resolveWeights(config.Weights, nil, config.NormalizeWeights)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, weights.Skills, 1e-9)
}

func TestDecodeConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"provider":    "similarity:\n  provider: openai\n",
		"concurrency": "batch:\n  concurrency: 500\n",
		"retries":     "similarity:\n  gemini:\n    max-retries: -1\n",
	}

	for name, yaml := range tests {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.SetConfigType("yaml")
			require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

			_, err := decodeConfig(v)
			assert.ErrorContains(t, err, "validating config")
		})
	}
}

func TestBuildVocabulary(t *testing.T) {
	set, err := buildVocabulary(VocabularyConfig{})
	require.NoError(t, err)
	assert.Greater(t, set.Technical.Len(), 50)

	file := filepath.Join(t.TempDir(), "soft.txt")
	require.NoError(t, os.WriteFile(file, []byte("# soft skills\nempathy\nmentoring\n"), 0o600))

	set, err = buildVocabulary(VocabularyConfig{
		Technical:      []string{"Terraform", "Ansible"},
		SoftSkillsFile: file,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"terraform", "ansible"}, set.Technical.Entries())
	assert.Equal(t, []string{"empathy", "mentoring"}, set.Soft.Entries())

	_, err = buildVocabulary(VocabularyConfig{TechnicalFile: filepath.Join(t.TempDir(), "missing.txt")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewSimilarity(t *testing.T) {
	ctx := context.Background()

	sim, err := newSimilarity(ctx, SimilarityConfig{Provider: "lexical"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &similarity.Lexical{}, sim)

	sim, err = newSimilarity(ctx, SimilarityConfig{Provider: "none"}, zap.NewNop())
	require.NoError(t, err)
	_, err = sim.Similarity(ctx, "a", "b")
	assert.ErrorIs(t, err, similarity.ErrUnavailable)

	t.Setenv(geminiKeyEnv, "")
	_, err = newSimilarity(ctx, SimilarityConfig{Provider: "gemini"}, zap.NewNop())
	assert.ErrorContains(t, err, "gemini api key is not configured")

	_, err = newSimilarity(ctx, SimilarityConfig{Provider: "word2vec"}, zap.NewNop())
	assert.EqualError(t, err, "unsupported similarity provider: word2vec")
}

func TestCollectResumeFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "notes.md", "c.docx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o700))

	extra := filepath.Join(t.TempDir(), "legacy.doc")
	require.NoError(t, os.WriteFile(extra, []byte("x"), 0o600))

	files, err := collectResumeFiles([]string{dir, extra})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.docx"),
		extra,
	}, files)

	_, err = collectResumeFiles([]string{filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRanking(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRanking(&buf, []report.Record{
		{Filename: "maria.pdf", Overall: 82.5},
		{Filename: "broken.docx", Error: "zip: not a valid zip file"},
	}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], " 1. maria.pdf"))
	assert.True(t, strings.HasSuffix(lines[0], "82.5% (Excellent)"))
	assert.True(t, strings.HasSuffix(lines[1], "0.0% (Low)  [failed: zip: not a valid zip file]"))
}

func TestHandleAction(t *testing.T) {
	records := []report.Record{{Filename: "maria.pdf", Overall: 70}}

	assert.ErrorIs(t, handleAction(PromptExit, &bytes.Buffer{}, "job", records, zap.NewNop()), errExit)
	assert.EqualError(t, handleAction("dance", &bytes.Buffer{}, "job", records, zap.NewNop()), "invalid action: dance")

	var buf bytes.Buffer
	require.NoError(t, handleAction(PromptShowReport, &buf, "job.txt", records, zap.NewNop()))
	assert.Contains(t, buf.String(), "1. maria.pdf: 70.0% (Good)")
}

func TestRankCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(job, []byte("Senior Python developer with Django and Docker. Leadership."), 0o600))

	resumes := filepath.Join(dir, "resumes")
	require.NoError(t, os.Mkdir(resumes, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(resumes, "strong.txt"),
		[]byte("Senior Python developer, 9 years of experience with Django and Docker. Leadership."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(resumes, "weak.txt"),
		[]byte("Pastry chef, 2 years of experience."), 0o600))

	export := filepath.Join(dir, "out.json")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"rank", "--job", job, "--level", "senior", "--yes", "--export", "json", "--output", export, resumes})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "strong.txt")
	assert.Contains(t, lines[1], "weak.txt")

	file, err := os.Open(export)
	require.NoError(t, err)
	defer file.Close()
	records, err := report.ReadJSON(file)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "strong.txt", records[0].Filename)
	assert.Equal(t, extract.Senior, records[0].ResumeExperience.Level)
	assert.Greater(t, records[0].Overall, records[1].Overall)
}
