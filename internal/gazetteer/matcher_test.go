package gazetteer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTechnical(t *testing.T) {
	t.Parallel()

	tech := DefaultSet().Technical

	tests := []struct {
		name string
		text string
		want SkillSet
	}{
		{
			name: "discovery order follows the text",
			text: "5 years of experience in Python, Django, React",
			want: SkillSet{"python", "django", "react"},
		},
		{
			name: "job description",
			text: "Python developer with Django and React experience",
			want: SkillSet{"python", "django", "react"},
		},
		{
			name: "short entries do not match inside words",
			text: "Django and JavaScript, GitHub Actions",
			want: SkillSet{"django", "javascript", "github"},
		},
		{
			name: "multi word and punctuated entries",
			text: "Built Node.js services on SQL Server with CI/CD and C++ tooling",
			want: SkillSet{"node.js", "sql server", "ci/cd", "c++"},
		},
		{
			name: "case insensitive and de-duplicated",
			text: "DOCKER, docker and Docker again",
			want: SkillSet{"docker"},
		},
		{
			name: "whitespace is collapsed before matching",
			text: "sql\n\tserver",
			want: SkillSet{"sql server"},
		},
		{
			name: "empty text",
			text: "   ",
			want: SkillSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Match(tt.text, tech))
		})
	}
}

func TestMatchSoftSkillsBilingual(t *testing.T) {
	t.Parallel()

	soft := DefaultSet().Soft
	got := Match("Strong LEADERSHIP, liderança e trabalho em equipe; problem solving", soft)

	assert.Equal(t, SkillSet{"leadership", "liderança", "trabalho em equipe", "problem solving"}, got)
}

func TestMatchDecomposedAccents(t *testing.T) {
	t.Parallel()

	soft := DefaultSet().Soft
	// "comunicação" written with combining marks.
	decomposed := "comunica\u0063\u0327\u0061\u0303o"

	assert.Equal(t, SkillSet{"comunicação"}, Match(decomposed, soft))
}

func TestMatchNilVocabulary(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Match("python", nil))
}

func TestSkillSetOperations(t *testing.T) {
	t.Parallel()

	resume := SkillSet{"python", "go", "docker", "aws"}
	job := SkillSet{"aws", "python", "kubernetes"}

	assert.Equal(t, SkillSet{"python", "aws"}, resume.Intersect(job))
	assert.Empty(t, resume.Intersect(nil))
	assert.True(t, resume.Contains("go"))
	assert.False(t, resume.Contains("rust"))
	assert.Equal(t, SkillSet{"python", "go"}, resume.Limit(2))
	assert.Equal(t, resume, resume.Limit(0))
	assert.Equal(t, resume, resume.Limit(10))
}

func TestNewVocabulary(t *testing.T) {
	t.Parallel()

	v, err := NewVocabulary("custom", []string{" Go ", "go", "", "Elixir", "  "})
	require.NoError(t, err)

	assert.Equal(t, "custom", v.Name())
	assert.Equal(t, []string{"go", "elixir"}, v.Entries())

	_, err = NewVocabulary("empty", []string{"", " "})
	assert.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	t.Parallel()

	input := "# languages\nElixir\n\nErlang\n  # indented comment\nelixir\n"
	v, err := LoadVocabulary("file", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"elixir", "erlang"}, v.Entries())
	assert.Equal(t, SkillSet{"erlang", "elixir"}, Match("Erlang and Elixir on the BEAM", v))
}

func TestDefaultVocabularySizes(t *testing.T) {
	t.Parallel()

	set := DefaultSet()
	assert.GreaterOrEqual(t, set.Technical.Len(), 80)
	assert.GreaterOrEqual(t, set.Soft.Len(), 25)
}
