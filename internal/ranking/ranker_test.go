package ranking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matchsense/matchsense/internal/engine"
	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/metrics"
	"github.com/matchsense/matchsense/internal/scoring"
	"github.com/matchsense/matchsense/internal/similarity"
)

// scriptedAnalyzer scores a resume with the number written in its text,
// fails on "fail" and panics on "panic".
type scriptedAnalyzer struct {
	delay   time.Duration
	started func()

	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
}

func (s *scriptedAnalyzer) PrepareJob(text string, level extract.Level) (*engine.Job, error) {
	if strings.TrimSpace(text) == "" {
		return nil, engine.ErrEmptyText
	}
	return &engine.Job{Text: text, Level: level}, nil
}

func (s *scriptedAnalyzer) AnalyzeJob(_ context.Context, _ *engine.Job, text string, _ *scoring.Weights) (*engine.Result, error) {
	s.calls.Add(1)
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		current := s.maxActive.Load()
		if n <= current || s.maxActive.CompareAndSwap(current, n) {
			break
		}
	}

	if s.started != nil {
		s.started()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	switch text {
	case "fail":
		return nil, errors.New("extraction failed")
	case "panic":
		panic("boom")
	}

	score, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return &engine.Result{ID: text, Overall: score}, nil
}

func resumes(texts ...string) []Resume {
	out := make([]Resume, len(texts))
	for i, text := range texts {
		out[i] = Resume{ID: "item" + strconv.Itoa(i+1), Filename: "cv" + strconv.Itoa(i+1) + ".txt", Text: text}
	}
	return out
}

func ids(b *Batch) []string {
	out := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.ID
	}
	return out
}

func TestRankStableDescending(t *testing.T) {
	r := New(&scriptedAnalyzer{}, zap.NewNop(), Options{Concurrency: 2})

	batch, err := r.Rank(context.Background(), resumes("30", "90", "90", "10"), "job", extract.Mid, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"item2", "item3", "item1", "item4"}, ids(batch))
	assert.Equal(t, []int{1, 2, 0, 3}, []int{
		batch.Entries[0].Index, batch.Entries[1].Index, batch.Entries[2].Index, batch.Entries[3].Index,
	})
	assert.Equal(t, Summary{Total: 4, Succeeded: 4, Duration: batch.Summary.Duration}, batch.Summary)
}

func TestRankStableTiesAcrossConcurrency(t *testing.T) {
	for _, concurrency := range []int{1, 3, 16} {
		texts := make([]string, 20)
		for i := range texts {
			texts[i] = "50"
		}
		texts[7] = "70"

		r := New(&scriptedAnalyzer{}, zap.NewNop(), Options{Concurrency: concurrency})
		batch, err := r.Rank(context.Background(), resumes(texts...), "job", extract.Mid, nil)
		require.NoError(t, err)

		assert.Equal(t, "item8", batch.Entries[0].ID)
		for i := 2; i < len(batch.Entries); i++ {
			assert.Less(t, batch.Entries[i-1].Index, batch.Entries[i].Index, "concurrency %d", concurrency)
		}
	}
}

func TestRankIsolatesFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(&scriptedAnalyzer{}, zap.New(core), Options{})

	batch, err := r.Rank(context.Background(), resumes("fail", "40", "panic", "60"), "job", extract.Mid, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"item4", "item2", "item1", "item3"}, ids(batch))

	failed := batch.Entries[2]
	assert.True(t, failed.Failed())
	assert.Nil(t, failed.Result)
	assert.Equal(t, 0.0, failed.Overall())
	assert.EqualError(t, failed.Err, "extraction failed")

	panicked := batch.Entries[3]
	assert.ErrorContains(t, panicked.Err, "analysis panicked: boom")

	assert.Equal(t, 2, batch.Summary.Failed)
	assert.Equal(t, 2, batch.Summary.Succeeded)

	assert.Equal(t, 1, logs.FilterMessage("resume analysis failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("resume analysis panicked").Len())
	assert.Equal(t, 1, logs.FilterField(zap.String("filename", "cv1.txt")).Len())
}

func TestRankRespectsConcurrencyLimit(t *testing.T) {
	a := &scriptedAnalyzer{delay: 5 * time.Millisecond}
	r := New(a, zap.NewNop(), Options{Concurrency: 3})

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}
	_, err := r.Rank(context.Background(), resumes(texts...), "job", extract.Mid, nil)
	require.NoError(t, err)

	assert.LessOrEqual(t, a.maxActive.Load(), int32(3))
	assert.Equal(t, int32(12), a.calls.Load())
}

func TestRankCancelledBeforeStart(t *testing.T) {
	a := &scriptedAnalyzer{}
	reg := metrics.New()
	r := New(a, zap.NewNop(), Options{Metrics: reg})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := r.Rank(ctx, resumes("10", "20"), "job", extract.Mid, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, batch)

	assert.Equal(t, int32(0), a.calls.Load())
	for _, e := range batch.Entries {
		assert.ErrorIs(t, e.Err, ErrNotStarted)
	}
	assert.Equal(t, 2, batch.Summary.NotStarted)

	expected := `
# HELP matchsense_batches_total Number of ranked batches by outcome.
# TYPE matchsense_batches_total counter
matchsense_batches_total{status="failed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg.Registry(), strings.NewReader(expected), "matchsense_batches_total"))
}

func TestRankStopsSchedulingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	a := &scriptedAnalyzer{started: func() { once.Do(cancel) }, delay: time.Millisecond}
	r := New(a, zap.NewNop(), Options{Concurrency: 1})

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = "50"
	}
	batch, err := r.Rank(ctx, resumes(texts...), "job", extract.Mid, nil)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, 9, batch.Summary.NotStarted)
	assert.Equal(t, "item1", batch.Entries[0].ID, "the started analysis completes and ranks first")
	assert.NoError(t, batch.Entries[0].Err)
}

func TestRankRejectsBadInput(t *testing.T) {
	r := New(&scriptedAnalyzer{}, zap.NewNop(), Options{})

	_, err := r.Rank(context.Background(), resumes("10"), "   ", extract.Mid, nil)
	assert.ErrorIs(t, err, engine.ErrEmptyText)

	bad := scoring.Weights{Semantic: 2}
	_, err = r.Rank(context.Background(), resumes("10"), "job", extract.Mid, &bad)
	assert.ErrorIs(t, err, scoring.ErrInvalidWeights)
}

func TestRankGeneratesMissingIDs(t *testing.T) {
	r := New(&scriptedAnalyzer{}, zap.NewNop(), Options{})

	batch, err := r.Rank(context.Background(), []Resume{{Text: "10"}, {Text: "20"}}, "job", extract.Mid, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.Entries[0].ID)
	assert.NotEqual(t, batch.Entries[0].ID, batch.Entries[1].ID)
}

func TestRankWithEngine(t *testing.T) {
	a, err := engine.New(similarity.NewLexical(), zap.NewNop(), engine.Config{})
	require.NoError(t, err)
	r := New(a, zap.NewNop(), Options{Concurrency: 2})

	batch, err := r.Rank(context.Background(), []Resume{
		{ID: "weak", Text: "Pastry chef with 2 years of experience"},
		{ID: "empty", Text: "   "},
		{ID: "strong", Text: "Senior Python developer, 8 years of experience with Django, React and Docker. Leadership."},
	}, "Senior Python developer with Django and React experience. Leadership required.", extract.Senior, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"strong", "weak", "empty"}, ids(batch))
	assert.ErrorIs(t, batch.Entries[2].Err, engine.ErrEmptyText)
	assert.Greater(t, batch.Entries[0].Overall(), batch.Entries[1].Overall())
}

func TestRankLoadsOnWorkers(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(&scriptedAnalyzer{}, zap.New(core), Options{Concurrency: 2})

	loadErr := errors.New("reading cv2.pdf: permission denied")
	batch, err := r.Rank(context.Background(), []Resume{
		{ID: "a", Filename: "cv1.txt", Load: func() (string, error) { return "75", nil }},
		{ID: "b", Filename: "cv2.pdf", Load: func() (string, error) { return "", loadErr }},
		{ID: "c", Filename: "cv3.txt", Text: "80"},
	}, "job", extract.Mid, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, ids(batch))
	assert.ErrorIs(t, batch.Entries[2].Err, loadErr)
	assert.Equal(t, 1, batch.Summary.Failed)
	assert.Equal(t, 1, logs.FilterMessage("loading resume failed").Len())
}
