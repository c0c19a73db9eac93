// Package gemini provides a similarity.Service backed by Gemini text embeddings.
package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/matchsense/matchsense/internal/logger"
	"github.com/matchsense/matchsense/internal/similarity"
	"github.com/matchsense/matchsense/internal/utils"
)

const (
	ProviderName = "gemini"

	defaultModel        = "text-embedding-004"
	defaultMaxLogLength = 200
	defaultCacheSize    = 512
	taskType            = "SEMANTIC_SIMILARITY"

	retryBase     = 500 * time.Millisecond
	maxRetryDelay = 10 * time.Second
)

var wait = utils.WaitFor

type embedModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Config tunes the embedder.
type Config struct {
	Model             string
	MaxRetries        int
	RequestsPerSecond float64
	MaxLogLength      int
	CacheSize         int
}

// Embedder embeds texts with Gemini and compares them by cosine similarity.
// Embeddings are cached by content hash and concurrent requests for the same
// text share a single API call.
type Embedder struct {
	models     embedModels
	model      string
	maxRetries int
	maxLogLen  int
	limiter    *rate.Limiter
	logger     *zap.Logger

	group singleflight.Group

	cacheMu   sync.RWMutex
	cache     map[string][]float64
	order     []string
	cacheSize int
}

// NewEmbedder creates an Embedder using the Gemini API backend.
func NewEmbedder(ctx context.Context, apiKey string, cfg Config, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, cfg, log), nil
}

func newEmbedder(models embedModels, cfg Config, log *zap.Logger) *Embedder {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Embedder{
		models:     models,
		model:      model,
		maxRetries: cfg.MaxRetries,
		maxLogLen:  cfg.MaxLogLength,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.WithFields(log, logger.ProviderFields(ProviderName, model)...),
		cache:      make(map[string][]float64),
		cacheSize:  cfg.CacheSize,
	}
}

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

// Similarity embeds both texts and returns their cosine similarity.
func (e *Embedder) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := e.Embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := e.Embed(ctx, b)
	if err != nil {
		return 0, err
	}
	return similarity.Cosine(va, vb), nil
}

// Embed returns the embedding of text, from cache when possible.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if e == nil || e.models == nil {
		return nil, fmt.Errorf("%w: gemini embedder is not initialized", similarity.ErrUnavailable)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text to embed must not be empty")
	}

	key := hashText(text)
	if cached, ok := e.cached(key); ok {
		return cached, nil
	}

	v, err, shared := e.group.Do(key, func() (any, error) {
		if cached, ok := e.cached(key); ok {
			return cached, nil
		}

		values, err := e.embedWithRetry(ctx, text)
		if err != nil {
			return nil, err
		}
		e.store(key, values)
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.logger.Debug("gemini embedding shared with concurrent request")
	}

	return v.([]float64), nil
}

func (e *Embedder) embedWithRetry(ctx context.Context, text string) ([]float64, error) {
	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		e.logger.Debug("gemini embed request",
			zap.Int("attempt", attempt),
			zap.Int("text_length", len([]rune(text))),
			zap.String("text_preview", utils.TruncateForLog(text, e.maxLogLen)),
		)

		values, err := e.embed(ctx, text)
		if err == nil {
			return values, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == e.maxRetries {
			break
		}

		e.logger.Warn("gemini embed request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: gemini embed: %v", similarity.ErrUnavailable, lastErr)
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{TaskType: taskType})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	raw := resp.Embeddings[0].Values
	values := make([]float64, len(raw))
	for i, v := range raw {
		values[i] = float64(v)
	}
	return values, nil
}

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// retryDelay decides whether err is worth another attempt and how long to
// wait. Quota errors asking for a longer pause than maxRetryDelay are final.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if m := retryAfterPattern.FindStringSubmatch(apiErr.Message); m != nil {
			seconds, parseErr := strconv.ParseFloat(m[1], 64)
			if parseErr == nil {
				delay := time.Duration(seconds * float64(time.Second))
				if delay > maxRetryDelay {
					return 0, false
				}
				return delay, true
			}
		}
		return utils.Backoff(attempt, retryBase, maxRetryDelay), true
	case apiErr.Code >= http.StatusInternalServerError:
		return utils.Backoff(attempt, retryBase, maxRetryDelay), true
	default:
		return 0, false
	}
}

func (e *Embedder) cached(key string) ([]float64, bool) {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()
	v, ok := e.cache[key]
	return v, ok
}

// store inserts an embedding, evicting the oldest entry when full.
func (e *Embedder) store(key string, values []float64) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if _, ok := e.cache[key]; ok {
		return
	}
	if len(e.order) >= e.cacheSize {
		oldest := e.order[0]
		e.order = e.order[1:]
		delete(e.cache, oldest)
	}
	e.cache[key] = values
	e.order = append(e.order, key)
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
