// Package assistant produces AI answer suggestions for forum questions.
// Answer never fails: any problem upstream turns into a canned reply.
package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/emilythestrangee/stackit/backend/internal/logging"
	"github.com/emilythestrangee/stackit/backend/internal/metrics"
)

const (
	FallbackModel  = "fallback"
	FallbackAnswer = "Sorry, an AI answer is not available right now. " +
		"Please try again later or wait for the community to respond."
)

var (
	errNotConfigured = errors.New("no completer configured")
	errRateLimited   = errors.New("rate limited")
	errEmptyAnswer   = errors.New("empty answer")
)

type Result struct {
	Answer       string  `json:"answer"`
	ModelUsed    string  `json:"model_used"`
	ResponseTime float64 `json:"response_time"`
}

type Options struct {
	// Completer may be nil, in which case every answer is the fallback.
	Completer     Completer
	Cache         *Cache
	Model         string
	Timeout       time.Duration
	RatePerMinute int
	Logger        *slog.Logger
}

type Assistant struct {
	completer Completer
	cache     *Cache
	model     string
	timeout   time.Duration
	limiter   *rate.Limiter
	group     singleflight.Group
	log       *slog.Logger
}

func New(opts Options) *Assistant {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), max(1, opts.RatePerMinute/6))
	}
	return &Assistant{
		completer: opts.Completer,
		cache:     opts.Cache,
		model:     opts.Model,
		timeout:   timeout,
		limiter:   limiter,
		log:       log,
	}
}

// Answer returns a suggestion for question together with how long it took.
func (a *Assistant) Answer(ctx context.Context, question string) Result {
	start := time.Now()
	key := cacheKey(question)

	if a.cache != nil {
		if hit, ok, err := a.cache.Get(key); err != nil {
			a.log.WarnContext(ctx, "ai cache read failed", "error", err)
		} else if ok {
			metrics.AIAnswersTotal.WithLabelValues("cache").Inc()
			return a.result(hit, a.model, start)
		}
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		return a.complete(ctx, question)
	})
	if err != nil {
		a.log.WarnContext(ctx, "ai answer fell back", "error", err, "request_id", logging.RequestID(ctx))
		metrics.AIAnswersTotal.WithLabelValues("fallback").Inc()
		return a.result(FallbackAnswer, FallbackModel, start)
	}

	answer := v.(string)
	if a.cache != nil {
		if err := a.cache.Put(key, answer); err != nil {
			a.log.WarnContext(ctx, "ai cache write failed", "error", err)
		}
	}
	metrics.AIAnswersTotal.WithLabelValues("model").Inc()
	return a.result(answer, a.model, start)
}

func (a *Assistant) complete(ctx context.Context, question string) (string, error) {
	if a.completer == nil {
		return "", errNotConfigured
	}
	if !a.limiter.Allow() {
		return "", errRateLimited
	}

	// The flight is shared by every waiting caller; only the timeout ends it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	answer, err := a.completer.Complete(ctx, question)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", errEmptyAnswer
	}
	return answer, nil
}

func (a *Assistant) result(answer, model string, start time.Time) Result {
	return Result{
		Answer:       answer,
		ModelUsed:    model,
		ResponseTime: time.Since(start).Seconds(),
	}
}

// cacheKey folds case and whitespace so trivially different phrasings of the
// same question share an entry.
func cacheKey(question string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	sum := sha256.Sum256([]byte(normalized))
	return "ai:answer:" + hex.EncodeToString(sum[:])
}
