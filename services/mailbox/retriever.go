package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrTimeout is returned when the wait budget elapses with no code found.
var ErrTimeout = errors.New("timed out waiting for verification code")

// codeCacheKey holds the most recently extracted code so the one-shot
// endpoint doesn't hit IMAP for every call. Polling always bypasses it: a
// fresh challenge sends a new email, and a stale cached code would be
// submitted and rejected.
const codeCacheKey = "verification:code"

// Message is one mailbox message, already decoded to text.
type Message struct {
	Subject string
	Date    time.Time
	Body    string
}

// MessageSource lists recent mailbox messages. The IMAP implementation is
// kept behind this seam so the filtering and extraction logic is testable
// without a mail server.
type MessageSource interface {
	RecentMessages(ctx context.Context, since time.Time) ([]Message, error)
}

// CodeResult is the outcome of one code lookup.
type CodeResult struct {
	Found           bool      `json:"found"`
	Code            string    `json:"code,omitempty"`
	SourceTimestamp time.Time `json:"sourceTimestamp,omitempty"`
}

// CodeRetriever finds the portal's emailed one-time verification code.
type CodeRetriever interface {
	FetchCode(ctx context.Context) (*CodeResult, error)
	WaitForCode(ctx context.Context, timeout, interval time.Duration) (string, error)
}

// DefaultCodeRetriever is the production implementation.
type DefaultCodeRetriever struct {
	source         MessageSource
	subjectKeyword string
	maxAge         time.Duration
	cache          *redis.Client // optional; nil disables caching
	logger         *zap.Logger
}

func NewDefaultCodeRetriever(source MessageSource, subjectKeyword string, maxAge time.Duration, cache *redis.Client, logger *zap.Logger) *DefaultCodeRetriever {
	return &DefaultCodeRetriever{
		source:         source,
		subjectKeyword: subjectKeyword,
		maxAge:         maxAge,
		cache:          cache,
		logger:         logger,
	}
}

// FetchCode returns the cached code when one is still inside the freshness
// window, otherwise searches the mailbox.
func (r *DefaultCodeRetriever) FetchCode(ctx context.Context) (*CodeResult, error) {
	if cached := r.cachedCode(ctx); cached != nil {
		return cached, nil
	}
	return r.fetchFresh(ctx)
}

// fetchFresh searches the mailbox for a verification message newer than the
// bounded window and extracts the 6-digit code from its body. Newest
// matching message wins.
func (r *DefaultCodeRetriever) fetchFresh(ctx context.Context) (*CodeResult, error) {
	since := time.Now().Add(-r.maxAge)
	messages, err := r.source.RecentMessages(ctx, since)
	if err != nil {
		return nil, err
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Date.After(messages[j].Date)
	})

	for _, msg := range messages {
		if msg.Date.Before(since) {
			continue
		}
		if !strings.Contains(msg.Subject, r.subjectKeyword) {
			continue
		}
		code, ok := extractCode(msg.Body)
		if !ok {
			continue
		}
		result := &CodeResult{Found: true, Code: code, SourceTimestamp: msg.Date}
		r.cacheCode(ctx, result)
		return result, nil
	}

	return &CodeResult{Found: false}, nil
}

// WaitForCode repeatedly searches the mailbox until a code arrives or the
// timeout elapses, sleeping interval between attempts. Every poll goes to
// the mailbox directly so a newer code always wins over a previously cached
// one. The wait suspends only the caller; transient mailbox errors are
// logged and polling continues.
func (r *DefaultCodeRetriever) WaitForCode(ctx context.Context, timeout, interval time.Duration) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		result, err := r.fetchFresh(waitCtx)
		if err != nil {
			r.logger.Warn("verification code poll failed, retrying", zap.Error(err))
		} else if result.Found {
			return result.Code, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", ErrTimeout
		case <-time.After(interval):
		}
	}
}

func (r *DefaultCodeRetriever) cachedCode(ctx context.Context) *CodeResult {
	if r.cache == nil {
		return nil
	}
	data, err := r.cache.Get(ctx, codeCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("verification code cache read failed", zap.Error(err))
		}
		return nil
	}
	var result CodeResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil
	}
	if time.Since(result.SourceTimestamp) > r.maxAge {
		return nil
	}
	return &result
}

func (r *DefaultCodeRetriever) cacheCode(ctx context.Context, result *CodeResult) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, codeCacheKey, data, r.maxAge).Err(); err != nil {
		r.logger.Warn("verification code cache write failed", zap.Error(err))
	}
}
