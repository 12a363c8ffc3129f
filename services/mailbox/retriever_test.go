package mailbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource scripts the mailbox contents per poll.
type fakeSource struct {
	polls    int
	perPoll  [][]Message
	fallback []Message
	err      error
}

func (f *fakeSource) RecentMessages(ctx context.Context, since time.Time) ([]Message, error) {
	f.polls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.perPoll) >= f.polls {
		return f.perPoll[f.polls-1], nil
	}
	return f.fallback, nil
}

func newTestRetriever(source MessageSource) *DefaultCodeRetriever {
	return NewDefaultCodeRetriever(source, "인증", 10*time.Minute, nil, zap.NewNop())
}

func TestFetchCode_FindsNewestMatchingMessage(t *testing.T) {
	now := time.Now()
	source := &fakeSource{fallback: []Message{
		{Subject: "[미디어센터] 인증 안내", Date: now.Add(-8 * time.Minute), Body: "인증코드: 111111"},
		{Subject: "[미디어센터] 인증 안내", Date: now.Add(-1 * time.Minute), Body: "인증코드: 822436"},
	}}

	result, err := newTestRetriever(source).FetchCode(context.Background())
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, "822436", result.Code)
	assert.WithinDuration(t, now.Add(-1*time.Minute), result.SourceTimestamp, time.Second)
}

func TestFetchCode_IgnoresWrongSubjectAndStaleMessages(t *testing.T) {
	now := time.Now()
	source := &fakeSource{fallback: []Message{
		// Right body, wrong subject.
		{Subject: "주간 소식지", Date: now.Add(-2 * time.Minute), Body: "인증코드: 999999"},
		// Right subject, too old.
		{Subject: "인증 안내", Date: now.Add(-45 * time.Minute), Body: "인증코드: 888888"},
	}}

	result, err := newTestRetriever(source).FetchCode(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, result.Code)
}

func TestWaitForCode_SucceedsOnThirdPoll(t *testing.T) {
	now := time.Now()
	hit := []Message{{Subject: "인증 안내", Date: now, Body: "인증코드: 654321"}}
	source := &fakeSource{perPoll: [][]Message{nil, nil, hit}}

	start := time.Now()
	code, err := newTestRetriever(source).WaitForCode(context.Background(), 900*time.Millisecond, 300*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "654321", code)
	assert.Equal(t, 3, source.polls)
	// Two sleeps of the poll interval before the third attempt.
	assert.GreaterOrEqual(t, elapsed, 600*time.Millisecond)
}

func TestWaitForCode_TimesOut(t *testing.T) {
	source := &fakeSource{}

	code, err := newTestRetriever(source).WaitForCode(context.Background(), 250*time.Millisecond, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, code)
	assert.GreaterOrEqual(t, source.polls, 2)
}

func TestWaitForCode_HonorsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	_, err := newTestRetriever(&fakeSource{}).WaitForCode(ctx, 5*time.Second, 100*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
}

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestFetchCode_ServesCachedCodeWithoutMailboxHit(t *testing.T) {
	now := time.Now()
	source := &fakeSource{fallback: []Message{
		{Subject: "인증 안내", Date: now.Add(-2 * time.Minute), Body: "인증코드: 822436"},
	}}
	retriever := NewDefaultCodeRetriever(source, "인증", 10*time.Minute, newTestCache(t), zap.NewNop())

	first, err := retriever.FetchCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "822436", first.Code)
	assert.Equal(t, 1, source.polls)

	second, err := retriever.FetchCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "822436", second.Code)
	assert.Equal(t, 1, source.polls, "cached one-shot lookup must not reach the mailbox")
}

func TestWaitForCode_PrefersFreshCodeOverCachedOne(t *testing.T) {
	now := time.Now()
	source := &fakeSource{fallback: []Message{
		{Subject: "인증 안내", Date: now.Add(-5 * time.Minute), Body: "인증코드: 111111"},
	}}
	retriever := NewDefaultCodeRetriever(source, "인증", 10*time.Minute, newTestCache(t), zap.NewNop())

	first, err := retriever.FetchCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111111", first.Code)

	// A new login challenge mails a fresh code while the old one is still
	// inside the freshness window.
	source.fallback = append(source.fallback,
		Message{Subject: "인증 안내", Date: now, Body: "인증코드: 222222"})

	code, err := retriever.WaitForCode(context.Background(), 500*time.Millisecond, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
}

func TestWaitForCode_KeepsPollingThroughSourceErrors(t *testing.T) {
	source := &fakeSource{err: errors.New("imap connection reset")}

	_, err := newTestRetriever(source).WaitForCode(context.Background(), 250*time.Millisecond, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, source.polls, 2)
}
