package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/portal-gateway/internal/models"
)

type fakeMessages struct {
	mu      sync.Mutex
	limits  []int
	hasMore bool
	err     error
	sent    []models.SendMessageRequest
}

func (f *fakeMessages) GetMessages(_ context.Context, _ string, limit int) (*models.MessagePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return &models.MessagePage{
		Messages: []models.ChatMessage{{ID: "1", SenderID: "9", Message: "hello"}},
		HasMore:  models.FlexBool(f.hasMore),
	}, nil
}

func (f *fakeMessages) SendMessage(_ context.Context, req models.SendMessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return f.err
}

func (f *fakeMessages) seenLimits() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.limits...)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

var activeNow = time.Date(2026, 10, 19, 14, 10, 0, 0, time.UTC)

func activeRef() models.SessionRef {
	return models.SessionRef{ChatID: "42", StartHour: 14}
}

func TestPollerPollsAndCountsDown(t *testing.T) {
	src := &fakeMessages{}
	now := activeNow
	p := NewPoller(src, activeRef(),
		WithPollInterval(10*time.Millisecond),
		WithTickInterval(5*time.Millisecond),
		WithClock(func() time.Time { return now }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	rec := &recorder{}
	require.NoError(t, p.Run(ctx, rec.emit))

	assert.GreaterOrEqual(t, len(src.seenLimits()), 3)
	assert.Equal(t, 1, rec.count(EventMessages), "unchanged pages are not re-emitted")
	assert.Greater(t, rec.count(EventCountdown), 1)
	assert.Equal(t, 0, rec.count(EventEnded))
}

func TestPollerStopsWhenEnded(t *testing.T) {
	src := &fakeMessages{}
	start := time.Date(2026, 10, 19, 14, 44, 59, 0, time.UTC)

	var mu sync.Mutex
	now := start
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	p := NewPoller(src, models.SessionRef{ChatID: "42", StartHour: 14},
		WithPollInterval(time.Hour),
		WithTickInterval(5*time.Millisecond),
		WithClock(clock),
	)

	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background(), rec.emit) }()

	require.Eventually(t, func() bool { return rec.count(EventCountdown) > 0 }, time.Second, time.Millisecond)
	mu.Lock()
	now = start.Add(2 * time.Second)
	mu.Unlock()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after the session ended")
	}
	assert.Equal(t, 1, rec.count(EventEnded))
	assert.Len(t, src.seenLimits(), 1)
}

func TestPollerEndedBeforeStart(t *testing.T) {
	src := &fakeMessages{}
	now := time.Date(2026, 10, 19, 16, 0, 0, 0, time.UTC)
	p := NewPoller(src, models.SessionRef{ChatID: "42", StartHour: 14}, WithClock(func() time.Time { return now }))

	rec := &recorder{}
	require.NoError(t, p.Run(context.Background(), rec.emit))
	assert.Equal(t, 1, rec.count(EventEnded))
	assert.Empty(t, src.seenLimits(), "an ended session is never polled")
}

func TestPollerLoadMore(t *testing.T) {
	src := &fakeMessages{hasMore: true}
	now := activeNow
	p := NewPoller(src, activeRef(),
		WithPollInterval(time.Hour),
		WithTickInterval(time.Hour),
		WithPageSize(20),
		WithClock(func() time.Time { return now }),
	)

	assert.False(t, p.LoadMore(), "nothing fetched yet")

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, rec.emit) }()

	require.Eventually(t, func() bool { return rec.count(EventMessages) == 1 }, time.Second, time.Millisecond)
	require.True(t, p.LoadMore())
	require.Eventually(t, func() bool { return len(src.seenLimits()) == 2 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []int{20, 40}, src.seenLimits())
	assert.Equal(t, 40, p.Limit())
	assert.Equal(t, 2, rec.count(EventMessages), "a grown page is emitted again")
}

func TestPollerReportsFetchErrors(t *testing.T) {
	src := &fakeMessages{err: errors.New("timeout")}
	now := activeNow
	p := NewPoller(src, activeRef(),
		WithPollInterval(time.Hour),
		WithTickInterval(time.Hour),
		WithClock(func() time.Time { return now }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rec := &recorder{}
	require.NoError(t, p.Run(ctx, rec.emit))
	assert.Equal(t, 1, rec.count(EventError))
}

func TestPollerStopsOnEmitFailure(t *testing.T) {
	src := &fakeMessages{}
	now := activeNow
	p := NewPoller(src, activeRef(), WithClock(func() time.Time { return now }))

	closed := errors.New("connection closed")
	err := p.Run(context.Background(), func(Event) error { return closed })
	assert.ErrorIs(t, err, closed)
}

func TestSender(t *testing.T) {
	sink := &fakeMessages{}
	s := NewSender(sink)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC) }
	ref := models.SessionRef{ChatID: "42", StartHour: 14}

	require.NoError(t, s.Send(context.Background(), ref, "u1", "hi"))
	assert.ErrorIs(t, s.Send(context.Background(), ref, "u1", "   "), ErrEmptyMessage)

	s.now = func() time.Time { return time.Date(2026, 10, 19, 14, 46, 0, 0, time.UTC) }
	assert.ErrorIs(t, s.Send(context.Background(), ref, "u1", "late"), ErrSessionEnded)

	require.Len(t, sink.sent, 1)
	assert.Equal(t, models.SendMessageRequest{ChatSessionID: "42", SenderID: "u1", Message: "hi"}, sink.sent[0])
}
