package assessment

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/portal-gateway/internal/models"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []models.SubmitAnswersRequest
	ok      bool
	err     error
	release chan struct{}
}

func (f *fakeSubmitter) SubmitAnswers(_ context.Context, _ string, req models.SubmitAnswersRequest) (bool, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.ok, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func questionSet(n int) models.AssessmentSet {
	qs := make([]models.Question, n)
	for i := range qs {
		num := strconv.Itoa(i + 1)
		qs[i] = models.Question{
			QuestionNumber: num,
			QuestionText:   "Question " + num,
			Options:        []models.Option{{Value: "1", Text: "Yes"}, {Value: "0", Text: "No"}},
		}
	}
	return models.AssessmentSet{Pages: 1, Questions: qs}
}

func newTestAttempt(n int) *Attempt {
	return NewAttempt("a1", "u1", "happiness", questionSet(n), time.Now(), time.Hour)
}

func TestProgress(t *testing.T) {
	empty := newTestAttempt(0)
	assert.Equal(t, 0.0, empty.ProgressPercent())

	a := newTestAttempt(4)
	assert.Equal(t, 0.0, a.ProgressPercent())
	assert.Equal(t, 0, a.FirstUnanswered())

	a.SelectOption("1", "1")
	a.SelectOption("1", "0")
	assert.Equal(t, 25.0, a.ProgressPercent(), "reselecting does not double count")
	assert.Equal(t, "0", a.Responses()["1"])
	assert.Equal(t, 1, a.FirstUnanswered())

	a.SelectOption("99", "1")
	assert.Equal(t, 25.0, a.ProgressPercent(), "unknown questions do not count")

	for _, n := range []string{"2", "3", "4"} {
		a.SelectOption(n, "1")
	}
	assert.Equal(t, 100.0, a.ProgressPercent())
	assert.True(t, a.IsComplete())
	assert.Equal(t, -1, a.FirstUnanswered())
}

func TestSubmitIncompleteSkipsBackend(t *testing.T) {
	a := newTestAttempt(3)
	a.SelectOption("1", "1")
	a.SelectOption("3", "1")

	sub := &fakeSubmitter{ok: true}
	err := a.Submit(context.Background(), sub)

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 1, incomplete.Index)
	assert.Equal(t, "2", incomplete.QuestionNumber)
	assert.Equal(t, 0, sub.count())
}

func TestSubmitFailureIsRetryable(t *testing.T) {
	a := newTestAttempt(2)
	a.SelectOption("1", "1")
	a.SelectOption("2", "0")

	sub := &fakeSubmitter{err: errors.New("backend down")}
	err := a.Submit(context.Background(), sub)

	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.True(t, submitErr.Retryable())
	assert.False(t, a.Submitted())
	assert.Equal(t, 2, len(a.Responses()), "answers survive a failed submit")

	sub.err = nil
	sub.ok = false
	err = a.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrSubmitRejected)

	sub.ok = true
	require.NoError(t, a.Submit(context.Background(), sub))
	assert.True(t, a.Submitted())
	assert.Equal(t, 3, sub.count())

	assert.ErrorIs(t, a.Submit(context.Background(), sub), ErrAlreadySubmitted)
	assert.Equal(t, 3, sub.count())
}

func TestSubmitBusyFlag(t *testing.T) {
	a := newTestAttempt(1)
	a.SelectOption("1", "1")

	sub := &fakeSubmitter{ok: true, release: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- a.Submit(context.Background(), sub) }()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.busy
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, a.Submit(context.Background(), sub), ErrSubmitInFlight)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.count())
}

func TestSnapshot(t *testing.T) {
	a := newTestAttempt(2)
	a.SelectOption("2", "1")

	v := a.Snapshot()
	assert.Equal(t, 50.0, v.ProgressPercent)
	assert.False(t, v.Complete)
	assert.Equal(t, 0, v.FirstUnanswered)
	assert.Equal(t, "1", v.Responses["2"])
	assert.Nil(t, v.SubmittedAt)
}

func TestSelectFrozenDuringAndAfterSubmit(t *testing.T) {
	a := newTestAttempt(1)
	require.NoError(t, a.SelectOption("1", "1"))

	sub := &fakeSubmitter{ok: true, release: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- a.Submit(context.Background(), sub) }()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.busy
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, a.SelectOption("1", "0"), ErrSubmitInFlight)

	close(sub.release)
	require.NoError(t, <-done)

	assert.ErrorIs(t, a.SelectOption("1", "0"), ErrAlreadySubmitted)
	assert.Equal(t, "1", a.Responses()["1"])
	assert.Equal(t, models.UserResponses{"1": "1"}, sub.calls[0].Answers)
}

func TestSentAnswersSkipUnknownQuestions(t *testing.T) {
	a := newTestAttempt(2)
	assert.Nil(t, a.SentAnswers())

	require.NoError(t, a.SelectOption("1", "1"))
	require.NoError(t, a.SelectOption("2", "0"))
	require.NoError(t, a.SelectOption("99", "1"))

	require.NoError(t, a.Submit(context.Background(), &fakeSubmitter{ok: true}))
	assert.Equal(t, models.UserResponses{"1": "1", "2": "0"}, a.SentAnswers())
	assert.Equal(t, "1", a.Responses()["99"])
}
