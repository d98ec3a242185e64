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

type activeSet map[string]bool

func (s activeSet) IsActive(_ context.Context, slug string) bool {
	return s[slug]
}

type memoryLog struct {
	mu   sync.Mutex
	subs []*models.Submission
}

func (l *memoryLog) CreateSubmission(_ context.Context, sub *models.Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, sub)
	return nil
}

func happinessSource(n int) *fakeSource {
	raw := make([]models.RawQuestion, n)
	for i := range raw {
		num := strconv.Itoa(i + 1)
		raw[i] = models.RawQuestion{
			QuestionNumber: models.FlexString(num),
			QuestionText:   "How often do you feel content? (" + num + ")",
			Options: []models.RawOption{
				{Value: "1", Text: "Rarely"},
				{Value: "2", Text: "Sometimes"},
				{Value: "3", Text: "Often"},
			},
		}
	}
	return &fakeSource{pages: map[int]*models.QuestionPage{
		1: {Status: "success", TotalPages: 1, Questions: raw},
	}}
}

func TestHappinessEndToEnd(t *testing.T) {
	sub := &fakeSubmitter{ok: true}
	log := &memoryLog{}
	m := NewManager(NewNormalizer(happinessSource(10)), activeSet{"happiness": true}, sub, log, time.Hour)
	ctx := context.Background()

	a, err := m.Start(ctx, "u1", "happiness")
	require.NoError(t, err)
	require.Len(t, a.Set.Questions, 10)
	assert.Equal(t, 1, a.Set.Pages)

	for _, q := range a.Set.Questions {
		_, err := m.Select(a.ID, "u1", q.QuestionNumber, q.Options[2].Value)
		require.NoError(t, err)
	}
	assert.True(t, a.IsComplete())

	_, err = m.Submit(ctx, a.ID, "u1")
	require.NoError(t, err)

	require.Equal(t, 1, sub.count())
	req := sub.calls[0]
	assert.Equal(t, "u1", req.UserID)
	assert.Equal(t, "happiness", req.TestSlug)
	assert.Len(t, req.Answers, 10)
	for i := 1; i <= 10; i++ {
		assert.Equal(t, "3", req.Answers[strconv.Itoa(i)])
	}

	assert.True(t, a.Submitted())
	require.Len(t, log.subs, 1)
	assert.Equal(t, models.SubmissionAccepted, log.subs[0].Status)
	assert.Equal(t, a.ID, log.subs[0].AttemptID)
}

func TestStartRejections(t *testing.T) {
	m := NewManager(NewNormalizer(happinessSource(3)), activeSet{"happiness": true}, &fakeSubmitter{}, nil, time.Hour)
	ctx := context.Background()

	_, err := m.Start(ctx, "u1", "")
	assert.ErrorIs(t, err, ErrMissingSlug)

	_, err = m.Start(ctx, "u1", "made-up")
	var unknown *UnknownTestError
	assert.ErrorAs(t, err, &unknown)

	_, err = m.Start(ctx, "u1", "wbs")
	assert.ErrorIs(t, err, ErrTestInactive)

	empty := NewManager(NewNormalizer(&fakeSource{}), activeSet{"bdi": true}, &fakeSubmitter{}, nil, time.Hour)
	_, err = empty.Start(ctx, "u1", "bdi")
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestManagerOwnershipAndExpiry(t *testing.T) {
	m := NewManager(NewNormalizer(happinessSource(2)), nil, &fakeSubmitter{ok: true}, nil, time.Minute)
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	a, err := m.Start(context.Background(), "u1", "happiness")
	require.NoError(t, err)

	_, err = m.Get(a.ID, "u2")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = m.Get("missing", "u1")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	assert.Empty(t, m.Expired(now))
	now = now.Add(2 * time.Minute)
	assert.Equal(t, []string{a.ID}, m.Expired(now))

	_, err = m.Get(a.ID, "u1")
	assert.ErrorIs(t, err, ErrAttemptExpired)

	require.NoError(t, m.Delete(a.ID))
	assert.Equal(t, 0, m.Count())
	assert.ErrorIs(t, m.Delete(a.ID), ErrAttemptNotFound)
}

func TestManagerRecordsFailedSubmit(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("503")}
	log := &memoryLog{}
	m := NewManager(NewNormalizer(happinessSource(1)), nil, sub, log, time.Hour)
	ctx := context.Background()

	a, err := m.Start(ctx, "u1", "happiness")
	require.NoError(t, err)

	_, err = m.Submit(ctx, a.ID, "u1")
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Empty(t, log.subs, "incomplete submits are not logged")

	_, err = m.Select(a.ID, "u1", "1", "2")
	require.NoError(t, err)
	_, err = m.Select(a.ID, "u1", "42", "3")
	require.NoError(t, err)

	_, err = m.Submit(ctx, a.ID, "u1")
	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	require.Len(t, log.subs, 1)
	assert.Equal(t, models.SubmissionFailed, log.subs[0].Status)
	assert.Equal(t, "503", log.subs[0].StatusMessage)
	assert.Equal(t, models.UserResponses{"1": "2"}, log.subs[0].Answers, "the log holds what was sent")
}

func TestManagerSelectAfterSubmit(t *testing.T) {
	m := NewManager(NewNormalizer(happinessSource(1)), nil, &fakeSubmitter{ok: true}, nil, time.Hour)
	ctx := context.Background()

	a, err := m.Start(ctx, "u1", "happiness")
	require.NoError(t, err)
	_, err = m.Select(a.ID, "u1", "1", "2")
	require.NoError(t, err)
	_, err = m.Submit(ctx, a.ID, "u1")
	require.NoError(t, err)

	_, err = m.Select(a.ID, "u1", "1", "3")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, "2", a.Snapshot().Responses["1"])
}
