package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/portal-gateway/internal/models"
)

// Manager errors
var (
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrAttemptExpired  = errors.New("attempt has expired")
	ErrTestInactive    = errors.New("test is not active")
	ErrNoQuestions     = errors.New("test has no questions")
	ErrMissingSlug     = errors.New("test slug is required")
	ErrNotOwner        = errors.New("attempt belongs to another user")
)

// QuestionLoader produces the question set of a test. It never fails.
type QuestionLoader interface {
	GetQuestions(ctx context.Context, slug string) models.AssessmentSet
}

// ActiveTests reports whether a test is in the active list
type ActiveTests interface {
	IsActive(ctx context.Context, slug string) bool
}

// SubmissionLog records every submit outcome
type SubmissionLog interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
}

// Manager holds in-progress attempts in memory
type Manager struct {
	loader    QuestionLoader
	active    ActiveTests
	submitter Submitter
	log       SubmissionLog
	ttl       time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	attempts map[string]*Attempt
}

// NewManager creates a new attempt Manager. log may be nil.
func NewManager(loader QuestionLoader, active ActiveTests, submitter Submitter, log SubmissionLog, ttl time.Duration) *Manager {
	return &Manager{
		loader:    loader,
		active:    active,
		submitter: submitter,
		log:       log,
		ttl:       ttl,
		now:       time.Now,
		attempts:  make(map[string]*Attempt),
	}
}

// Start opens a new attempt for userID on the given test
func (m *Manager) Start(ctx context.Context, userID, slug string) (*Attempt, error) {
	if slug == "" {
		return nil, ErrMissingSlug
	}
	if _, err := FamilyOf(slug); err != nil {
		return nil, err
	}
	if m.active != nil && !m.active.IsActive(ctx, slug) {
		return nil, ErrTestInactive
	}

	set := m.loader.GetQuestions(ctx, slug)
	if len(set.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	a := NewAttempt(uuid.New().String(), userID, slug, set, m.now(), m.ttl)

	m.mu.Lock()
	m.attempts[a.ID] = a
	m.mu.Unlock()

	slog.Info("attempt started", "attempt_id", a.ID, "slug", slug, "questions", len(set.Questions))
	return a, nil
}

// Get returns an attempt owned by userID
func (m *Manager) Get(id, userID string) (*Attempt, error) {
	m.mu.RLock()
	a, ok := m.attempts[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrAttemptNotFound
	}
	if a.UserID != userID {
		return nil, ErrNotOwner
	}
	if !m.now().Before(a.ExpiresAt) {
		return nil, ErrAttemptExpired
	}
	return a, nil
}

// Select records an answer on an attempt
func (m *Manager) Select(id, userID, questionNumber, value string) (*Attempt, error) {
	a, err := m.Get(id, userID)
	if err != nil {
		return nil, err
	}
	if err := a.SelectOption(questionNumber, value); err != nil {
		return nil, err
	}
	return a, nil
}

// Submit forwards a complete attempt to the backend. Incomplete attempts
// and overlapping submits never reach the backend or the submission log.
func (m *Manager) Submit(ctx context.Context, id, userID string) (*Attempt, error) {
	a, err := m.Get(id, userID)
	if err != nil {
		return nil, err
	}

	err = a.Submit(ctx, m.submitter)

	var submitErr *SubmitError
	switch {
	case err == nil:
		m.record(ctx, a, models.SubmissionAccepted, "")
		slog.Info("attempt submitted", "attempt_id", a.ID, "slug", a.TestSlug)
	case errors.As(err, &submitErr):
		m.record(ctx, a, models.SubmissionFailed, submitErr.Err.Error())
		slog.Warn("attempt submit failed", "attempt_id", a.ID, "slug", a.TestSlug, "error", submitErr.Err)
	}
	return a, err
}

// Expired returns the ids of attempts that expired before now
func (m *Manager) Expired(now time.Time) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, a := range m.attempts {
		if !now.Before(a.ExpiresAt) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Delete discards an attempt
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attempts[id]; !ok {
		return ErrAttemptNotFound
	}
	delete(m.attempts, id)
	return nil
}

// Count returns the number of attempts held
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attempts)
}

func (m *Manager) record(ctx context.Context, a *Attempt, status models.SubmissionStatus, msg string) {
	if m.log == nil {
		return
	}

	sub := &models.Submission{
		ID:            uuid.New().String(),
		AttemptID:     a.ID,
		UserID:        a.UserID,
		TestSlug:      a.TestSlug,
		Answers:       a.SentAnswers(),
		Status:        status,
		StatusMessage: msg,
		CreatedAt:     m.now(),
	}
	if err := m.log.CreateSubmission(ctx, sub); err != nil {
		slog.Error("failed to record submission", "attempt_id", a.ID, "error", fmt.Errorf("submission log: %w", err))
	}
}
