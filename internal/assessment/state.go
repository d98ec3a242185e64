package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mindwell/portal-gateway/internal/models"
)

// Submission errors
var (
	ErrSubmitInFlight   = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrSubmitRejected   = errors.New("backend rejected submission")
)

// IncompleteError is returned when submit is attempted with unanswered
// questions. Index is the position of the first gap in presentation order.
type IncompleteError struct {
	Index          int
	QuestionNumber string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("question %s (index %d) is unanswered", e.QuestionNumber, e.Index)
}

// SubmitError wraps a failed backend submission. The attempt is left
// untouched so the user can retry.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return "submit failed: " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the user may resubmit
func (e *SubmitError) Retryable() bool {
	return true
}

// Submitter forwards completed answers to the backend
type Submitter interface {
	SubmitAnswers(ctx context.Context, slug string, req models.SubmitAnswersRequest) (bool, error)
}

// Attempt is one user's in-progress run through a test
type Attempt struct {
	ID        string
	UserID    string
	TestSlug  string
	Set       models.AssessmentSet
	CreatedAt time.Time
	ExpiresAt time.Time

	mu          sync.Mutex
	responses   models.UserResponses
	sent        models.UserResponses
	busy        bool
	submitted   bool
	submittedAt *time.Time
}

// NewAttempt creates an attempt over a loaded question set
func NewAttempt(id, userID, slug string, set models.AssessmentSet, now time.Time, ttl time.Duration) *Attempt {
	return &Attempt{
		ID:        id,
		UserID:    userID,
		TestSlug:  slug,
		Set:       set,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		responses: make(models.UserResponses),
	}
}

// SelectOption records the chosen value for a question, replacing any
// earlier choice. Answers are frozen while a submission is outstanding and
// once the backend accepted one.
func (a *Attempt) SelectOption(questionNumber, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return ErrAlreadySubmitted
	}
	if a.busy {
		return ErrSubmitInFlight
	}
	a.responses[questionNumber] = value
	return nil
}

// Responses returns a copy of the recorded answers
func (a *Attempt) Responses() models.UserResponses {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyResponses()
}

// SentAnswers returns the payload of the most recent submission, or nil
// when none was attempted
func (a *Attempt) SentAnswers() models.UserResponses {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sent == nil {
		return nil
	}
	out := make(models.UserResponses, len(a.sent))
	for k, v := range a.sent {
		out[k] = v
	}
	return out
}

// ProgressPercent returns the share of answered questions, 0 for an empty set
func (a *Attempt) ProgressPercent() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := len(a.Set.Questions)
	if total == 0 {
		return 0
	}
	return 100 * float64(a.answered()) / float64(total)
}

// IsComplete reports whether every question has an answer
func (a *Attempt) IsComplete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.answered() == len(a.Set.Questions)
}

// FirstUnanswered returns the index of the first unanswered question, or -1
func (a *Attempt) FirstUnanswered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.firstGap()
}

// Submitted reports whether the attempt was accepted by the backend
func (a *Attempt) Submitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitted
}

// Submit sends the answers when every question is answered. Only one
// submission may be outstanding at a time.
func (a *Attempt) Submit(ctx context.Context, s Submitter) error {
	a.mu.Lock()
	if a.submitted {
		a.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if a.busy {
		a.mu.Unlock()
		return ErrSubmitInFlight
	}
	if i := a.firstGap(); i >= 0 {
		a.mu.Unlock()
		return &IncompleteError{Index: i, QuestionNumber: a.Set.Questions[i].QuestionNumber}
	}
	a.busy = true
	req := models.SubmitAnswersRequest{
		UserID:   a.UserID,
		TestSlug: a.TestSlug,
		Answers:  a.answers(),
	}
	a.sent = req.Answers
	a.mu.Unlock()

	ok, err := s.SubmitAnswers(ctx, a.TestSlug, req)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.busy = false

	if err != nil {
		return &SubmitError{Err: err}
	}
	if !ok {
		return &SubmitError{Err: ErrSubmitRejected}
	}

	now := time.Now()
	a.submitted = true
	a.submittedAt = &now
	return nil
}

// View is a read-only snapshot of an attempt
type View struct {
	ID              string               `json:"id"`
	TestSlug        string               `json:"testSlug"`
	Set             models.AssessmentSet `json:"assessment"`
	Responses       models.UserResponses `json:"responses"`
	ProgressPercent float64              `json:"progressPercent"`
	Complete        bool                 `json:"complete"`
	FirstUnanswered int                  `json:"firstUnanswered"`
	Submitted       bool                 `json:"submitted"`
	SubmittedAt     *time.Time           `json:"submittedAt,omitempty"`
	ExpiresAt       time.Time            `json:"expiresAt"`
}

// Snapshot returns a consistent view of the attempt
func (a *Attempt) Snapshot() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := View{
		ID:              a.ID,
		TestSlug:        a.TestSlug,
		Set:             a.Set,
		Responses:       a.copyResponses(),
		Complete:        a.answered() == len(a.Set.Questions),
		FirstUnanswered: a.firstGap(),
		Submitted:       a.submitted,
		SubmittedAt:     a.submittedAt,
		ExpiresAt:       a.ExpiresAt,
	}
	if total := len(a.Set.Questions); total > 0 {
		v.ProgressPercent = 100 * float64(a.answered()) / float64(total)
	}
	return v
}

// answered counts responses to known questions. Callers hold mu.
func (a *Attempt) answered() int {
	n := 0
	for _, q := range a.Set.Questions {
		if _, ok := a.responses[q.QuestionNumber]; ok {
			n++
		}
	}
	return n
}

func (a *Attempt) firstGap() int {
	for i, q := range a.Set.Questions {
		if _, ok := a.responses[q.QuestionNumber]; !ok {
			return i
		}
	}
	return -1
}

// answers returns the responses to known questions only
func (a *Attempt) answers() models.UserResponses {
	out := make(models.UserResponses, len(a.Set.Questions))
	for _, q := range a.Set.Questions {
		if v, ok := a.responses[q.QuestionNumber]; ok {
			out[q.QuestionNumber] = v
		}
	}
	return out
}

func (a *Attempt) copyResponses() models.UserResponses {
	out := make(models.UserResponses, len(a.responses))
	for k, v := range a.responses {
		out[k] = v
	}
	return out
}
