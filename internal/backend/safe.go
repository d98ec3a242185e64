// Package backend wraps the PHP backend client with the portal's uniform
// read contract: failures are logged and replaced by an empty value.
package backend

import (
	"context"
	"log/slog"

	"github.com/mindwell/portal-gateway/internal/models"
)

// API is the subset of the backend client used through Safe
type API interface {
	GetCallSessions(ctx context.Context, userID string) ([]models.CallSession, error)
	GetChatSessions(ctx context.Context, userID string) ([]models.ChatSession, error)
	GetCounsellingSessions(ctx context.Context, userID string) ([]models.VideoSession, error)
	GetUserAppointments(ctx context.Context, userID string) ([]models.Appointment, error)
	GetMessages(ctx context.Context, chatSessionID string, limit int) (*models.MessagePage, error)
	GetCounsellors(ctx context.Context) ([]models.Counsellor, error)
	GetCounsellorSchedule(ctx context.Context, counsellorID string) ([]models.ScheduleSlot, error)
	GetCounsellorDetails(ctx context.Context, counsellorID string) (*models.CounsellorDetails, error)
	GetFilters(ctx context.Context) (*models.FilterValues, error)
	GetAllTests(ctx context.Context) ([]models.Test, error)
	BookTest(ctx context.Context, req models.BookTestRequest) (bool, error)
}

// Safe never returns an error
type Safe struct {
	api API
}

// NewSafe creates a Safe over api
func NewSafe(api API) *Safe {
	return &Safe{api: api}
}

// GetCallSessions returns the user's call sessions, or none
func (s *Safe) GetCallSessions(ctx context.Context, userID string) []models.CallSession {
	out, err := s.api.GetCallSessions(ctx, userID)
	return orEmpty(out, err, "get_call_sessions")
}

// GetChatSessions returns the user's chat sessions, or none
func (s *Safe) GetChatSessions(ctx context.Context, userID string) []models.ChatSession {
	out, err := s.api.GetChatSessions(ctx, userID)
	return orEmpty(out, err, "get_chat_sessions")
}

// GetCounsellingSessions returns the user's video sessions, or none
func (s *Safe) GetCounsellingSessions(ctx context.Context, userID string) []models.VideoSession {
	out, err := s.api.GetCounsellingSessions(ctx, userID)
	return orEmpty(out, err, "get_counselling_sessions")
}

// GetUserAppointments returns the user's appointments, or none
func (s *Safe) GetUserAppointments(ctx context.Context, userID string) []models.Appointment {
	out, err := s.api.GetUserAppointments(ctx, userID)
	return orEmpty(out, err, "get_user_appointments")
}

// GetMessages returns a chat page, or an empty page
func (s *Safe) GetMessages(ctx context.Context, chatSessionID string, limit int) models.MessagePage {
	page, err := s.api.GetMessages(ctx, chatSessionID, limit)
	if err != nil || page == nil {
		logFailure("get_messages", err)
		return models.MessagePage{Messages: []models.ChatMessage{}}
	}
	if page.Messages == nil {
		page.Messages = []models.ChatMessage{}
	}
	return *page
}

// GetCounsellors returns every counsellor, or none
func (s *Safe) GetCounsellors(ctx context.Context) []models.Counsellor {
	out, err := s.api.GetCounsellors(ctx)
	return orEmpty(out, err, "get_counsellors")
}

// GetCounsellorSchedule returns a counsellor's slots, or none
func (s *Safe) GetCounsellorSchedule(ctx context.Context, counsellorID string) []models.ScheduleSlot {
	out, err := s.api.GetCounsellorSchedule(ctx, counsellorID)
	return orEmpty(out, err, "get_counsellor_schedule")
}

// GetCounsellorDetails returns a counsellor profile, or nil
func (s *Safe) GetCounsellorDetails(ctx context.Context, counsellorID string) *models.CounsellorDetails {
	out, err := s.api.GetCounsellorDetails(ctx, counsellorID)
	if err != nil {
		logFailure("get_counsellor_details", err)
		return nil
	}
	return out
}

// GetFilters returns the filter values, or zero values
func (s *Safe) GetFilters(ctx context.Context) models.FilterValues {
	out, err := s.api.GetFilters(ctx)
	if err != nil || out == nil {
		logFailure("get_filters", err)
		return models.FilterValues{}
	}
	return *out
}

// GetAllTests returns every test, or none
func (s *Safe) GetAllTests(ctx context.Context) []models.Test {
	out, err := s.api.GetAllTests(ctx)
	return orEmpty(out, err, "get_all_tests")
}

// BookTest books a test, reporting false on any failure
func (s *Safe) BookTest(ctx context.Context, req models.BookTestRequest) bool {
	ok, err := s.api.BookTest(ctx, req)
	if err != nil {
		logFailure("book_test", err)
		return false
	}
	return ok
}

func orEmpty[T any](out []T, err error, endpoint string) []T {
	if err != nil {
		logFailure(endpoint, err)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

func logFailure(endpoint string, err error) {
	if err == nil {
		slog.Warn("backend returned no payload", "endpoint", endpoint)
		return
	}
	slog.Error("backend call failed", "endpoint", endpoint, "error", err)
}
