package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mindwell/portal-gateway/internal/models"
)

// Assessments

// GetQuestionsPage fetches one page of a test's questions
func (c *Client) GetQuestionsPage(ctx context.Context, slug string, page int) (*models.QuestionPage, error) {
	query := url.Values{}
	query.Set("test_slug", slug)
	query.Set("page", strconv.Itoa(page))

	resp, err := c.doRequest(ctx, http.MethodGet, slug+"/a_get_questions.php", query, nil, "")
	if err != nil {
		return nil, err
	}

	// The page envelope is decoded whole; only the error check of unwrap applies
	if _, err := unwrap(resp); err != nil {
		return nil, err
	}

	var result models.QuestionPage
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// SubmitAnswers forwards a completed assessment
func (c *Client) SubmitAnswers(ctx context.Context, slug string, req models.SubmitAnswersRequest) (bool, error) {
	resp, err := c.postJSON(ctx, slug+"/b_submit_answers.php", req)
	if err != nil {
		return false, err
	}
	return decodeSuccess(resp)
}

// Sessions

// GetCallSessions lists a user's call sessions
func (c *Client) GetCallSessions(ctx context.Context, userID string) ([]models.CallSession, error) {
	var out []models.CallSession
	if err := c.getJSON(ctx, "user/get_call_sessions.php", userQuery(userID), &out, "sessions"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetChatSessions lists a user's chat sessions
func (c *Client) GetChatSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	var out []models.ChatSession
	if err := c.getJSON(ctx, "user/get_chat_sessions.php", userQuery(userID), &out, "sessions"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCounsellingSessions lists a user's video counselling sessions
func (c *Client) GetCounsellingSessions(ctx context.Context, userID string) ([]models.VideoSession, error) {
	var out []models.VideoSession
	if err := c.getJSON(ctx, "user/get_counselling_sessions.php", userQuery(userID), &out, "sessions"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserAppointments lists a user's in-person appointments
func (c *Client) GetUserAppointments(ctx context.Context, userID string) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.getJSON(ctx, "user/get_user_appointments.php", userQuery(userID), &out, "appointments"); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat

// GetMessages fetches the latest limit messages of a chat session
func (c *Client) GetMessages(ctx context.Context, chatSessionID string, limit int) (*models.MessagePage, error) {
	query := url.Values{}
	query.Set("chat_session_id", chatSessionID)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out models.MessagePage
	if err := c.getJSON(ctx, "chats/get_messages.php", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts a message as a multipart form
func (c *Client) SendMessage(ctx context.Context, req models.SendMessageRequest) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"chat_session_id", req.ChatSessionID},
		{"sender_id", req.SenderID},
		{"message", req.Message},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close form: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "chats/send_message.php", nil, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}

	ok, err := decodeSuccess(resp)
	if err != nil {
		return err
	}
	if !ok {
		return &APIError{Message: "message rejected"}
	}
	return nil
}

// Counsellors

// GetCounsellors lists all counsellors
func (c *Client) GetCounsellors(ctx context.Context) ([]models.Counsellor, error) {
	var out []models.Counsellor
	if err := c.getJSON(ctx, "counsellor/get_counsellors.php", nil, &out, "counsellors"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCounsellorSchedule lists the bookable slots of a counsellor
func (c *Client) GetCounsellorSchedule(ctx context.Context, counsellorID string) ([]models.ScheduleSlot, error) {
	query := url.Values{}
	query.Set("counsellorId", counsellorID)

	var out []models.ScheduleSlot
	if err := c.getJSON(ctx, "counsellor/get_counsellor_schedule.php", query, &out, "schedule"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCounsellorDetails fetches a counsellor profile
func (c *Client) GetCounsellorDetails(ctx context.Context, counsellorID string) (*models.CounsellorDetails, error) {
	query := url.Values{}
	query.Set("counsellorId", counsellorID)

	var out models.CounsellorDetails
	if err := c.getJSON(ctx, "counsellor/get_counsellor_details.php", query, &out, "counsellor"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalog

// GetFilters fetches the available filter values
func (c *Client) GetFilters(ctx context.Context) (*models.FilterValues, error) {
	var out models.FilterValues
	if err := c.getJSON(ctx, "filter/get_filters.php", nil, &out, "filters"); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllTests lists all tests
func (c *Client) GetAllTests(ctx context.Context) ([]models.Test, error) {
	var out []models.Test
	if err := c.getJSON(ctx, "tests/get_all_tests.php", nil, &out, "tests"); err != nil {
		return nil, err
	}
	return out, nil
}

// BookTest books a test for a user
func (c *Client) BookTest(ctx context.Context, req models.BookTestRequest) (bool, error) {
	resp, err := c.postJSON(ctx, "tests/book_test.php", req)
	if err != nil {
		return false, err
	}
	return decodeSuccess(resp)
}

func userQuery(userID string) url.Values {
	query := url.Values{}
	query.Set("userId", userID)
	return query
}
