package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/portal-gateway/internal/models"
)

func withBackend(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("BACKEND_BASE_URL", srv.URL)
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("k", 32))
	t.Setenv("LOG_LEVEL", "error")
}

func TestListCatalog(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tests/get_all_tests.php":
			fmt.Fprint(w, `{"status":"success","tests":[{"slug":"happiness","title":"Happiness Scale","is_active":true}]}`)
		case "/counsellor/get_counsellors.php":
			fmt.Fprint(w, `[{"id":1,"name":"Asha"},{"id":2,"name":"Ben"}]`)
		default:
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	})

	out, err := runCmd(t, "list", "tests")
	require.NoError(t, err)
	var tests []models.Test
	require.NoError(t, json.Unmarshal([]byte(out), &tests))
	require.Len(t, tests, 1)
	assert.Equal(t, "happiness", tests[0].Slug)

	out, err = runCmd(t, "list", "experts")
	require.NoError(t, err)
	var experts []models.Counsellor
	require.NoError(t, json.Unmarshal([]byte(out), &experts))
	assert.Len(t, experts, 2)

	out, err = runCmd(t, "list", "filters")
	require.NoError(t, err, "backend failures degrade to an empty result")
	var filters models.FilterValues
	require.NoError(t, json.Unmarshal([]byte(out), &filters))
	assert.Equal(t, models.FilterValues{}, filters)
}

func TestListUserSessions(t *testing.T) {
	withBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userId") != "u1" {
			fmt.Fprint(w, `[]`)
			return
		}
		switch r.URL.Path {
		case "/user/get_chat_sessions.php":
			fmt.Fprint(w, `{"sessions":[{"id":42,"scheduled_at":"2026-10-21 14:00:00","start_hour":14}]}`)
		case "/user/get_user_appointments.php":
			fmt.Fprint(w, `{"appointments":[{"id":7,"scheduled_at":"2026-10-22 10:00:00","status":"confirmed"}]}`)
		case "/user/get_call_sessions.php":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			fmt.Fprint(w, `[]`)
		}
	})

	out, err := runCmd(t, "list", "sessions", "u1")
	require.NoError(t, err)
	var sessions userSessions
	require.NoError(t, json.Unmarshal([]byte(out), &sessions))
	assert.Empty(t, sessions.Calls)
	assert.NotNil(t, sessions.Calls)
	require.Len(t, sessions.Chats, 1)
	assert.Equal(t, "42", sessions.Chats[0].ID.String())
	assert.Empty(t, sessions.Videos)

	out, err = runCmd(t, "list", "appointments", "u1")
	require.NoError(t, err)
	var appts []models.Appointment
	require.NoError(t, json.Unmarshal([]byte(out), &appts))
	require.Len(t, appts, 1)
	assert.Equal(t, "confirmed", appts[0].Status)

	_, err = runCmd(t, "list", "sessions")
	assert.Error(t, err)
}
