package models

// SessionMode identifies which kind of consultation a session is
type SessionMode string

const (
	ModeCall     SessionMode = "call"
	ModeChat     SessionMode = "chat"
	ModeVideo    SessionMode = "video"
	ModeInPerson SessionMode = "in_person"
)

// CounsellorRef is the counsellor embedded in a session row
type CounsellorRef struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
}

// SessionActions are the backend-computed affordances of a session
type SessionActions struct {
	CanJoin   FlexBool `json:"canJoin"`
	CanCancel FlexBool `json:"canCancel"`
}

// CallSession is a row of get_call_sessions.php
type CallSession struct {
	ID          FlexString     `json:"id"`
	Counsellor  *CounsellorRef `json:"counsellor"`
	ScheduledAt string         `json:"scheduledAt"`
	Status      string         `json:"status"`
	Duration    FlexInt        `json:"duration"`
}

// ChatSession is a row of get_chat_sessions.php
type ChatSession struct {
	ID          FlexString     `json:"id"`
	Counsellor  *CounsellorRef `json:"counsellor"`
	ScheduledAt string         `json:"scheduled_at"`
	StartHour   FlexInt        `json:"start_hour"`
	IsCouple    FlexBool       `json:"is_couple"`
	Status      string         `json:"status"`
	Actions     SessionActions `json:"actions"`
}

// VideoSession is a row of get_counselling_sessions.php
type VideoSession struct {
	ID          FlexString     `json:"id"`
	Counsellor  *CounsellorRef `json:"counsellor"`
	ScheduledAt string         `json:"scheduledAt"`
	MeetingURL  string         `json:"meeting_url,omitempty"`
	Status      string         `json:"status"`
	Actions     SessionActions `json:"actions"`
}

// Appointment is a row of get_user_appointments.php (in-person visits).
// The counsellor may be missing.
type Appointment struct {
	ID          FlexString     `json:"id"`
	Counsellor  *CounsellorRef `json:"counsellor"`
	ScheduledAt string         `json:"scheduled_at"`
	Location    string         `json:"location,omitempty"`
	Status      string         `json:"status"`
}

// HistoryItem is the backend-agnostic representation of one scheduled session
type HistoryItem struct {
	Date           string      `json:"date"`
	Mode           SessionMode `json:"mode"`
	CounsellorName string      `json:"counsellorName"`
}

// UpcomingSession is a joinable (chat or video) session with its display state
type UpcomingSession struct {
	ID             string      `json:"id"`
	Mode           SessionMode `json:"mode"`
	CounsellorName string      `json:"counsellorName"`
	ScheduledAt    string      `json:"scheduledAt"`
	CanJoin        bool        `json:"canJoin"`
	DaysUntil      int         `json:"daysUntil"`
	ChatSessionID  string      `json:"chatSessionId,omitempty"`
}
