package models

import "time"

// ChatMessage is one message of a chat session
type ChatMessage struct {
	ID        FlexString `json:"id"`
	SenderID  FlexString `json:"sender_id"`
	Message   string     `json:"message"`
	CreatedAt string     `json:"created_at"`
}

// MessagePage is the payload of get_messages.php
type MessagePage struct {
	Messages []ChatMessage `json:"messages"`
	HasMore  FlexBool      `json:"has_more"`
}

// SessionRef is the decoded form of a composite chat session id
type SessionRef struct {
	ChatID    string `json:"chatId"`
	StartHour int    `json:"startHour"`
	IsCouple  bool   `json:"isCouple"`
}

// ChatStatus is the derived state of a chat session at a point in time
type ChatStatus struct {
	SessionRef
	StartsAt         time.Time `json:"startsAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
	Ended            bool      `json:"ended"`
	RemainingSeconds int       `json:"remainingSeconds"`
}

// SendMessageRequest is the multipart form of send_message.php
type SendMessageRequest struct {
	ChatSessionID string
	SenderID      string
	Message       string
}
