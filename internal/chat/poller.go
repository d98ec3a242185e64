package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mindwell/portal-gateway/internal/models"
)

// Chat errors
var (
	ErrSessionEnded = errors.New("chat session has ended")
	ErrEmptyMessage = errors.New("message is empty")
)

// Event types emitted by a Poller
const (
	EventMessages  = "messages"
	EventCountdown = "countdown"
	EventEnded     = "ended"
	EventError     = "error"
)

// Event is one update pushed to a chat view
type Event struct {
	Type     string               `json:"type"`
	Messages []models.ChatMessage `json:"messages,omitempty"`
	HasMore  bool                 `json:"hasMore,omitempty"`
	Status   *models.ChatStatus   `json:"status,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// MessageSource fetches the latest messages of a chat
type MessageSource interface {
	GetMessages(ctx context.Context, chatSessionID string, limit int) (*models.MessagePage, error)
}

// MessageSink posts a message to a chat
type MessageSink interface {
	SendMessage(ctx context.Context, req models.SendMessageRequest) error
}

// Poller follows one chat session: it polls for messages while the session
// is active and emits a countdown on a separate, faster tick
type Poller struct {
	source       MessageSource
	ref          models.SessionRef
	pollInterval time.Duration
	tickInterval time.Duration
	pageSize     int
	now          func() time.Time

	mu      sync.Mutex
	limit   int
	hasMore bool
	lastSig string
	trigger chan struct{}
}

// PollerOption configures a Poller
type PollerOption func(*Poller)

// WithPollInterval sets how often messages are fetched
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithTickInterval sets how often the countdown is emitted
func WithTickInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.tickInterval = d
		}
	}
}

// WithPageSize sets the initial limit and its growth step
func WithPageSize(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) {
		p.now = now
	}
}

// NewPoller creates a Poller for a decoded session
func NewPoller(source MessageSource, ref models.SessionRef, opts ...PollerOption) *Poller {
	p := &Poller{
		source:       source,
		ref:          ref,
		pollInterval: 3 * time.Second,
		tickInterval: time.Second,
		pageSize:     20,
		now:          time.Now,
		trigger:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.limit = p.pageSize
	return p
}

// LoadMore raises the message limit by one page when the last fetch
// reported more history. The next fetch happens immediately.
func (p *Poller) LoadMore() bool {
	p.mu.Lock()
	if !p.hasMore {
		p.mu.Unlock()
		return false
	}
	p.limit += p.pageSize
	p.lastSig = ""
	p.mu.Unlock()

	select {
	case p.trigger <- struct{}{}:
	default:
	}
	return true
}

// Limit returns the current message limit
func (p *Poller) Limit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.limit
}

// Run polls until the session ends, ctx is cancelled or emit fails.
// Nothing is emitted after ctx is done.
func (p *Poller) Run(ctx context.Context, emit func(Event) error) error {
	if IsEnded(p.ref, p.now()) {
		return p.end(ctx, emit)
	}

	if err := p.poll(ctx, emit); err != nil {
		return err
	}
	if err := p.countdown(ctx, emit); err != nil {
		return err
	}

	pollTicker := time.NewTicker(p.pollInterval)
	defer pollTicker.Stop()
	tickTicker := time.NewTicker(p.tickInterval)
	defer tickTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pollTicker.C:
			if IsEnded(p.ref, p.now()) {
				return p.end(ctx, emit)
			}
			if err := p.poll(ctx, emit); err != nil {
				return err
			}
		case <-p.trigger:
			if err := p.poll(ctx, emit); err != nil {
				return err
			}
		case <-tickTicker.C:
			if IsEnded(p.ref, p.now()) {
				return p.end(ctx, emit)
			}
			if err := p.countdown(ctx, emit); err != nil {
				return err
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context, emit func(Event) error) error {
	limit := p.Limit()
	page, err := p.source.GetMessages(ctx, p.ref.ChatID, limit)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		slog.Warn("chat poll failed", "chat_id", p.ref.ChatID, "error", err)
		return emit(Event{Type: EventError, Error: "failed to fetch messages"})
	}

	sig := signature(page.Messages)
	p.mu.Lock()
	p.hasMore = bool(page.HasMore)
	changed := sig != p.lastSig
	p.lastSig = sig
	p.mu.Unlock()

	if !changed {
		return nil
	}
	return emit(Event{Type: EventMessages, Messages: page.Messages, HasMore: bool(page.HasMore)})
}

func (p *Poller) countdown(ctx context.Context, emit func(Event) error) error {
	if ctx.Err() != nil {
		return nil
	}
	status := Status(p.ref, p.now())
	return emit(Event{Type: EventCountdown, Status: &status})
}

func (p *Poller) end(ctx context.Context, emit func(Event) error) error {
	if ctx.Err() != nil {
		return nil
	}
	status := Status(p.ref, p.now())
	slog.Info("chat session ended", "chat_id", p.ref.ChatID)
	return emit(Event{Type: EventEnded, Status: &status})
}

// signature identifies a message page by its size and its end messages
func signature(msgs []models.ChatMessage) string {
	if len(msgs) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d|%s|%s", len(msgs), msgs[0].ID, msgs[len(msgs)-1].ID)
}

// Sender posts messages while the session is active
type Sender struct {
	sink MessageSink
	now  func() time.Time
}

// SenderOption configures a Sender
type SenderOption func(*Sender)

// WithSenderClock replaces time.Now
func WithSenderClock(now func() time.Time) SenderOption {
	return func(s *Sender) {
		s.now = now
	}
}

// NewSender creates a Sender
func NewSender(sink MessageSink, opts ...SenderOption) *Sender {
	s := &Sender{sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts text as senderID, refusing once the session has ended
func (s *Sender) Send(ctx context.Context, ref models.SessionRef, senderID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if IsEnded(ref, s.now()) {
		return ErrSessionEnded
	}
	return s.sink.SendMessage(ctx, models.SendMessageRequest{
		ChatSessionID: ref.ChatID,
		SenderID:      senderID,
		Message:       text,
	})
}
