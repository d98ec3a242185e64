package history

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mindwell/portal-gateway/internal/chat"
	"github.com/mindwell/portal-gateway/internal/models"
)

// NoCounsellor stands in for a session without a counsellor
const NoCounsellor = "N/A"

// Backend timestamps come as MySQL datetimes or RFC 3339
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Source fetches the four session lists of a user
type Source interface {
	GetCallSessions(ctx context.Context, userID string) ([]models.CallSession, error)
	GetChatSessions(ctx context.Context, userID string) ([]models.ChatSession, error)
	GetCounsellingSessions(ctx context.Context, userID string) ([]models.VideoSession, error)
	GetUserAppointments(ctx context.Context, userID string) ([]models.Appointment, error)
}

// Classifier merges the backend's session lists into one history
type Classifier struct {
	source Source
	loc    *time.Location
}

// NewClassifier creates a Classifier. Zone-less timestamps are read in loc,
// time.Local when nil.
func NewClassifier(source Source, loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.Local
	}
	return &Classifier{source: source, loc: loc}
}

// entry is a normalized session before it is rendered
type entry struct {
	item models.HistoryItem
	at   time.Time
	ok   bool
}

// History returns every session of a user, newest first. The four lists are
// fetched in parallel and any failure fails the whole merge.
func (c *Classifier) History(ctx context.Context, userID string) ([]models.HistoryItem, error) {
	var (
		calls  []models.CallSession
		chats  []models.ChatSession
		videos []models.VideoSession
		visits []models.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		calls, err = c.source.GetCallSessions(gctx, userID)
		return wrap("call", err)
	})
	g.Go(func() (err error) {
		chats, err = c.source.GetChatSessions(gctx, userID)
		return wrap("chat", err)
	})
	g.Go(func() (err error) {
		videos, err = c.source.GetCounsellingSessions(gctx, userID)
		return wrap("video", err)
	})
	g.Go(func() (err error) {
		visits, err = c.source.GetUserAppointments(gctx, userID)
		return wrap("in_person", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(calls)+len(chats)+len(videos)+len(visits))
	for _, s := range calls {
		entries = append(entries, c.normalize(models.ModeCall, s.Counsellor, s.ScheduledAt))
	}
	for _, s := range chats {
		entries = append(entries, c.normalize(models.ModeChat, s.Counsellor, s.ScheduledAt))
	}
	for _, s := range videos {
		entries = append(entries, c.normalize(models.ModeVideo, s.Counsellor, s.ScheduledAt))
	}
	for _, s := range visits {
		entries = append(entries, c.normalize(models.ModeInPerson, s.Counsellor, s.ScheduledAt))
	}

	// Newest first; unparseable dates go last in source order
	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.ok && b.ok:
			return b.at.Compare(a.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})

	items := make([]models.HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items, nil
}

// Upcoming returns the user's chat and video sessions that are today or
// later, soonest first, with their display affordances
func (c *Classifier) Upcoming(ctx context.Context, userID string, now time.Time) ([]models.UpcomingSession, error) {
	var (
		chats  []models.ChatSession
		videos []models.VideoSession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		chats, err = c.source.GetChatSessions(gctx, userID)
		return wrap("chat", err)
	})
	g.Go(func() (err error) {
		videos, err = c.source.GetCounsellingSessions(gctx, userID)
		return wrap("video", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now = now.In(c.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)

	type upcoming struct {
		s  models.UpcomingSession
		at time.Time
	}
	var out []upcoming

	for _, s := range chats {
		at, ok := c.parse(s.ScheduledAt)
		if !ok || at.Before(today) {
			continue
		}
		u := c.affordances(models.ModeChat, s.ID.String(), s.Counsellor, at, bool(s.Actions.CanJoin), now)

		hour := int(s.StartHour)
		if hour == 0 {
			hour = at.Hour()
		}
		if id, err := chat.Encode(models.SessionRef{ChatID: s.ID.String(), StartHour: hour, IsCouple: bool(s.IsCouple)}); err == nil {
			u.ChatSessionID = id
		}
		out = append(out, upcoming{s: u, at: at})
	}
	for _, s := range videos {
		at, ok := c.parse(s.ScheduledAt)
		if !ok || at.Before(today) {
			continue
		}
		u := c.affordances(models.ModeVideo, s.ID.String(), s.Counsellor, at, bool(s.Actions.CanJoin), now)
		out = append(out, upcoming{s: u, at: at})
	}

	slices.SortStableFunc(out, func(a, b upcoming) int {
		return a.at.Compare(b.at)
	})

	sessions := make([]models.UpcomingSession, len(out))
	for i, u := range out {
		sessions[i] = u.s
	}
	return sessions, nil
}

// affordances builds the display state of a session. canJoin is the
// backend's decision and is passed through unchanged.
func (c *Classifier) affordances(mode models.SessionMode, id string, ref *models.CounsellorRef, at time.Time, canJoin bool, now time.Time) models.UpcomingSession {
	return models.UpcomingSession{
		ID:             id,
		Mode:           mode,
		CounsellorName: counsellorName(ref),
		ScheduledAt:    at.Format(time.RFC3339),
		CanJoin:        canJoin,
		DaysUntil:      DaysUntil(at, now),
	}
}

// DaysUntil returns the whole days left until at, rounded up and never
// negative
func DaysUntil(at, now time.Time) int {
	d := at.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func (c *Classifier) normalize(mode models.SessionMode, ref *models.CounsellorRef, scheduled string) entry {
	e := entry{item: models.HistoryItem{
		Date:           scheduled,
		Mode:           mode,
		CounsellorName: counsellorName(ref),
	}}
	if at, ok := c.parse(scheduled); ok {
		e.at, e.ok = at, true
		e.item.Date = at.Format(time.RFC3339)
	}
	return e
}

func (c *Classifier) parse(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func counsellorName(ref *models.CounsellorRef) string {
	if ref == nil || ref.Name == "" {
		return NoCounsellor
	}
	return ref.Name
}

func wrap(source string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to fetch %s sessions: %w", source, err)
}
