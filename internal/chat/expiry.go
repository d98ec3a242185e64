package chat

import (
	"time"

	"github.com/mindwell/portal-gateway/internal/models"
)

// Session lengths
const (
	StandardDuration = 45 * time.Minute
	CoupleDuration   = 90 * time.Minute
)

// Duration returns the length of a session
func Duration(ref models.SessionRef) time.Duration {
	if ref.IsCouple {
		return CoupleDuration
	}
	return StandardDuration
}

// Start returns the most recent start of the session at or before now: today
// at the start hour in now's location, or yesterday if that is still ahead
func Start(ref models.SessionRef, now time.Time) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), ref.StartHour, 0, 0, 0, now.Location())
	if start.After(now) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// Expiry returns when the session ends
func Expiry(ref models.SessionRef, now time.Time) time.Time {
	return Start(ref, now).Add(Duration(ref))
}

// IsEnded reports whether the session is over at now
func IsEnded(ref models.SessionRef, now time.Time) bool {
	return !now.Before(Expiry(ref, now))
}

// Remaining returns the time left in the session, never negative
func Remaining(ref models.SessionRef, now time.Time) time.Duration {
	if d := Expiry(ref, now).Sub(now); d > 0 {
		return d
	}
	return 0
}

// Status derives the full session state at now
func Status(ref models.SessionRef, now time.Time) models.ChatStatus {
	start := Start(ref, now)
	expiry := start.Add(Duration(ref))
	remaining := expiry.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	return models.ChatStatus{
		SessionRef:       ref,
		StartsAt:         start,
		ExpiresAt:        expiry,
		Ended:            !now.Before(expiry),
		RemainingSeconds: int(remaining.Seconds()),
	}
}
