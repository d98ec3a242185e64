package chat

import (
	"errors"
	"fmt"

	"github.com/mindwell/portal-gateway/internal/models"
)

// ErrMalformedSessionID is returned when a composite session id cannot be
// decoded
var ErrMalformedSessionID = errors.New("malformed session id")

// Encode packs a session reference into its composite id:
// the chat id, the start hour as two digits, then 1 for a couple session
// or 0 otherwise
func Encode(ref models.SessionRef) (string, error) {
	if ref.ChatID == "" {
		return "", fmt.Errorf("%w: empty chat id", ErrMalformedSessionID)
	}
	if ref.StartHour < 0 || ref.StartHour > 23 {
		return "", fmt.Errorf("%w: start hour %d out of range", ErrMalformedSessionID, ref.StartHour)
	}

	flag := '0'
	if ref.IsCouple {
		flag = '1'
	}
	return fmt.Sprintf("%s%02d%c", ref.ChatID, ref.StartHour, flag), nil
}

// Decode unpacks a composite session id
func Decode(id string) (models.SessionRef, error) {
	if len(id) < 3 {
		return models.SessionRef{}, fmt.Errorf("%w: %q is too short", ErrMalformedSessionID, id)
	}

	n := len(id)
	h1, h2, flag := id[n-3], id[n-2], id[n-1]
	if !isDigit(h1) || !isDigit(h2) {
		return models.SessionRef{}, fmt.Errorf("%w: hour in %q is not numeric", ErrMalformedSessionID, id)
	}
	if flag != '0' && flag != '1' {
		return models.SessionRef{}, fmt.Errorf("%w: couple flag in %q must be 0 or 1", ErrMalformedSessionID, id)
	}

	hour := int(h1-'0')*10 + int(h2-'0')
	if hour > 23 {
		return models.SessionRef{}, fmt.Errorf("%w: start hour %d out of range", ErrMalformedSessionID, hour)
	}

	chatID := id[:n-3]
	if chatID == "" {
		return models.SessionRef{}, fmt.Errorf("%w: empty chat id", ErrMalformedSessionID)
	}

	return models.SessionRef{
		ChatID:    chatID,
		StartHour: hour,
		IsCouple:  flag == '1',
	}, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
