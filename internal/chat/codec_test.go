package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/portal-gateway/internal/models"
)

func TestEncode(t *testing.T) {
	id, err := Encode(models.SessionRef{ChatID: "482", StartHour: 9, IsCouple: true})
	require.NoError(t, err)
	assert.Equal(t, "482091", id)

	id, err = Encode(models.SessionRef{ChatID: "7", StartHour: 23})
	require.NoError(t, err)
	assert.Equal(t, "7230", id)

	_, err = Encode(models.SessionRef{ChatID: "7", StartHour: 24})
	assert.ErrorIs(t, err, ErrMalformedSessionID)
	_, err = Encode(models.SessionRef{StartHour: 1})
	assert.ErrorIs(t, err, ErrMalformedSessionID)
}

func TestRoundTrip(t *testing.T) {
	for _, chatID := range []string{"1", "42", "000", "9876543210"} {
		for hour := 0; hour <= 23; hour++ {
			for _, couple := range []bool{false, true} {
				ref := models.SessionRef{ChatID: chatID, StartHour: hour, IsCouple: couple}
				id, err := Encode(ref)
				require.NoError(t, err)

				got, err := Decode(id)
				require.NoError(t, err)
				assert.Equal(t, ref, got)
			}
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, id := range []string{"", "1", "12", "140", "42x10", "4214x", "42242", "42142"} {
		_, err := Decode(id)
		assert.ErrorIs(t, err, ErrMalformedSessionID, id)
	}
}

func TestSessionExpiry(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ref := models.SessionRef{ChatID: "42", StartHour: 14}
	day := func(h, m int) time.Time { return time.Date(2026, 10, 19, h, m, 0, 0, loc) }

	assert.False(t, IsEnded(ref, day(14, 44)))
	assert.True(t, IsEnded(ref, day(14, 45)))
	assert.True(t, IsEnded(ref, day(14, 46)))
	assert.Equal(t, time.Minute, Remaining(ref, day(14, 44)))
	assert.Equal(t, time.Duration(0), Remaining(ref, day(14, 46)))

	couple := ref
	couple.IsCouple = true
	assert.False(t, IsEnded(couple, day(15, 29)))
	assert.True(t, IsEnded(couple, day(15, 30)))
}

func TestSessionStartRollsBack(t *testing.T) {
	ref := models.SessionRef{ChatID: "42", StartHour: 23, IsCouple: true}
	now := time.Date(2026, 10, 20, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC), Start(ref, now))
	assert.False(t, IsEnded(ref, now), "90 minutes from 23:00 runs past midnight")

	st := Status(ref, now)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 30, 0, 0, time.UTC), st.ExpiresAt)
	assert.Equal(t, 15*60, st.RemainingSeconds)
	assert.False(t, st.Ended)

	morning := models.SessionRef{ChatID: "42", StartHour: 9}
	assert.Equal(t, time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC), Start(morning, time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)))
}
