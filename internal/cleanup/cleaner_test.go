package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/portal-gateway/internal/assessment"
	"github.com/mindwell/portal-gateway/internal/models"
)

type oneQuestion struct{}

func (oneQuestion) GetQuestions(_ context.Context, slug string) models.AssessmentSet {
	return models.AssessmentSet{
		Questions: []models.Question{{
			QuestionNumber: "1",
			QuestionText:   "How are you?",
			Options:        []models.Option{{Value: "1", Text: "Fine"}},
		}},
		Pages: 1,
	}
}

func TestSweepRemovesExpiredAttempts(t *testing.T) {
	m := assessment.NewManager(oneQuestion{}, nil, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := m.Start(ctx, "u1", "happiness")
	require.NoError(t, err)
	_, err = m.Start(ctx, "u2", "wbs")
	require.NoError(t, err)

	c := NewCleaner(m, time.Hour)

	assert.Equal(t, 0, c.Sweep())
	assert.Equal(t, 2, m.Count())

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 0, m.Count())
}

func TestNewCleanerDefaultsInterval(t *testing.T) {
	c := NewCleaner(nil, 0)
	assert.Equal(t, 5*time.Minute, c.interval)
}
