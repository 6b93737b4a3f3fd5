package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestInsertAndGetHistory(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	records := []QueryRecord{
		{
			ID:         "q1",
			QueryText:  "What's NVDA price?",
			Answer:     "NVDA is trading at $134.50.",
			Confidence: 0.95,
			Categories: []string{"price"},
			LatencyMS:  812,
			CreatedAt:  time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:            "q2",
			QueryText:     "how is palantir doing?",
			Answer:        "PLTR is trading at $24.80.",
			Confidence:    0.85,
			Categories:    []string{"price", "analysis"},
			RescueApplied: true,
			LatencyMS:     2104,
			CreatedAt:     time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC),
		},
	}
	for _, rec := range records {
		require.NoError(t, c.InsertQueryRecord(ctx, rec))
	}

	history, err := c.GetHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first.
	assert.Equal(t, "q2", history[0].ID)
	assert.Equal(t, []string{"price", "analysis"}, history[0].Categories)
	assert.True(t, history[0].RescueApplied)
	assert.Equal(t, "q1", history[1].ID)
	assert.False(t, history[1].RescueApplied)
}

func TestGetHistoryLimitClamped(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.InsertQueryRecord(ctx, QueryRecord{
			ID:        string(rune('a' + i)),
			QueryText: "q",
			Answer:    "a",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := c.GetHistory(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	all, err := c.GetHistory(ctx, -5)
	require.NoError(t, err)
	assert.Len(t, all, 3, "non-positive limits fall back to the default")
}
