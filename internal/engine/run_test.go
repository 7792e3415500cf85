package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunAttemptFresh(t *testing.T) {
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	started := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)

	run := NewRunAttempt(nil, "performance", date, started)

	require.NotNil(t, run)
	assert.Zero(t, run.ID)
	assert.Equal(t, "performance", run.EngineName)
	assert.Equal(t, date, run.Date)
	assert.Equal(t, RunProcessing, run.Status)
	assert.Equal(t, started, run.StartedAt)
}

// A rerun for an already-tracked date must reuse the existing row, so the
// runs table stays one row per engine and date.
func TestNewRunAttemptReusesPreviousRow(t *testing.T) {
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
	prev := &Run{
		ID:           42,
		EngineName:   "performance",
		Date:         date,
		Status:       RunFailed,
		TotalRecords: 17,
		Violations:   3,
		StartedAt:    completed.Add(-time.Hour),
		CompletedAt:  &completed,
		ErrorMessage: "feed load failed",
	}

	restarted := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	run := NewRunAttempt(prev, "performance", date, restarted)

	assert.Equal(t, int64(42), run.ID)
	assert.Equal(t, RunProcessing, run.Status)
	assert.Equal(t, restarted, run.StartedAt)
	assert.Nil(t, run.CompletedAt)
	assert.Empty(t, run.ErrorMessage)
	assert.Zero(t, run.TotalRecords)
	assert.Zero(t, run.Violations)
}
