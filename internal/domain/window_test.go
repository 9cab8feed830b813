package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/internal/domain"
)

func TestNewAnalysisWindow_RejectsInvertedRange(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewAnalysisWindow(since, until, nil)
	require.Error(t, err)
}

func TestAnalysisWindow_EmptyWhenNoWeekBuckets(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	w, err := domain.NewAnalysisWindow(since, until, nil)
	require.NoError(t, err)
	assert.True(t, w.Empty())
}
