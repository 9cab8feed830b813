package reader_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/internal/reader"
)

func TestWeekBoundaries_ChunksBySevenDaySpan(t *testing.T) {
	t.Parallel()

	dates := []time.Time{
		dayAt(2026, time.January, 1, 0),
		dayAt(2026, time.January, 3, 0),
		dayAt(2026, time.January, 6, 0),
		dayAt(2026, time.January, 9, 0),
		dayAt(2026, time.January, 20, 0),
	}

	chunks := reader.WeekBoundaries(dates)

	require.Len(t, chunks, 3)
	assert.Equal(t, dates[0:3], chunks[0])
	assert.Equal(t, dates[3:4], chunks[1])
	assert.Equal(t, dates[4:5], chunks[2])
}

func TestWeekBoundaries_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, reader.WeekBoundaries(nil))
}

func TestWeekBoundaries_SingleDate(t *testing.T) {
	t.Parallel()

	dates := []time.Time{dayAt(2026, time.January, 1, 0)}
	chunks := reader.WeekBoundaries(dates)

	require.Len(t, chunks, 1)
	assert.Equal(t, dates, chunks[0])
}
