package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/internal/domain"
)

func TestNewCommit_RejectsMissingFields(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		hash      string
		author    string
		authoredAt time.Time
		wantField string
	}{
		{"empty hash", "", "dev", now, "hash"},
		{"empty author", "abc123", "", now, "author"},
		{"zero authored_at", "abc123", "dev", time.Time{}, "authored_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewCommit(tt.hash, tt.author, tt.authoredAt, "subject", "", nil, "")
			require.Error(t, err)

			var valErr *domain.ValidationError

			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.wantField, valErr.Field)
		})
	}
}

func TestCommit_ShortHash(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c, err := domain.NewCommit("abcdef0123456789", "dev", now, "subject", "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "abcdef01", c.ShortHash())

	short, err := domain.NewCommit("ab12", "dev", now, "subject", "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "ab12", short.ShortHash())
}

func TestNewCommitAnalysis_NonTrivialRequiresChanges(t *testing.T) {
	t.Parallel()

	_, err := domain.NewCommitAnalysis(nil, false)
	require.Error(t, err)

	_, err = domain.NewCommitAnalysis(nil, true)
	require.NoError(t, err)
}

func TestPlaceholderAnalysis(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c, err := domain.NewCommit("abcdef0123456789", "dev", now, "subject", "", nil, "")
	require.NoError(t, err)

	analysis := domain.PlaceholderAnalysis(c)
	require.False(t, analysis.Trivial)
	require.Len(t, analysis.Changes, 1)
	assert.Equal(t, domain.CategoryOther, analysis.Changes[0].Category)
	assert.Contains(t, analysis.Changes[0].Summary, "abcdef01")
}
