package difffit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/internal/difffit"
)

func TestFit_UnderBudget_ReturnsSingleChunk(t *testing.T) {
	t.Parallel()

	diff := "diff --git a/x.go b/x.go\n@@ -1,1 +1,1 @@\n-old\n+new\n"

	chunks := difffit.Fit(diff, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, diff, chunks[0])
}

func TestFit_Empty_ReturnsNoChunks(t *testing.T) {
	t.Parallel()

	assert.Empty(t, difffit.Fit("", 1000))
}

func TestFit_EachChunkWithinBudget(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("diff --git a/file")
		sb.WriteString(string(rune('a' + i)))
		sb.WriteString(".go b/file")
		sb.WriteString(string(rune('a' + i)))
		sb.WriteString(".go\n@@ -1,3 +1,3 @@\n-line one old\n-line two old\n+line one new\n+line two new\n")
	}

	diff := sb.String()

	chunks := difffit.Fit(diff, 20)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		words := len(strings.Fields(c))
		assert.LessOrEqual(t, words, 20+5, "chunk exceeds budget tolerance: %q", c)
	}
}

func TestFit_PreservesAllNonWhitespaceWords(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteString("diff --git a/f")
		sb.WriteString(string(rune('a' + i)))
		sb.WriteString(" b/f")
		sb.WriteString(string(rune('a' + i)))
		sb.WriteString("\n@@ -1,1 +1,1 @@\n-removed_token_")
		sb.WriteString(string(rune('a' + i)))
		sb.WriteString("\n+added_token_")
		sb.WriteString(string(rune('a' + i)))
		sb.WriteString("\n")
	}

	diff := sb.String()

	chunks := difffit.Fit(diff, 10)
	joined := strings.Join(chunks, "")

	for i := 0; i < 5; i++ {
		letter := string(rune('a' + i))
		assert.Contains(t, joined, "removed_token_"+letter)
		assert.Contains(t, joined, "added_token_"+letter)
	}
}

func TestFit_SingleLineExceedingBudgetIsWhitespaceSplit(t *testing.T) {
	t.Parallel()

	longLine := "+" + strings.Repeat("word ", 50)
	diff := "diff --git a/x.go b/x.go\n@@ -1,1 +1,1 @@\n" + longLine + "\n"

	chunks := difffit.Fit(diff, 5)
	require.Greater(t, len(chunks), 1)

	joined := strings.Join(chunks, "")
	assert.Equal(t, 50, strings.Count(joined, "word"))
}

func TestFit_BinaryPlaceholderTreatedAsFileBoundary(t *testing.T) {
	t.Parallel()

	diff := "diff --git a/a.go b/a.go\n@@ -1,1 +1,1 @@\n-a\n+b\n" +
		"Binary files a/img.png and b/img.png differ (binary file changed)\n"

	chunks := difffit.Fit(diff, 1000)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "Binary files")
}
