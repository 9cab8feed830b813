package gitlib

import (
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// binaryPlaceholder replaces the content of a binary delta in the rendered
// patch text, per the spec's requirement that binary files appear as an
// opaque placeholder rather than raw bytes.
const binaryPlaceholder = "Binary files %s and %s differ (binary file changed)\n"

// Diff wraps a libgit2 diff between two trees.
type Diff struct {
	diff *git2go.Diff
}

// NumDeltas returns the number of file-level deltas in the diff.
func (d *Diff) NumDeltas() (int, error) {
	numDeltas, err := d.diff.NumDeltas()
	if err != nil {
		return 0, fmt.Errorf("get num deltas: %w", err)
	}

	return numDeltas, nil
}

// PatchText renders the full unified diff as text, with binary deltas
// collapsed to a one-line placeholder and renames preserved as
// "rename from"/"rename to" headers (libgit2's native patch format already
// emits these once similarity detection has run via FindSimilar).
func (d *Diff) PatchText() (string, error) {
	numDeltas, err := d.NumDeltas()
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	for i := 0; i < numDeltas; i++ {
		delta, deltaErr := d.diff.Delta(i)
		if deltaErr != nil {
			return "", fmt.Errorf("get delta %d: %w", i, deltaErr)
		}

		if delta.Flags&git2go.DiffFlagBinary != 0 {
			sb.WriteString(fmt.Sprintf(binaryPlaceholder, delta.OldFile.Path, delta.NewFile.Path))

			continue
		}

		patch, patchErr := d.diff.Patch(i)
		if patchErr != nil {
			return "", fmt.Errorf("build patch %d: %w", i, patchErr)
		}

		text, stringErr := patch.String()

		patch.Free()

		if stringErr != nil {
			return "", fmt.Errorf("render patch %d: %w", i, stringErr)
		}

		sb.WriteString(text)
	}

	return sb.String(), nil
}

// ChangedPaths returns the new-file path of every delta in the diff (the
// old-file path for pure deletions, where the new side is empty).
func (d *Diff) ChangedPaths() ([]string, error) {
	numDeltas, err := d.NumDeltas()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, numDeltas)

	for i := 0; i < numDeltas; i++ {
		delta, deltaErr := d.diff.Delta(i)
		if deltaErr != nil {
			return nil, fmt.Errorf("get delta %d: %w", i, deltaErr)
		}

		path := delta.NewFile.Path
		if path == "" {
			path = delta.OldFile.Path
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Stats returns the diff stats.
func (d *Diff) Stats() (*DiffStats, error) {
	stats, err := d.diff.Stats()
	if err != nil {
		return nil, fmt.Errorf("get diff stats: %w", err)
	}

	return &DiffStats{stats: stats}, nil
}

// Free releases the diff resources.
func (d *Diff) Free() {
	if d.diff == nil {
		return
	}
	// Free() errors are non-actionable in cleanup.
	_ = d.diff.Free()
	d.diff = nil
}

// DiffStats wraps libgit2 diff stats.
type DiffStats struct {
	stats *git2go.DiffStats
}

// Insertions returns the number of insertions.
func (s *DiffStats) Insertions() int {
	return s.stats.Insertions()
}

// Deletions returns the number of deletions.
func (s *DiffStats) Deletions() int {
	return s.stats.Deletions()
}

// FilesChanged returns the number of files changed.
func (s *DiffStats) FilesChanged() int {
	return s.stats.FilesChanged()
}

// Free releases the stats resources.
func (s *DiffStats) Free() {
	if s.stats == nil {
		return
	}

	_ = s.stats.Free()
	s.stats = nil
}
