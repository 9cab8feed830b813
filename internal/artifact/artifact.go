// Package artifact implements the Artifact Merger: it combines the
// WeekArtifacts a run produces with whatever artifact state already exists
// on disk, producing the three output variants (Narrative, Changelog,
// DailyLog) described in spec §4.8. Each file is rewritten atomically via
// write-then-rename, independently of the other two; there is no
// multi-file transaction.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bramblewood/historian/internal/domain"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
	tmpSuffix = ".tmp"
)

// Paths names the three output files a Merger writes.
type Paths struct {
	Narrative string
	Changelog string
	DailyLog  string
}

// Merger implements internal/orchestrator.ArtifactMerger over a fixed set
// of on-disk Paths.
type Merger struct {
	paths Paths
	// ReleaseVersion, when non-empty, promotes the Changelog's Unreleased
	// section to a new "## [<ReleaseVersion>] - <date>" section as part of
	// this Merge call (spec §4.8.2).
	ReleaseVersion string
	// ReleaseDate is the calendar date stamped on a release-promotion
	// section. The zero value means "no promotion requested"; promotion
	// requires both ReleaseVersion and ReleaseDate to be set.
	ReleaseDate string
}

// NewMerger constructs a Merger writing to paths.
func NewMerger(paths Paths) *Merger {
	return &Merger{paths: paths}
}

// Merge writes all three artifacts for the given WeekArtifacts, merging
// each against its existing on-disk state. A nil or empty weeks slice
// still runs release promotion (if configured) and still rewrites each
// file, since an empty run may still need to promote a prior Unreleased
// section.
func (m *Merger) Merge(_ context.Context, weeks []domain.WeekArtifact) error {
	if err := m.mergeNarrative(weeks); err != nil {
		return fmt.Errorf("merge narrative: %w", err)
	}

	if err := m.mergeChangelog(weeks); err != nil {
		return fmt.Errorf("merge changelog: %w", err)
	}

	if err := m.mergeDailyLog(weeks); err != nil {
		return fmt.Errorf("merge daily log: %w", err)
	}

	return nil
}

// writeAtomic writes content to path via a temp file in the same directory
// followed by a rename, so a reader never observes a partially written
// file (spec §4.8.4).
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmpPath := path + tmpSuffix

	if err := os.WriteFile(tmpPath, content, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, path, err)
	}

	return nil
}

// readExisting reads path's content, treating a missing file as empty
// content rather than an error (the first run against a fresh artifact
// directory has nothing to merge against).
func readExisting(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}

func trimTrailingBlankLines(b []byte) []byte {
	return bytes.TrimRight(b, "\n")
}

// headingSection is one `<prefix><label>` delimited block of a Markdown
// file, with body holding everything up to (not including) the next
// heading sharing the same prefix.
type headingSection struct {
	label string
	body  string
}

// parseHeadingSections splits content into headingSections wherever a line
// begins with prefix, preserving every other line's body verbatim
// (including blank lines) so that untouched sections round-trip
// byte-identically.
func parseHeadingSections(content []byte, prefix string) []headingSection {
	if len(content) == 0 {
		return nil
	}

	lines := strings.Split(string(content), "\n")

	var sections []headingSection

	var current *headingSection

	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			if current != nil {
				sections = append(sections, *current)
			}

			current = &headingSection{label: strings.TrimSpace(strings.TrimPrefix(line, prefix))}

			continue
		}

		if current != nil {
			current.body += line + "\n"
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}

	for i := range sections {
		sections[i].body = strings.Trim(sections[i].body, "\n") + "\n"
	}

	return sections
}
