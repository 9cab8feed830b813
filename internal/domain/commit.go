package domain

import (
	"errors"
	"time"
)

var (
	// ErrEmptyHash is returned when a Commit is constructed without an
	// identifying hash.
	ErrEmptyHash = errors.New("hash must not be empty")
	// ErrEmptyAuthor is returned when a Commit is constructed without an
	// author identity.
	ErrEmptyAuthor = errors.New("author must not be empty")
	// ErrZeroAuthoredAt is returned when a Commit is constructed with a
	// zero-value authored timestamp.
	ErrZeroAuthoredAt = errors.New("authored_at must not be zero")
)

// Commit is a single repository commit as surfaced by the Repository
// Reader. Identifier uniqueness is a property of the source repository,
// not enforced by this type; authored-timestamp ordering across commits is
// deliberately not assumed.
type Commit struct {
	Hash       string
	Author     string
	AuthoredAt time.Time
	Subject    string
	Body       string
	Paths      []string
	Diff       string
}

// NewCommit validates and constructs a Commit.
func NewCommit(hash, author string, authoredAt time.Time, subject, body string, paths []string, diff string) (Commit, error) {
	if hash == "" {
		return Commit{}, &ValidationError{Field: "hash", Err: ErrEmptyHash}
	}

	if author == "" {
		return Commit{}, &ValidationError{Field: "author", Err: ErrEmptyAuthor}
	}

	if authoredAt.IsZero() {
		return Commit{}, &ValidationError{Field: "authored_at", Err: ErrZeroAuthoredAt}
	}

	return Commit{
		Hash:       hash,
		Author:     author,
		AuthoredAt: authoredAt,
		Subject:    subject,
		Body:       body,
		Paths:      paths,
		Diff:       diff,
	}, nil
}

// ShortHash returns the conventional abbreviated form used in placeholder
// summaries and diagnostics.
func (c Commit) ShortHash() string {
	if len(c.Hash) <= 8 {
		return c.Hash
	}

	return c.Hash[:8]
}

// CommitAnalysis is the outcome of analyzing a single Commit: the set of
// Changes it introduced, and whether it is trivial (no changelog-worthy
// effect).
type CommitAnalysis struct {
	Changes []Change
	Trivial bool
}

// ErrNonTrivialWithoutChanges is returned when a non-trivial
// CommitAnalysis is constructed with no changes.
var ErrNonTrivialWithoutChanges = errors.New("non-trivial analysis must have at least one change")

// NewCommitAnalysis validates and constructs a CommitAnalysis. A trivial
// analysis may carry no changes; a non-trivial one must carry at least one.
func NewCommitAnalysis(changes []Change, trivial bool) (CommitAnalysis, error) {
	if !trivial && len(changes) == 0 {
		return CommitAnalysis{}, &ValidationError{Field: "changes", Err: ErrNonTrivialWithoutChanges}
	}

	return CommitAnalysis{Changes: changes, Trivial: trivial}, nil
}

// PlaceholderAnalysis builds the synthetic CommitAnalysis recorded when an
// LLM or decoder failure prevents normal analysis of c, so that c's
// presence is preserved downstream (spec §4.7 step 2).
func PlaceholderAnalysis(c Commit) CommitAnalysis {
	return CommitAnalysis{
		Changes: []Change{
			{
				Summary:  "unanalyzed commit " + c.ShortHash(),
				Category: CategoryOther,
			},
		},
		Trivial: false,
	}
}
