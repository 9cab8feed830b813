package reader

import "fmt"

// RepositoryError reports a failure reading from or computing a diff
// against the underlying repository — an open libgit2 handle, a lookup, a
// tree diff. Op names the operation that failed (e.g. "commits_in",
// "daily_diffs", "weekly_diffs") for diagnostics.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("reader: %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
