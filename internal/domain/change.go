package domain

import "errors"

// ErrEmptySummary is returned when a Change is constructed with a blank
// summary.
var ErrEmptySummary = errors.New("summary must not be empty")

// Change is a single human-readable entry destined for the Changelog
// artifact, tagged with the category under which it must be grouped.
type Change struct {
	Summary  string
	Category Category
}

// NewChange validates and constructs a Change. An unrecognized category is
// silently coerced to CategoryOther, the same rule ParseCategory applies;
// callers that need to know about the coercion should call ParseCategory
// themselves first.
func NewChange(summary string, category Category) (Change, error) {
	if summary == "" {
		return Change{}, &ValidationError{Field: "summary", Err: ErrEmptySummary}
	}

	if !validCategories[category] {
		category = CategoryOther
	}

	return Change{Summary: summary, Category: category}, nil
}
