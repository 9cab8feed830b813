package domain

// Category is a fixed enumeration of change kinds. The zero value is not a
// valid Category; use ParseCategory or the named constants.
type Category string

// The fixed category enumeration, in the order they must be emitted in the
// Changelog artifact.
const (
	CategoryAdded          Category = "Added"
	CategoryChanged        Category = "Changed"
	CategoryDeprecated     Category = "Deprecated"
	CategoryRemoved        Category = "Removed"
	CategoryFixed          Category = "Fixed"
	CategorySecurity       Category = "Security"
	CategoryPerformance    Category = "Performance"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryDocumentation  Category = "Documentation"
	CategoryTesting        Category = "Testing"
	CategoryOther          Category = "Other"
)

// CategoryOrder is the fixed display order for changelog category
// subheadings (spec §6).
var CategoryOrder = []Category{
	CategoryAdded,
	CategoryChanged,
	CategoryDeprecated,
	CategoryRemoved,
	CategoryFixed,
	CategorySecurity,
	CategoryPerformance,
	CategoryInfrastructure,
	CategoryDocumentation,
	CategoryTesting,
	CategoryOther,
}

var validCategories = func() map[Category]bool {
	m := make(map[Category]bool, len(CategoryOrder))
	for _, c := range CategoryOrder {
		m[c] = true
	}

	return m
}()

// ParseCategory parses a category name emitted by the LLM. Unknown
// categories are coerced to CategoryOther; ok reports whether the input was
// already a recognized member (false signals a coercion occurred, so the
// caller can record a diagnostic per spec §4.9).
func ParseCategory(name string) (category Category, ok bool) {
	c := Category(name)
	if validCategories[c] {
		return c, true
	}

	return CategoryOther, false
}
