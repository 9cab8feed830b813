package artifact

import (
	"fmt"
	"strings"

	"github.com/bramblewood/historian/internal/domain"
)

const (
	unreleasedHeading   = "## [Unreleased]"
	versionHeadingStart = "## ["
	categoryHeadingMark = "### "
	bulletPrefix        = "- "
)

// changelogDoc is the parsed form of a "Keep a Changelog" document: the
// Unreleased section broken out by Category so new Changes can be
// deduplicated and appended, and everything below it kept as an opaque,
// byte-preserved block of already-released version sections.
type changelogDoc struct {
	unreleased  map[domain.Category][]string
	versionsRaw string
}

// parseChangelog splits content into its Unreleased section and the raw
// text of every version section that follows it.
func parseChangelog(content []byte) changelogDoc {
	doc := changelogDoc{unreleased: make(map[domain.Category][]string)}

	text := string(content)

	idx := strings.Index(text, unreleasedHeading)
	if idx == -1 {
		return doc
	}

	rest := text[idx+len(unreleasedHeading):]

	next := strings.Index(rest, versionHeadingStart)
	if next == -1 {
		doc.unreleased = parseCategorySections(rest)

		return doc
	}

	doc.unreleased = parseCategorySections(rest[:next])
	doc.versionsRaw = strings.TrimRight(rest[next:], "\n")

	return doc
}

// parseCategorySections reads "### <Category>" subheadings followed by
// "- " bullet lines out of body.
func parseCategorySections(body string) map[domain.Category][]string {
	out := make(map[domain.Category][]string)

	var current domain.Category

	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, categoryHeadingMark):
			name := strings.TrimSpace(strings.TrimPrefix(line, categoryHeadingMark))
			current, _ = domain.ParseCategory(name)
		case strings.HasPrefix(line, bulletPrefix) && current != "":
			out[current] = append(out[current], strings.TrimPrefix(line, bulletPrefix))
		}
	}

	return out
}

// normalizeSummary folds case and collapses whitespace so that two Change
// summaries differing only in casing or spacing are treated as the same
// entry for deduplication purposes.
func normalizeSummary(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// mergeChangelog appends every week's Changelog fragment into the
// Unreleased section, deduplicating against both the existing on-disk
// entries and entries added earlier in the same merge, then (when the
// Merger is configured for release promotion) moves the resulting
// Unreleased content into a new versioned section.
func (m *Merger) mergeChangelog(weeks []domain.WeekArtifact) error {
	existing, err := readExisting(m.paths.Changelog)
	if err != nil {
		return err
	}

	doc := parseChangelog(existing)

	seen := make(map[domain.Category]map[string]bool, len(domain.CategoryOrder))
	for cat, entries := range doc.unreleased {
		set := make(map[string]bool, len(entries))
		for _, e := range entries {
			set[normalizeSummary(e)] = true
		}

		seen[cat] = set
	}

	for _, w := range weeks {
		for _, group := range w.OrderedChangelog() {
			if seen[group.Category] == nil {
				seen[group.Category] = make(map[string]bool)
			}

			for _, change := range group.Changes {
				key := normalizeSummary(change.Summary)
				if seen[group.Category][key] {
					continue
				}

				seen[group.Category][key] = true
				doc.unreleased[group.Category] = append(doc.unreleased[group.Category], change.Summary)
			}
		}
	}

	if m.ReleaseVersion != "" && m.ReleaseDate != "" {
		doc = promote(doc, m.ReleaseVersion, m.ReleaseDate)
	}

	return writeAtomic(m.paths.Changelog, []byte(renderChangelog(doc)))
}

// promote moves doc's entire Unreleased section into a new
// "## [<version>] - <date>" section prepended to versionsRaw, leaving
// Unreleased empty.
func promote(doc changelogDoc, version, date string) changelogDoc {
	body := renderCategoryBody(doc.unreleased)
	if strings.TrimSpace(body) == "" {
		return doc
	}

	heading := fmt.Sprintf("## [%s] - %s", version, date)
	section := heading + "\n\n" + strings.TrimRight(body, "\n") + "\n"

	if doc.versionsRaw == "" {
		doc.versionsRaw = strings.TrimRight(section, "\n")
	} else {
		doc.versionsRaw = strings.TrimRight(section, "\n") + "\n\n" + doc.versionsRaw
	}

	doc.unreleased = make(map[domain.Category][]string)

	return doc
}

// renderCategoryBody renders unreleased as "### <Category>" subheadings in
// domain.CategoryOrder, skipping empty categories.
func renderCategoryBody(unreleased map[domain.Category][]string) string {
	var b strings.Builder

	for _, cat := range domain.CategoryOrder {
		entries := unreleased[cat]
		if len(entries) == 0 {
			continue
		}

		b.WriteString(categoryHeadingMark)
		b.WriteString(string(cat))
		b.WriteString("\n\n")

		for _, e := range entries {
			b.WriteString(bulletPrefix)
			b.WriteString(e)
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

func renderChangelog(doc changelogDoc) string {
	var b strings.Builder

	b.WriteString("# Changelog\n\n")
	b.WriteString(unreleasedHeading)
	b.WriteString("\n\n")
	b.WriteString(renderCategoryBody(doc.unreleased))

	if doc.versionsRaw != "" {
		b.WriteString(strings.TrimRight(doc.versionsRaw, "\n"))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
