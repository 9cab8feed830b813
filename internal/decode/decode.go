// Package decode implements the tolerant-decode pipeline: parsing
// JSON-shaped LLM output that may be wrapped in prose, Markdown fences, or
// contain the small set of informal deviations LLMs commonly emit
// (trailing commas, unquoted keys, single-quoted strings, comments, bare
// undefined/NaN/Infinity tokens).
package decode

import (
	"encoding/json"
	"errors"
)

var errUnparseable = errors.New("no transform produced a valid JSON structure")

type stage struct {
	name      string
	transform func(string) string
}

// pipeline is the fixed, ordered sequence of idempotent textual transforms
// applied cumulatively, with a strict parse attempt after each.
var pipeline = []stage{
	{"strip_fences_and_prose", stripFencesAndProse},
	{"remove_comments", removeComments},
	{"normalize_literals", normalizeLiterals},
	{"remove_trailing_commas", removeTrailingCommas},
	{"single_to_double_quotes", singleToDoubleQuotes},
	{"quote_unquoted_keys", quoteUnquotedKeys},
}

// Decode parses raw as JSON, tolerating the deviations LLMs commonly
// produce. On success, v is populated via encoding/json.Unmarshal. Decode
// never panics and never blocks; it fails with a *ParseError only when no
// transform in the pipeline, including the final salvage pass, yields a
// strictly valid structure.
func Decode(raw string, v any) error {
	current := raw
	lastStage := "none"

	if err := json.Unmarshal([]byte(current), v); err == nil {
		return nil
	}

	for _, s := range pipeline {
		current = s.transform(current)
		lastStage = s.name

		if err := json.Unmarshal([]byte(current), v); err == nil {
			return nil
		}
	}

	if salvaged, ok := salvage(current); ok {
		lastStage = "salvage"
		if err := json.Unmarshal([]byte(salvaged), v); err == nil {
			return nil
		}
	}

	return &ParseError{
		InputLength: len(raw),
		LastStage:   lastStage,
		Err:         errUnparseable,
	}
}
