package cachestore

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bramblewood/historian/internal/domain"
)

// Key derives the content key for a cache entry: the SHA-256 digest of
// namespace || promptVersion || modelIdentifier || canonicalized structured
// input, so that any change to a contributing input invalidates the entry
// (spec §4.4). structuredInput is marshaled through canonicalize, which
// forces consistent UTF-8 JSON with recursively sorted map keys regardless
// of how the caller originally built the value.
func Key(namespace domain.Namespace, promptVersion, modelIdentifier string, structuredInput any) ([]byte, error) {
	canonical, err := canonicalize(structuredInput)
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(promptVersion))
	h.Write([]byte{0})
	h.Write([]byte(modelIdentifier))
	h.Write([]byte{0})
	h.Write(canonical)

	return h.Sum(nil), nil
}

// canonicalize marshals v to JSON and round-trips it through a generic
// representation, which forces encoding/json's key-sorting and
// ASCII-escaping behavior regardless of v's original field order or map
// implementation.
func canonicalize(v any) ([]byte, error) {
	first, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic any

	if err := json.Unmarshal(first, &generic); err != nil {
		return nil, err
	}

	sorted, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}

	return asciiEscape(sorted), nil
}

// asciiEscape rewrites every non-ASCII rune in a JSON byte sequence as a
// \uXXXX escape, so that canonicalization never depends on which UTF-8
// encoder produced the bytes.
func asciiEscape(b []byte) []byte {
	var out strings.Builder

	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r < utf8.RuneSelf {
			out.WriteByte(b[i])
			i++

			continue
		}

		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
		} else {
			fmt.Fprintf(&out, `\u%04x`, r)
		}

		i += size
	}

	return []byte(out.String())
}

func utf16Surrogates(r rune) (rune, rune) {
	const (
		surrogateBase = 0x10000
		highShift     = 10
		lowMask       = 0x3FF
		highSurrogate = 0xD800
		lowSurrogate  = 0xDC00
	)

	r -= surrogateBase

	return highSurrogate + (r >> highShift), lowSurrogate + (r & lowMask)
}
