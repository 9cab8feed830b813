package domain

import (
	"errors"
	"time"
)

// Namespace tags the four cache tiers a CacheEntry may belong to.
type Namespace string

const (
	NamespaceCommit          Namespace = "commit"
	NamespaceDaily           Namespace = "daily"
	NamespaceWeeklyNarrative Namespace = "weekly-narrative"
	NamespaceWeeklyChangelog Namespace = "weekly-changelog"
)

var validNamespaces = map[Namespace]bool{
	NamespaceCommit:          true,
	NamespaceDaily:           true,
	NamespaceWeeklyNarrative: true,
	NamespaceWeeklyChangelog: true,
}

// ErrUnknownNamespace is returned when a CacheEntry is constructed with a
// namespace outside the fixed set.
var ErrUnknownNamespace = errors.New("unknown cache namespace")

// ErrEmptyCacheKey is returned when a CacheEntry is constructed without a
// content key.
var ErrEmptyCacheKey = errors.New("cache key must not be empty")

// CacheEntry is one persisted unit in the Cache Store: a namespace tag, a
// content-derived key, the cached payload, and the time it was written.
// Invalidation happens only when the content key changes, never by time.
type CacheEntry struct {
	Namespace Namespace
	Key       []byte
	Payload   []byte
	WrittenAt time.Time
}

// NewCacheEntry validates and constructs a CacheEntry.
func NewCacheEntry(namespace Namespace, key, payload []byte, writtenAt time.Time) (CacheEntry, error) {
	if !validNamespaces[namespace] {
		return CacheEntry{}, &ValidationError{Field: "namespace", Err: ErrUnknownNamespace}
	}

	if len(key) == 0 {
		return CacheEntry{}, &ValidationError{Field: "key", Err: ErrEmptyCacheKey}
	}

	return CacheEntry{
		Namespace: namespace,
		Key:       key,
		Payload:   payload,
		WrittenAt: writtenAt,
	}, nil
}
