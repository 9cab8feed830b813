// Package cachestore implements the content-addressed filesystem cache
// described by the Cache Store component: one file per entry, keyed by a
// digest over namespace, prompt version, model identifier, and
// canonicalized structured input, written atomically and invalidated only
// when the key itself changes.
package cachestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/pkg/persist"
	"github.com/bramblewood/historian/pkg/units"
)

const (
	dirPerm   = 0o750
	filePerm  = 0o600
	tmpSuffix = ".tmp"

	// maxPayloadSize bounds a single cache entry: a pathological LLM
	// response or an unfitted diff blob should fail loudly rather than
	// silently writing an unbounded file under the cache root.
	maxPayloadSize = 8 * units.MiB
)

// envelope is the self-validating on-disk form of a cache entry: a
// checksum over the payload so that a reader can detect a torn or
// corrupted write without relying on file-locking.
type envelope struct {
	Checksum  string    `json:"checksum"`
	Payload   []byte    `json:"payload"`
	WrittenAt time.Time `json:"written_at"`
}

// Store is a filesystem-backed Cache Store rooted at a single directory.
type Store struct {
	root  string
	codec persist.Codec
}

// NewStore constructs a Store rooted at root. The directory is created
// lazily by Put, not by NewStore.
func NewStore(root string) *Store {
	return &Store{root: root, codec: persist.NewJSONCodec()}
}

// Get looks up the payload stored under key in namespace. found is false,
// with a nil error, both when no entry exists and when the stored entry
// failed its checksum (treated as a cache miss so the caller regenerates
// it rather than propagating a spurious failure).
func (s *Store) Get(namespace domain.Namespace, key []byte) (payload []byte, found bool, err error) {
	if len(key) == 0 {
		return nil, false, ErrEmptyKey
	}

	path := s.entryPath(namespace, key)

	file, openErr := os.Open(path)
	if openErr != nil {
		if os.IsNotExist(openErr) {
			return nil, false, nil
		}

		return nil, false, &CacheIOError{Op: "open", Err: openErr}
	}

	defer file.Close()

	var env envelope

	if decodeErr := s.codec.Decode(file, &env); decodeErr != nil {
		return nil, false, nil
	}

	if !validChecksum(env) {
		return nil, false, nil
	}

	return env.Payload, true, nil
}

// Put writes payload under key in namespace, atomically: encode to a temp
// file in the same directory, then rename over the final path. Concurrent
// Put calls to the same key are safe; the last writer wins and all writers
// are equivalent because the key already encodes every input that affects
// the payload.
func (s *Store) Put(namespace domain.Namespace, key, payload []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	if len(payload) > maxPayloadSize {
		return &CacheIOError{Op: "put", Err: fmt.Errorf("payload %d bytes exceeds %d byte cache entry limit", len(payload), maxPayloadSize)}
	}

	dir := s.entryDir(namespace, key)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return &CacheIOError{Op: "mkdir", Err: err}
	}

	env := envelope{
		Checksum:  checksumOf(payload),
		Payload:   payload,
		WrittenAt: time.Now(),
	}

	var buf bytes.Buffer

	if err := s.codec.Encode(&buf, env); err != nil {
		return &CacheIOError{Op: "encode", Err: err}
	}

	finalPath := s.entryPath(namespace, key)
	tmpPath := finalPath + tmpSuffix

	if err := os.WriteFile(tmpPath, buf.Bytes(), filePerm); err != nil {
		return &CacheIOError{Op: "write", Err: err}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return &CacheIOError{Op: "rename", Err: err}
	}

	return nil
}

// Clear removes every entry under namespace. An empty namespace clears the
// entire cache root.
func (s *Store) Clear(namespace domain.Namespace) error {
	target := s.root
	if namespace != "" {
		target = filepath.Join(s.root, string(namespace))
	}

	if err := os.RemoveAll(target); err != nil {
		return &CacheIOError{Op: "clear", Err: err}
	}

	return nil
}

func (s *Store) entryDir(namespace domain.Namespace, key []byte) string {
	hexKey := hex.EncodeToString(key)

	return filepath.Join(s.root, string(namespace), hexKey[:2])
}

func (s *Store) entryPath(namespace domain.Namespace, key []byte) string {
	hexKey := hex.EncodeToString(key)

	return filepath.Join(s.entryDir(namespace, key), hexKey[2:])
}

func checksumOf(payload []byte) string {
	sum := sha256.Sum256(payload)

	return hex.EncodeToString(sum[:])
}

func validChecksum(env envelope) bool {
	return env.Checksum == checksumOf(env.Payload)
}

var errMissingKey = errors.New("cache key must not be empty")

// ErrEmptyKey is returned by Get/Put when key is empty; a content-addressed
// cache has no defined meaning for an empty key.
var ErrEmptyKey = errMissingKey
