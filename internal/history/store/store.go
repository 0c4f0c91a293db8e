// Package store persists history entries to a file.
//
// A Store is the only component that touches disk. The ring asks it for
// the saved entries once at startup and hands entries back on flush, either
// all of them (the file is rewritten) or only those added since the last
// flush (the file is appended to).
package store

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dshills/bangline/internal/logging"
)

// Store loads and saves history entries.
type Store interface {
	// Load returns the saved entries, oldest first.
	Load() ([]string, error)

	// Flush saves entries. When appendOnly is set, entries are added to
	// the end of what is already saved; otherwise they replace it.
	Flush(entries []string, appendOnly bool) error
}

// Toucher is implemented by stores and codecs that keep per-entry state,
// such as a timestamp, which must be refreshed when the entry is recorded
// again.
type Toucher interface {
	Touch(entry string)
}

// FileStore is a Store backed by one file.
type FileStore struct {
	path  string
	codec Codec
	perm  fs.FileMode
	log   *logging.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithPerm sets the mode used when the file is created.
func WithPerm(perm fs.FileMode) Option {
	return func(s *FileStore) {
		s.perm = perm
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *FileStore) {
		s.log = log.WithComponent("store")
	}
}

// NewFileStore creates a store for path. A nil codec selects PlainCodec.
func NewFileStore(path string, codec Codec, opts ...Option) *FileStore {
	if codec == nil {
		codec = PlainCodec{}
	}
	s := &FileStore{
		path:  path,
		codec: codec,
		perm:  0o600,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Touch passes entry to the codec when it implements Toucher.
func (s *FileStore) Touch(entry string) {
	if t, ok := s.codec.(Toucher); ok {
		t.Touch(entry)
	}
}

// Path returns the history file path.
func (s *FileStore) Path() string {
	return s.path
}

// Codec returns the codec in use.
func (s *FileStore) Codec() Codec {
	return s.codec
}

// Load reads the file. A missing file yields no entries and no error.
// Lines the codec cannot decode are skipped.
func (s *FileStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &PathError{Op: "load", Path: s.path, Err: err}
	}

	var entries []string
	skipped := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		entry, ok := s.codec.Decode(sc.Text())
		if !ok {
			if sc.Text() != "" {
				skipped++
			}
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, &PathError{Op: "load", Path: s.path, Err: err}
	}

	if skipped > 0 {
		s.log.Warn("skipped %d unreadable lines in %s", skipped, s.path)
	}
	s.log.Debug("loaded %d entries from %s", len(entries), s.path)
	return entries, nil
}

// Flush saves entries. A full flush writes a temporary file next to the
// history file and renames it into place.
func (s *FileStore) Flush(entries []string, appendOnly bool) error {
	if appendOnly && len(entries) == 0 {
		return nil
	}

	data, err := s.encode(entries)
	if err != nil {
		return &PathError{Op: "encode", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &PathError{Op: "mkdir", Path: dir, Err: err}
	}

	if appendOnly {
		err = s.appendFile(data)
	} else {
		err = s.replaceFile(data)
	}
	if err != nil {
		return err
	}

	s.log.Debug("flushed %d entries to %s (append=%v)", len(entries), s.path, appendOnly)
	return nil
}

func (s *FileStore) encode(entries []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := s.codec.Encode(e)
		if err != nil {
			return nil, err
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (s *FileStore) appendFile(data []byte) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.perm)
	if err != nil {
		return &PathError{Op: "open", Path: s.path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &PathError{Op: "write", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &PathError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

func (s *FileStore) replaceFile(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return &PathError{Op: "create", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return &PathError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Chmod(s.perm); err != nil {
		cleanup()
		return &PathError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return &PathError{Op: "sync", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PathError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &PathError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

// MemStore is an in-memory Store.
type MemStore struct {
	Entries []string
	Flushes int
}

// Load implements Store.
func (m *MemStore) Load() ([]string, error) {
	return append([]string(nil), m.Entries...), nil
}

// Flush implements Store.
func (m *MemStore) Flush(entries []string, appendOnly bool) error {
	if appendOnly {
		m.Entries = append(m.Entries, entries...)
	} else {
		m.Entries = append([]string(nil), entries...)
	}
	m.Flushes++
	return nil
}
