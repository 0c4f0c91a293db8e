// Package session ties a history ring to its file, its configuration and
// the expansion engine for one interactive session.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/bangline/internal/config"
	"github.com/dshills/bangline/internal/filter"
	"github.com/dshills/bangline/internal/history/complete"
	"github.com/dshills/bangline/internal/history/expand"
	"github.com/dshills/bangline/internal/history/ring"
	"github.com/dshills/bangline/internal/history/store"
	"github.com/dshills/bangline/internal/logging"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Session is one interactive session's history.
//
// Expand is read-only. Submit and Commit are the only operations that add
// to the ring. All methods are safe for concurrent use; a config reload may
// arrive on another goroutine while the prompt loop is submitting lines.
type Session struct {
	mu sync.Mutex

	id      string
	cfg     *config.Config
	ring    *ring.Ring
	store   store.Store
	policy  ring.Policy
	lastSub *expand.Substitution

	filter   *filter.LuaFilter
	ownStore bool
	closed   bool

	base *logging.Logger
	log  *logging.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithStore replaces the file store built from the configuration.
func WithStore(st store.Store) Option {
	return func(s *Session) {
		s.store = st
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// New creates a session and seeds its ring from the store.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:  uuid.NewString(),
		cfg: cfg.Clone(),
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base = s.log.WithField("session", s.id)
	s.log = s.base.WithComponent("session")

	if s.store == nil {
		st, err := s.fileStore(s.cfg)
		if err != nil {
			return nil, err
		}
		s.store = st
		s.ownStore = true
	}

	f, err := s.openFilter(s.cfg.History.FilterScript)
	if err != nil {
		return nil, err
	}
	s.filter = f
	s.policy = s.cfg.Policy(s.filterPredicate())

	entries, err := s.store.Load()
	if err != nil {
		s.closeFilter()
		return nil, err
	}
	s.ring = ring.NewFrom(s.cfg.History.Size, entries)

	s.log.Debug("started with %d of %d saved entries", s.ring.Len(), len(entries))
	return s, nil
}

func (s *Session) fileStore(cfg *config.Config) (*store.FileStore, error) {
	codec, err := store.CodecFor(cfg.History.Format, s.id)
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(cfg.HistoryPath(), codec, store.WithLogger(s.base)), nil
}

// openFilter loads the filter script. An empty script yields nil.
func (s *Session) openFilter(script string) (*filter.LuaFilter, error) {
	if script == "" {
		return nil, nil
	}
	return filter.LoadFile(config.ExpandHome(script), filter.WithLogger(s.base))
}

func (s *Session) filterPredicate() ring.Filter {
	if s.filter == nil {
		return nil
	}
	return s.filter.Predicate()
}

func (s *Session) closeFilter() {
	if s.filter != nil {
		s.filter.Close()
		s.filter = nil
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Ring returns the history ring.
func (s *Session) Ring() *ring.Ring {
	return s.ring
}

// Config returns a copy of the configuration in effect.
func (s *Session) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Expand expands line against the history without recording anything.
func (s *Session) Expand(line string) (expand.Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return expand.Result{}, ErrClosed
	}
	ctx := expand.Context{History: s.ring, LastSub: s.lastSub}
	s.mu.Unlock()

	return expand.ExpandLine(ctx, line)
}

// Submit expands line and records the result. A failed expansion records
// nothing. A :p line is recorded but should be shown rather than run.
func (s *Session) Submit(line string) (expand.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return expand.Result{}, ErrClosed
	}

	ctx := expand.Context{History: s.ring, LastSub: s.lastSub}
	res, err := expand.ExpandLine(ctx, line)
	if err != nil {
		s.log.Debug("expansion failed: %v", err)
		return res, err
	}

	s.lastSub = res.LastSub
	s.record(res.Line)
	return res, nil
}

// Commit records line as typed, without expansion. It reports whether the
// insertion policy accepted it.
func (s *Session) Commit(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.record(line)
}

func (s *Session) record(line string) bool {
	if !s.ring.Push(line, s.policy) {
		return false
	}
	if t, ok := s.store.(store.Toucher); ok {
		t.Touch(line)
	}
	return true
}

// Entries returns the history, oldest first.
func (s *Session) Entries() []string {
	return s.ring.Entries()
}

// Complete returns history entries matching a partial "!str" or "!?str".
func (s *Session) Complete(partial string, limit int) []string {
	return complete.Candidates(s.ring, partial, limit)
}

// CompleteWord completes a partial "!str" to "!command" designators.
func (s *Session) CompleteWord(partial string) []string {
	return complete.Designators(s.ring, partial)
}

// Flush saves the history. In append-only mode only entries added since
// the last flush are written.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Session) flushLocked() error {
	appendOnly := s.cfg.History.AppendOnly

	var entries []string
	if appendOnly {
		entries = s.ring.Newest(s.ring.NewSincePersist())
	} else {
		entries = s.ring.Entries()
	}

	if err := s.store.Flush(entries, appendOnly); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	s.ring.MarkPersisted()
	return nil
}

// Reconfigure applies a new configuration: the ring is resized, the policy
// and filter script are replaced, and a changed history file takes effect
// after the pending entries are flushed to the old one. On error the
// session keeps its previous configuration.
func (s *Session) Reconfigure(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	old := s.cfg
	next := cfg.Clone()

	filterChanged := next.History.FilterScript != old.History.FilterScript
	var nextFilter *filter.LuaFilter
	if filterChanged {
		f, err := s.openFilter(next.History.FilterScript)
		if err != nil {
			return err
		}
		nextFilter = f
	}
	discard := func() {
		if nextFilter != nil {
			nextFilter.Close()
		}
	}

	var nextStore store.Store
	if s.ownStore && (next.HistoryPath() != old.HistoryPath() || next.History.Format != old.History.Format) {
		st, err := s.fileStore(next)
		if err != nil {
			discard()
			return err
		}
		if err := s.flushLocked(); err != nil {
			discard()
			return err
		}
		nextStore = st
	}

	if filterChanged {
		s.closeFilter()
		s.filter = nextFilter
	}
	if nextStore != nil {
		s.store = nextStore
		s.log.Info("history file is now %s", next.HistoryPath())
	}
	if next.History.Size != old.History.Size {
		s.ring.Resize(next.History.Size)
	}

	s.cfg = next
	s.policy = next.Policy(s.filterPredicate())
	s.log.Debug("reconfigured: size=%d dups=%s append=%v", next.History.Size, next.History.Dups, next.History.AppendOnly)
	return nil
}

// Close flushes the history and releases the filter. Closing twice is a
// no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	err := s.flushLocked()
	s.closeFilter()
	return err
}

// Release closes the session without saving, for read-only use.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.closeFilter()
}
