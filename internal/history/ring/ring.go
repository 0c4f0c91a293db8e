package ring

import "sync"

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 128

// Direction selects the scan order of Search.
type Direction int

const (
	// Older scans toward index 0.
	Older Direction = iota

	// Newer scans toward Len()-1.
	Newer
)

// Predicate reports whether an entry matches.
type Predicate func(entry string) bool

// Ring is a fixed-capacity, insertion-ordered store of command lines.
type Ring struct {
	mu sync.RWMutex

	buf   []string
	head  int // physical slot of the oldest entry
	count int

	newSincePersist int
}

// New creates an empty ring holding at most capacity entries.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		buf: make([]string, capacity),
	}
}

// NewFrom creates a ring seeded with entries, oldest first.
// Only the newest capacity entries survive.
func NewFrom(capacity int, entries []string) *Ring {
	r := New(capacity)
	r.Load(entries)
	return r
}

// Push appends line unless policy rejects it.
// It reports whether the line was recorded.
func (r *Ring) Push(line string, policy Policy) bool {
	if !policy.keep(line) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch policy.Dups {
	case DupsIgnoreConsecutive:
		if r.count > 0 && r.at(r.count-1) == line {
			return false
		}
	case DupsErase:
		r.eraseLocked(line)
	}

	r.appendLocked(line)
	r.newSincePersist++
	return true
}

// Load appends entries without counting them as new since the last persist.
func (r *Ring) Load(entries []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		r.appendLocked(e)
	}
}

// Get returns the entry at index, counting from the oldest.
func (r *Ring) Get(index int) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return "", ErrEmptyHistory
	}
	if index < 0 || index >= r.count {
		return "", &IndexError{Index: index, Len: r.count}
	}
	return r.at(index), nil
}

// Len returns the number of entries.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Cap returns the capacity.
func (r *Ring) Cap() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buf)
}

// Search scans from start in the given direction, wrapping around once,
// and returns the index of the first entry satisfying pred.
// A start outside the ring begins at the nearest end.
func (r *Ring) Search(pred Predicate, start int, dir Direction) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return -1, ErrEmptyHistory
	}
	if start < 0 {
		start = 0
	}
	if start >= r.count {
		start = r.count - 1
	}

	step := -1
	if dir == Newer {
		step = 1
	}

	i := start
	for n := 0; n < r.count; n++ {
		if pred(r.at(i)) {
			return i, nil
		}
		i = (i + step + r.count) % r.count
	}
	return -1, ErrNotFound
}

// Entries returns a copy of all entries, oldest first.
func (r *Ring) Entries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, r.count)
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}

// Newest returns up to n of the most recent entries, oldest first.
func (r *Ring) Newest(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = r.at(r.count - n + i)
	}
	return out
}

// NewSincePersist returns the number of entries pushed since the last
// MarkPersisted.
func (r *Ring) NewSincePersist() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newSincePersist
}

// MarkPersisted resets the new entry counter.
func (r *Ring) MarkPersisted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.newSincePersist = 0
}

// Resize changes the capacity, evicting the oldest entries if needed.
func (r *Ring) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if capacity == len(r.buf) {
		return
	}

	keep := r.count
	if keep > capacity {
		keep = capacity
	}
	buf := make([]string, capacity)
	for i := 0; i < keep; i++ {
		buf[i] = r.at(r.count - keep + i)
	}
	if r.newSincePersist > keep {
		r.newSincePersist = keep
	}
	r.buf = buf
	r.head = 0
	r.count = keep
}

// Clear removes all entries.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf = make([]string, len(r.buf))
	r.head = 0
	r.count = 0
	r.newSincePersist = 0
}

// at returns the logical entry i without locking.
func (r *Ring) at(i int) string {
	return r.buf[(r.head+i)%len(r.buf)]
}

// appendLocked adds line at the newest end, evicting the oldest when full.
func (r *Ring) appendLocked(line string) {
	if r.count == len(r.buf) {
		r.buf[r.head] = line
		r.head = (r.head + 1) % len(r.buf)
		return
	}
	r.buf[(r.head+r.count)%len(r.buf)] = line
	r.count++
}

// eraseLocked removes every copy of line, compacting the survivors.
// Copies removed from the unpersisted tail no longer count as new.
func (r *Ring) eraseLocked(line string) {
	firstNew := r.count - r.newSincePersist
	kept := make([]string, 0, r.count)
	erasedNew := 0
	for i := 0; i < r.count; i++ {
		e := r.at(i)
		if e != line {
			kept = append(kept, e)
			continue
		}
		if i >= firstNew {
			erasedNew++
		}
	}
	if len(kept) == r.count {
		return
	}
	r.newSincePersist -= erasedNew
	buf := make([]string, len(r.buf))
	copy(buf, kept)
	r.buf = buf
	r.head = 0
	r.count = len(kept)
}
