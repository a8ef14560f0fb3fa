// Package queue implements the swipe queue: a fixed number of outfit slots,
// some resolved and some placeholders waiting for a background fetch, a
// cursor the user moves with like/pass/back, and the liked/passed buckets
// handed to the results view once the last slot is decided.
package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dressi-app/dressi/internal/outfit"
	"github.com/google/uuid"
)

const (
	DefaultCapacity     = 20
	DefaultPlaceholders = 4
)

var (
	// ErrExhausted is returned by operations that need an active cursor.
	ErrExhausted = errors.New("queue is exhausted")
	// ErrAtStart is returned by Rewind on the first slot.
	ErrAtStart = errors.New("queue is at the first slot")
	// ErrPlaceholder is returned by Decide while the current slot is unresolved.
	ErrPlaceholder = errors.New("current slot is still loading")
	// ErrDisposed is returned by every mutator after Dispose.
	ErrDisposed = errors.New("queue is disposed")
)

// State of the queue.
type State int

const (
	Active State = iota
	Exhausted
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the user's decision on a slot.
type Outcome int

const (
	Pass Outcome = iota
	Like
)

func (o Outcome) String() string {
	if o == Like {
		return "like"
	}
	return "pass"
}

// Slot is one position in the queue. Placeholder slots carry only an ID for
// render keying; their Outfit is empty.
type Slot struct {
	ID          string
	Placeholder bool
	Outfit      outfit.Outfit
}

// Options configure a queue. A zero Capacity means DefaultCapacity, and then
// a zero Placeholders means DefaultPlaceholders too.
type Options struct {
	Capacity     int
	Placeholders int
	// OnExhausted receives the liked bucket once, when the cursor moves past
	// the last slot. It is called without the queue lock held.
	OnExhausted func(liked []outfit.Outfit)
}

type decision struct {
	slot    int
	outcome Outcome
	record  outfit.Outfit
}

// Queue is safe for concurrent use.
type Queue struct {
	mu          sync.Mutex
	slots       []Slot
	capacity    int
	cursor      int
	state       State
	decisions   []decision
	disposed    bool
	onExhausted func([]outfit.Outfit)
}

// New builds a queue from the initial batch: deduplicated, truncated to
// capacity minus the placeholder count, then padded with placeholders so the
// queue always holds exactly capacity slots.
func New(initial []outfit.Outfit, opts Options) (*Queue, error) {
	capacity, placeholders := opts.Capacity, opts.Placeholders
	if capacity == 0 {
		capacity = DefaultCapacity
		if placeholders == 0 {
			placeholders = DefaultPlaceholders
		}
	}
	if capacity < 1 {
		return nil, fmt.Errorf("invalid capacity %d", capacity)
	}
	if placeholders < 0 || placeholders > capacity {
		return nil, fmt.Errorf("invalid placeholder count %d for capacity %d", placeholders, capacity)
	}

	resolved := outfit.Dedupe(initial)
	if limit := capacity - placeholders; len(resolved) > limit {
		resolved = resolved[:limit]
	}

	slots := make([]Slot, 0, capacity)
	for _, rec := range resolved {
		slots = append(slots, resolvedSlot(rec))
	}
	for len(slots) < capacity {
		slots = append(slots, Slot{ID: "placeholder-" + uuid.NewString(), Placeholder: true})
	}

	return &Queue{
		slots:       slots,
		capacity:    capacity,
		onExhausted: opts.OnExhausted,
	}, nil
}

// DefaultOptions returns the swipe screen's sizing: twenty slots, four of
// them reserved for the background fetch.
func DefaultOptions() Options {
	return Options{Capacity: DefaultCapacity, Placeholders: DefaultPlaceholders}
}

func resolvedSlot(rec outfit.Outfit) Slot {
	return Slot{ID: outfit.IdentityKey(rec), Outfit: rec.Clone()}
}

// MergeBatch places newly fetched records into open placeholder slots at or
// after the cursor, appending while below capacity when none is free.
// Records whose identity is already resolved somewhere in the queue are
// skipped, as are records with nowhere to go. The whole batch is applied
// under one lock acquisition. It returns the number of records placed.
func (q *Queue) MergeBatch(incoming []outfit.Outfit) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.disposed {
		return 0, ErrDisposed
	}

	existing := make(map[string]struct{}, len(q.slots))
	for _, s := range q.slots {
		if !s.Placeholder {
			existing[outfit.IdentityKey(s.Outfit)] = struct{}{}
		}
	}

	placed := 0
	for _, rec := range incoming {
		key := outfit.IdentityKey(rec)
		if _, dup := existing[key]; dup {
			continue
		}

		if idx := q.openPlaceholder(); idx >= 0 {
			q.slots[idx] = resolvedSlot(rec)
		} else if len(q.slots) < q.capacity {
			q.slots = append(q.slots, resolvedSlot(rec))
		} else {
			continue
		}
		existing[key] = struct{}{}
		placed++
	}
	return placed, nil
}

// openPlaceholder returns the earliest placeholder the user has not moved
// past, or -1.
func (q *Queue) openPlaceholder() int {
	if q.state == Exhausted {
		return -1
	}
	for i := q.cursor; i < len(q.slots); i++ {
		if q.slots[i].Placeholder {
			return i
		}
	}
	return -1
}

// CurrentSlot returns the slot under the cursor.
func (q *Queue) CurrentSlot() (Slot, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == Exhausted {
		return Slot{}, ErrExhausted
	}
	return copySlot(q.slots[q.cursor]), nil
}

// Decide records the outcome for the current slot and advances. Deciding on
// an unresolved placeholder is refused with ErrPlaceholder.
func (q *Queue) Decide(outcome Outcome) error {
	q.mu.Lock()
	if err := q.checkActive(); err != nil {
		q.mu.Unlock()
		return err
	}
	current := q.slots[q.cursor]
	if current.Placeholder {
		q.mu.Unlock()
		return ErrPlaceholder
	}
	q.decisions = append(q.decisions, decision{
		slot:    q.cursor,
		outcome: outcome,
		record:  current.Outfit.Clone(),
	})
	liked, done := q.advanceLocked()
	q.mu.Unlock()

	q.emit(liked, done)
	return nil
}

// Advance moves to the next slot without recording a decision. Moving past
// the last slot exhausts the queue and hands the liked bucket to OnExhausted.
func (q *Queue) Advance() error {
	q.mu.Lock()
	if err := q.checkActive(); err != nil {
		q.mu.Unlock()
		return err
	}
	liked, done := q.advanceLocked()
	q.mu.Unlock()

	q.emit(liked, done)
	return nil
}

// Rewind steps back one slot. A decision recorded on the slot being
// returned to is withdrawn, so deciding again does not duplicate it.
func (q *Queue) Rewind() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkActive(); err != nil {
		return err
	}
	if q.cursor == 0 {
		return ErrAtStart
	}
	q.cursor--
	if n := len(q.decisions); n > 0 && q.decisions[n-1].slot == q.cursor {
		q.decisions = q.decisions[:n-1]
	}
	return nil
}

// Dispose marks the queue dead. Later merges and moves return ErrDisposed
// and OnExhausted will not fire.
func (q *Queue) Dispose() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.disposed = true
}

func (q *Queue) checkActive() error {
	if q.disposed {
		return ErrDisposed
	}
	if q.state == Exhausted {
		return ErrExhausted
	}
	return nil
}

func (q *Queue) advanceLocked() ([]outfit.Outfit, bool) {
	if q.cursor+1 < len(q.slots) {
		q.cursor++
		return nil, false
	}
	q.cursor = len(q.slots)
	q.state = Exhausted
	return q.bucketLocked(Like), true
}

func (q *Queue) emit(liked []outfit.Outfit, done bool) {
	if done && q.onExhausted != nil {
		q.onExhausted(liked)
	}
}

func (q *Queue) bucketLocked(outcome Outcome) []outfit.Outfit {
	out := make([]outfit.Outfit, 0, len(q.decisions))
	for _, d := range q.decisions {
		if d.outcome == outcome {
			out = append(out, d.record.Clone())
		}
	}
	return out
}

func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Queue) Cursor() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.slots)
}

// Slots returns a copy of every slot in order.
func (q *Queue) Slots() []Slot {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Slot, len(q.slots))
	for i, s := range q.slots {
		out[i] = copySlot(s)
	}
	return out
}

// Liked returns the liked bucket in decision order.
func (q *Queue) Liked() []outfit.Outfit {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bucketLocked(Like)
}

// Passed returns the passed bucket in decision order.
func (q *Queue) Passed() []outfit.Outfit {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bucketLocked(Pass)
}

// Pending counts placeholder slots still waiting for a record.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, s := range q.slots {
		if s.Placeholder {
			n++
		}
	}
	return n
}

func copySlot(s Slot) Slot {
	s.Outfit = s.Outfit.Clone()
	return s
}
