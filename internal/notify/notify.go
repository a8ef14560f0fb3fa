// Package notify shows one transient banner at a time and clears it after a
// fixed delay.
package notify

import (
	"sync"
	"time"
)

// DefaultDelay is how long a banner stays up.
const DefaultDelay = 4 * time.Second

type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

type Banner struct {
	Kind    Kind
	Message string
}

// Timer is the part of *time.Timer the notifier needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Notifier struct {
	mu        sync.Mutex
	delay     time.Duration
	afterFunc AfterFunc
	current   *Banner
	seq       uint64
	timer     Timer
	onChange  func(Banner, bool)
}

type Option func(*Notifier)

// WithAfterFunc replaces the scheduler, for tests.
func WithAfterFunc(f AfterFunc) Option {
	return func(n *Notifier) { n.afterFunc = f }
}

// WithOnChange registers a callback run whenever a banner appears or is
// cleared. It runs without the notifier lock held.
func WithOnChange(f func(b Banner, visible bool)) Option {
	return func(n *Notifier) { n.onChange = f }
}

// New creates a notifier. A non-positive delay means DefaultDelay.
func New(delay time.Duration, opts ...Option) *Notifier {
	if delay <= 0 {
		delay = DefaultDelay
	}
	n := &Notifier{delay: delay, afterFunc: realAfterFunc}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show replaces the current banner and restarts the dismiss timer.
func (n *Notifier) Show(kind Kind, message string) {
	b := Banner{Kind: kind, Message: message}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = &b
	n.timer = n.afterFunc(n.delay, func() { n.expire(seq) })
	onChange := n.onChange
	n.mu.Unlock()

	if onChange != nil {
		onChange(b, true)
	}
}

func (n *Notifier) Success(message string) { n.Show(Success, message) }
func (n *Notifier) Error(message string)   { n.Show(Error, message) }

// expire clears the banner only if it is still the one the timer was set for.
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if n.seq != seq || n.current == nil {
		n.mu.Unlock()
		return
	}
	b := *n.current
	n.current = nil
	n.timer = nil
	onChange := n.onChange
	n.mu.Unlock()

	if onChange != nil {
		onChange(b, false)
	}
}

// Dismiss clears the banner now.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	seq := n.seq
	if n.timer != nil {
		n.timer.Stop()
	}
	n.mu.Unlock()
	n.expire(seq)
}

// Current returns the visible banner, if any.
func (n *Notifier) Current() (Banner, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Banner{}, false
	}
	return *n.current, true
}
