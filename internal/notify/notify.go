// Package notify holds the single visible notice and the sinks that show
// it.
package notify

import (
	"sync"
	"time"

	"globe-graph/internal/debug"
)

// SuccessTimeout is how long a success notice stays up.
const SuccessTimeout = 5 * time.Second

// Kind is the severity of a notice.
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notice is one message shown to the user.
type Notice struct {
	Kind Kind
	Text string
}

// Sink receives notices. Notify never blocks and never fails.
type Sink interface {
	Notify(kind Kind, text string)
}

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (cancel func() bool)

// AfterFunc is the default scheduler.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Board keeps at most one notice. A success notice clears itself after
// SuccessTimeout unless a newer notice replaced it first.
type Board struct {
	// OnChange is called with the new notice, or nil when cleared.
	OnChange func(*Notice)

	after Scheduler

	mu      sync.Mutex
	current *Notice
	gen     uint64
	cancel  func() bool
}

// NewBoard creates a board that schedules its timeouts with after. A nil
// after uses AfterFunc.
func NewBoard(after Scheduler) *Board {
	if after == nil {
		after = AfterFunc
	}
	return &Board{after: after}
}

// SetScheduler changes how later timeouts are scheduled.
func (b *Board) SetScheduler(after Scheduler) {
	if after == nil {
		after = AfterFunc
	}
	b.mu.Lock()
	b.after = after
	b.mu.Unlock()
}

// Notify replaces the current notice.
func (b *Board) Notify(kind Kind, text string) {
	b.mu.Lock()
	b.stopLocked()
	b.gen++
	n := &Notice{Kind: kind, Text: text}
	b.current = n
	if kind == Success {
		gen := b.gen
		b.cancel = b.after(SuccessTimeout, func() { b.expire(gen) })
	}
	cb := b.OnChange
	b.mu.Unlock()

	debug.Log("notify: %s: %s", kind, text)
	if cb != nil {
		cb(n)
	}
}

// Clear removes the current notice.
func (b *Board) Clear() {
	b.mu.Lock()
	if b.current == nil {
		b.mu.Unlock()
		return
	}
	b.stopLocked()
	b.gen++
	b.current = nil
	cb := b.OnChange
	b.mu.Unlock()

	if cb != nil {
		cb(nil)
	}
}

// ClearIf removes the current notice only if its text is text.
func (b *Board) ClearIf(text string) {
	b.mu.Lock()
	match := b.current != nil && b.current.Text == text
	b.mu.Unlock()
	if match {
		b.Clear()
	}
}

// Current returns the notice on display.
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

func (b *Board) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.current == nil {
		b.mu.Unlock()
		return
	}
	b.gen++
	b.current = nil
	b.cancel = nil
	cb := b.OnChange
	b.mu.Unlock()

	if cb != nil {
		cb(nil)
	}
}

func (b *Board) stopLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}
