package notify

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

// fakeClock records scheduled callbacks instead of running them.
type fakeClock struct {
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (c *fakeClock) after(d time.Duration, f func()) func() bool {
	t := &fakeTimer{d: d, f: f}
	c.pending = append(c.pending, t)
	return func() bool {
		was := !t.stopped
		t.stopped = true
		return was
	}
}

// fire runs every timer that was not stopped, as if they all elapsed.
func (c *fakeClock) fire() {
	timers := c.pending
	c.pending = nil
	for _, t := range timers {
		if !t.stopped {
			t.f()
		}
	}
}

func TestSuccessClearsAfterTimeout(t *testing.T) {
	clock := &fakeClock{}
	b := NewBoard(clock.after)
	var seen []string
	b.OnChange = func(n *Notice) {
		if n == nil {
			seen = append(seen, "cleared")
			return
		}
		seen = append(seen, n.Kind.String())
	}

	b.Notify(Success, "Graph loaded.")
	if len(clock.pending) != 1 || clock.pending[0].d != SuccessTimeout {
		t.Fatalf("expected one %v timer, got %+v", SuccessTimeout, clock.pending)
	}
	if n, ok := b.Current(); !ok || n.Text != "Graph loaded." {
		t.Fatalf("notice not shown: %+v", n)
	}
	clock.fire()
	if _, ok := b.Current(); ok {
		t.Error("success notice should clear itself")
	}
	if strings.Join(seen, ",") != "success,cleared" {
		t.Errorf("unexpected callbacks %v", seen)
	}
}

func TestErrorAndInfoPersist(t *testing.T) {
	clock := &fakeClock{}
	b := NewBoard(clock.after)
	b.Notify(Error, "Globe not found.")
	b.Notify(Info, "Edit mode")
	if len(clock.pending) != 0 {
		t.Errorf("only success notices schedule a clear, got %d timers", len(clock.pending))
	}
	if n, _ := b.Current(); n.Kind != Info || n.Text != "Edit mode" {
		t.Errorf("newest notice should win, got %+v", n)
	}
}

func TestNewerNoticeCancelsPendingClear(t *testing.T) {
	clock := &fakeClock{}
	b := NewBoard(clock.after)
	b.Notify(Success, "first")
	timer := clock.pending[0]
	b.Notify(Error, "second")
	if !timer.stopped {
		t.Error("replacing a success notice should cancel its clear")
	}
	// a timer that fired anyway must not clear the newer notice
	timer.f()
	if n, ok := b.Current(); !ok || n.Text != "second" {
		t.Errorf("stale clear removed the newer notice: %+v %v", n, ok)
	}
}

func TestClearIf(t *testing.T) {
	b := NewBoard(func(time.Duration, func()) func() bool { return func() bool { return true } })
	b.Notify(Info, "Edit mode")
	b.ClearIf("something else")
	if _, ok := b.Current(); !ok {
		t.Fatal("ClearIf removed a different notice")
	}
	b.ClearIf("Edit mode")
	if _, ok := b.Current(); ok {
		t.Error("ClearIf should remove a matching notice")
	}
	b.Clear()
}

func TestConsole(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := &Console{Out: &buf}
	c.Notify(Error, "could not reach server")
	c.Notify(Success, "done")
	want := "[error] could not reach server\n[success] done\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
