package graph

import "globe-graph/internal/debug"

// SessionState is where the curve editor is.
type SessionState int

const (
	Idle SessionState = iota
	Editing
	Dragging
)

func (s SessionState) String() string {
	switch s {
	case Editing:
		return "editing"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Session is the single curve-editing session of a graph. At most one edge
// is edited at a time; starting on another edge ends the current session
// first.
type Session struct {
	// OnStart and OnEnd fire when an edge enters and leaves editing.
	OnStart func(*Edge)
	OnEnd   func(*Edge)

	edge   *Edge
	handle Handle
}

// State returns the current state.
func (s *Session) State() SessionState {
	switch {
	case s.edge == nil:
		return Idle
	case s.handle != NoHandle:
		return Dragging
	default:
		return Editing
	}
}

// Edge returns the edge being edited, or nil.
func (s *Session) Edge() *Edge { return s.edge }

// Handle returns the handle being dragged, or NoHandle.
func (s *Session) Handle() Handle { return s.handle }

// Start makes e the edited edge, ending any session on another edge.
func (s *Session) Start(e *Edge) {
	if e == nil || s.edge == e {
		return
	}
	s.End()
	s.edge = e
	s.handle = NoHandle
	debug.Log("graph: editing %s-%s", e.Head.ID, e.Tail.ID)
	if s.OnStart != nil {
		s.OnStart(e)
	}
}

// End leaves editing. It does nothing when idle.
func (s *Session) End() {
	if s.edge == nil {
		return
	}
	e := s.edge
	s.edge = nil
	s.handle = NoHandle
	debug.Log("graph: editing of %s-%s ended", e.Head.ID, e.Tail.ID)
	if s.OnEnd != nil {
		s.OnEnd(e)
	}
}

// Grab starts dragging h of the edited edge.
func (s *Session) Grab(h Handle) {
	if s.edge != nil {
		s.handle = h
	}
}

// Release stops dragging and returns to editing.
func (s *Session) Release() {
	s.handle = NoHandle
}
