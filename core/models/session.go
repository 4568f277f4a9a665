package models

import "fmt"

// SessionState is the lifecycle of a watch session.
type SessionState int

const (
	SessionNotStarted SessionState = iota
	SessionDiscovering
	SessionReady
	SessionClosed
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionNotStarted:
		return "not-started"
	case SessionDiscovering:
		return "discovering"
	case SessionReady:
		return "ready"
	case SessionClosed:
		return "closed"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanTransition reports whether a session may move from s to next.
func (s SessionState) CanTransition(next SessionState) bool {
	switch s {
	case SessionNotStarted:
		return next == SessionDiscovering || next == SessionClosed
	case SessionDiscovering:
		return next == SessionReady || next == SessionFailed || next == SessionClosed
	case SessionReady:
		return next == SessionClosed || next == SessionFailed
	default:
		return false
	}
}

type EventKind int

const (
	EventAdd EventKind = iota
	EventChange
	EventRemove
	EventReady
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "add"
	case EventChange:
		return "change"
	case EventRemove:
		return "remove"
	case EventReady:
		return "ready"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one notification from a watch session. Path is empty for
// ready events and Err is only set for error events.
type Event struct {
	Kind EventKind
	Path string
	Err  error
}

func (e Event) String() string {
	switch e.Kind {
	case EventReady:
		return "ready"
	case EventError:
		return fmt.Sprintf("error: %v", e.Err)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Path)
	}
}
