package wps

import (
	"fmt"
	"time"

	"github.com/delta10/wpsd/internal/ows"
)

// MaxPercentInFlight is the highest progress a running job may report.
// Completion is signalled by Succeeded, never by 100%.
const MaxPercentInFlight = 99

// State is one of Accepted, Started, Paused, Succeeded or Failed.
type State interface {
	Name() string
	isState()
}

type Accepted struct {
	Message string
}

type Started struct {
	Message         string
	PercentComplete int
}

type Paused struct {
	Message         string
	PercentComplete int
}

type Succeeded struct {
	Message string
}

type Failed struct {
	Report ows.ExceptionReport
}

func (Accepted) Name() string  { return "ProcessAccepted" }
func (Started) Name() string   { return "ProcessStarted" }
func (Paused) Name() string    { return "ProcessPaused" }
func (Succeeded) Name() string { return "ProcessSucceeded" }
func (Failed) Name() string    { return "ProcessFailed" }

func (Accepted) isState()  {}
func (Started) isState()   {}
func (Paused) isState()    {}
func (Succeeded) isState() {}
func (Failed) isState()    {}

// Status is an immutable snapshot of a job. CreationTime is the time of the
// last transition.
type Status struct {
	State        State
	CreationTime time.Time
}

// NewStatus returns the Accepted status of a job created at t.
func NewStatus(message string, t time.Time) Status {
	return Status{State: Accepted{Message: message}, CreationTime: t}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s.State.(type) {
	case Succeeded, Failed:
		return true
	default:
		return false
	}
}

// PercentComplete returns the progress of a started or paused job.
func (s Status) PercentComplete() (int, bool) {
	switch st := s.State.(type) {
	case Started:
		return st.PercentComplete, true
	case Paused:
		return st.PercentComplete, true
	default:
		return 0, false
	}
}

// Event drives a Status transition.
type Event interface {
	eventName() string
}

type Start struct{ Message string }
type Pause struct{ Message string }
type Resume struct{ Message string }

// Progress reports completion. An empty Message keeps the previous one.
type Progress struct {
	Percent int
	Message string
}

type Succeed struct {
	Message string
	Outputs []OutputData
}

type Fail struct {
	Report ows.ExceptionReport
}

func (Start) eventName() string    { return "Start" }
func (Pause) eventName() string    { return "Pause" }
func (Resume) eventName() string   { return "Resume" }
func (Progress) eventName() string { return "Progress" }
func (Succeed) eventName() string  { return "Succeed" }
func (Fail) eventName() string     { return "Fail" }

// TransitionError reports an event that is not allowed in the current state.
type TransitionError struct {
	From  string
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s while %s", ErrIllegalTransition, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > MaxPercentInFlight {
		return MaxPercentInFlight
	}
	return p
}

// Advance applies ev to cur at time at. On an illegal transition cur is
// returned unchanged together with a *TransitionError.
func Advance(cur Status, ev Event, at time.Time) (Status, error) {
	next, ok := transition(cur.State, ev)
	if !ok {
		from := "unknown"
		if cur.State != nil {
			from = cur.State.Name()
		}
		name := "nil"
		if ev != nil {
			name = ev.eventName()
		}
		return cur, &TransitionError{From: from, Event: name}
	}
	return Status{State: next, CreationTime: at}, nil
}

func transition(cur State, ev Event) (State, bool) {
	if f, ok := ev.(Fail); ok {
		switch cur.(type) {
		case Accepted, Started, Paused:
			return Failed{Report: f.Report}, true
		}
		return nil, false
	}
	switch st := cur.(type) {
	case Accepted:
		switch e := ev.(type) {
		case Start:
			return Started{Message: e.Message}, true
		case Pause:
			return Paused{Message: e.Message}, true
		}
	case Started:
		switch e := ev.(type) {
		case Progress:
			msg := e.Message
			if msg == "" {
				msg = st.Message
			}
			return Started{Message: msg, PercentComplete: clampPercent(e.Percent)}, true
		case Pause:
			return Paused{Message: e.Message, PercentComplete: st.PercentComplete}, true
		case Succeed:
			return Succeeded{Message: e.Message}, true
		}
	case Paused:
		switch e := ev.(type) {
		case Resume:
			return Started{Message: e.Message, PercentComplete: st.PercentComplete}, true
		case Succeed:
			return Succeeded{Message: e.Message}, true
		}
	}
	return nil, false
}
