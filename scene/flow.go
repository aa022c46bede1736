// Package scene decides which top-level screen is active and carries the
// payloads handed between screens. It forwards scores; it does not compute
// them.
package scene

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/milk9111/hopper/session"
)

var ErrIllegalTransition = errors.New("scene: illegal transition")

type Screen int

const (
	ScreenStart Screen = iota
	ScreenLevel
	ScreenLevelComplete
)

func (s Screen) String() string {
	switch s {
	case ScreenStart:
		return "start"
	case ScreenLevel:
		return "level"
	case ScreenLevelComplete:
		return "level-complete"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Payload is what a screen is entered with. Into a level: LevelIndex and
// Score. Into level-complete: Next/HasNext and Score. Into start: nothing.
type Payload struct {
	LevelIndex int
	Next       int
	HasNext    bool
	Score      int
}

// State is the active screen plus the payload it was entered with.
type State struct {
	Screen Screen
	Payload
}

func (s State) String() string {
	switch s.Screen {
	case ScreenLevel:
		return fmt.Sprintf("InLevel(%d, %d)", s.LevelIndex, s.Score)
	case ScreenLevelComplete:
		if !s.HasNext {
			return fmt.Sprintf("LevelComplete(none, %d)", s.Score)
		}
		return fmt.Sprintf("LevelComplete(%d, %d)", s.Next, s.Score)
	default:
		return s.Screen.String()
	}
}

// Result is the outcome of a finished level as reported to the flow.
type Result struct {
	Next    int
	HasNext bool
	Score   int
}

// Navigator presents a screen. It is called after the flow's state changes.
type Navigator interface {
	Navigate(screen Screen, payload Payload)
}

// Flow is the screen state machine:
//
//	Start         --play-->          InLevel(0, 0)
//	InLevel       --goal reached-->  LevelComplete(next|none, total)
//	LevelComplete --next-->          InLevel(next, 0)     when next exists
//	LevelComplete --restart-->       Start                when next is none
type Flow struct {
	state   State
	session *session.State
	nav     Navigator
	logger  *log.Logger
}

func NewFlow(sess *session.State, nav Navigator, logger *log.Logger) *Flow {
	if logger == nil {
		logger = log.Default()
	}
	return &Flow{
		state:   State{Screen: ScreenStart},
		session: sess,
		nav:     nav,
		logger:  logger,
	}
}

func (f *Flow) State() State {
	return f.state
}

// Begin presents the current screen without changing state. The shell calls
// it once at startup.
func (f *Flow) Begin() {
	f.navigate()
}

func (f *Flow) PressPlay() error {
	if f.state.Screen != ScreenStart {
		return f.illegal("play")
	}
	f.enter(State{Screen: ScreenLevel, Payload: Payload{LevelIndex: 0, Score: 0}})
	return nil
}

func (f *Flow) GoalReached(r Result) error {
	if f.state.Screen != ScreenLevel {
		return f.illegal("goal reached")
	}
	if r.HasNext && r.Next != f.state.LevelIndex+1 {
		return fmt.Errorf("%w: goal reached with next level %d from %s", ErrIllegalTransition, r.Next, f.state)
	}
	next := State{Screen: ScreenLevelComplete, Payload: Payload{HasNext: r.HasNext, Score: r.Score}}
	if r.HasNext {
		next.Next = r.Next
	}
	f.enter(next)
	return nil
}

func (f *Flow) PressNext() error {
	if f.state.Screen != ScreenLevelComplete || !f.state.HasNext {
		return f.illegal("next")
	}
	// Each attempt starts from zero; the running total lives in the session.
	f.enter(State{Screen: ScreenLevel, Payload: Payload{LevelIndex: f.state.Next, Score: 0}})
	return nil
}

func (f *Flow) PressRestart() error {
	if f.state.Screen != ScreenLevelComplete || f.state.HasNext {
		return f.illegal("restart")
	}
	f.session.Reset()
	f.enter(State{Screen: ScreenStart})
	return nil
}

func (f *Flow) enter(next State) {
	f.logger.Debug("scene transition", "from", f.state.String(), "to", next.String())
	f.state = next
	f.navigate()
}

func (f *Flow) navigate() {
	if f.nav != nil {
		f.nav.Navigate(f.state.Screen, f.state.Payload)
	}
}

func (f *Flow) illegal(event string) error {
	return fmt.Errorf("%w: %s from %s", ErrIllegalTransition, event, f.state)
}
