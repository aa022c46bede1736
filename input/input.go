// Package input samples the keyboard and the first gamepad once per tick.
package input

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/hopper/level"
)

const stickDeadzone = 0.3

// Sample is one tick of raw device state before it is folded into the
// level's three directions.
type Sample struct {
	Left, Right, Up bool
	StickX          float64
	Confirm         bool
	Quit            bool
}

// Reader polls ebiten's input state. The zero value is ready to use.
type Reader struct {
	last Sample
}

func NewReader() *Reader {
	return &Reader{}
}

// Poll samples the devices and returns the directions held this tick.
func (r *Reader) Poll() level.InputState {
	r.last = read()
	return r.last.State()
}

// ConfirmPressed reports whether Enter, Space or the gamepad start button
// went down on the last polled tick.
func (r *Reader) ConfirmPressed() bool {
	return r.last.Confirm
}

// QuitPressed reports whether F12 went down on the last polled tick.
func (r *Reader) QuitPressed() bool {
	return r.last.Quit
}

func read() Sample {
	s := Sample{
		Left:    ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		Right:   ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD),
		Up:      ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeySpace),
		Confirm: inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace),
		Quit:    inpututil.IsKeyJustPressed(ebiten.KeyF12),
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		s.StickX = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		s.Left = s.Left || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft)
		s.Right = s.Right || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight)
		s.Up = s.Up || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
		s.Confirm = s.Confirm || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight)
	}
	return s
}

// State folds the sample into level input. A stick pushed past the deadzone
// counts as the matching direction.
func (s Sample) State() level.InputState {
	left, right := s.Left, s.Right
	if math.Abs(s.StickX) > stickDeadzone {
		if s.StickX < 0 {
			left = true
		} else {
			right = true
		}
	}
	return level.InputState{Left: left, Right: right, Up: s.Up}
}
