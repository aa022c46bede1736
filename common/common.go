package common

const (
	ViewportWidth  = 800
	ViewportHeight = 600

	// Gravity is in pixels per second squared, screen-down positive.
	Gravity = 900.0

	TicksPerSecond = 60
)
