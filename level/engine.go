package level

// Body is an opaque handle issued by a PhysicsEngine.
type Body int

// NoBody is never issued by an engine.
const NoBody Body = 0

type Vec struct {
	X, Y float64
}

// Rect is a collision rectangle given by its top-left corner and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// BodyOptions configures a dynamic body. Position is the body centre.
type BodyOptions struct {
	Width, Height float64
	Gravity       bool
	Bounce        float64
	// ClampToWorld keeps the body inside the world bounds.
	ClampToWorld bool
}

// OverlapFunc receives the two bodies of a report-only overlap, in the
// order they were registered.
type OverlapFunc func(a, b Body)

// PhysicsEngine is the slice of the physics collaborator a level attempt
// needs. The engine owns positions, velocities, gravity and contact
// detection.
type PhysicsEngine interface {
	CreateStaticBody(r Rect) Body
	CreateDynamicBody(pos Vec, opts BodyOptions) Body
	SetVelocityX(b Body, vx float64)
	SetVelocityY(b Body, vy float64)
	IsTouchingBelow(b Body) bool
	// RegisterCollider makes a and every body in group block each other.
	RegisterCollider(a Body, group []Body)
	// RegisterOverlap reports a touching any body in group without a
	// physical response.
	RegisterOverlap(a Body, group []Body, fn OverlapFunc)
	DisableBody(b Body)
}

// PresentationSink receives fire-and-forget display updates.
type PresentationSink interface {
	ScoreChanged(score int)
	LevelStarted(levelIndex int)
}

// InputState is the held state of the movement keys at the moment of a tick.
type InputState struct {
	Left, Right, Up bool
}

// Result is reported once per attempt when the goal is reached. Score is
// the session's cumulative score after this level was added to it.
type Result struct {
	LevelIndex int
	Next       int
	HasNext    bool
	Score      int
}

// Completer receives the goal-reached hand-off.
type Completer interface {
	GoalReached(r Result) error
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(r Result) error

func (f CompleterFunc) GoalReached(r Result) error {
	return f(r)
}
