// Package physics adapts a Chipmunk space to the physics contract used by
// level attempts.
package physics

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/hopper/common"
	"github.com/milk9111/hopper/level"
)

const (
	iterations      = 20
	boundsThickness = 1.0
	// Contacts whose normal points at least this far down from the mover
	// count as standing on something.
	groundNormalY = 0.5
)

const (
	categoryBody uint = 1 << iota
	categoryBounds
)

// Config sizes the simulated world.
type Config struct {
	Width, Height float64
	Gravity       float64
	TicksPerSec   int
}

func DefaultConfig() Config {
	return Config{
		Width:       common.ViewportWidth,
		Height:      common.ViewportHeight,
		Gravity:     common.Gravity,
		TicksPerSec: common.TicksPerSecond,
	}
}

type bodyInfo struct {
	id       level.Body
	body     *cp.Body
	shape    *cp.Shape
	static   bool
	rect     level.Rect
	enabled  bool
	grounded bool
}

type pairKey struct {
	a, b level.Body
}

// World owns the Chipmunk space and hands out level.Body handles.
type World struct {
	space  *cp.Space
	dt     float64
	logger *log.Logger

	next     level.Body
	bodies   map[level.Body]*bodyInfo
	shapes   map[*cp.Shape]level.Body
	pairs    map[pairKey]struct{}
	events   EventQueue
	pending  []level.Body
	stepping bool
}

var _ level.PhysicsEngine = (*World)(nil)

// NewWorld creates a space with gravity and solid world bounds.
func NewWorld(cfg Config, logger *log.Logger) *World {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.TicksPerSec <= 0 {
		cfg.TicksPerSec = common.TicksPerSecond
	}

	space := cp.NewSpace()
	space.Iterations = iterations
	space.SetGravity(cp.Vector{X: 0, Y: cfg.Gravity})

	w := &World{
		space:  space,
		dt:     1.0 / float64(cfg.TicksPerSec),
		logger: logger,
		bodies: make(map[level.Body]*bodyInfo),
		shapes: make(map[*cp.Shape]level.Body),
		pairs:  make(map[pairKey]struct{}),
	}
	w.buildBounds(cfg.Width, cfg.Height)
	return w
}

func (w *World) buildBounds(worldW, worldH float64) {
	if worldW <= 0 || worldH <= 0 {
		return
	}
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},           // top
		{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},           // left
		{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}}, // right
	}
	for _, seg := range segments {
		shape := cp.NewSegment(w.space.StaticBody, seg.a, seg.b, boundsThickness)
		shape.SetFriction(0.8)
		shape.SetElasticity(1)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryBounds, cp.ALL_CATEGORIES))
		w.space.AddShape(shape)
	}
}

func (w *World) issue() level.Body {
	w.next++
	return w.next
}

// CreateStaticBody adds an immovable box with the given bounds.
func (w *World) CreateStaticBody(r level.Rect) level.Body {
	id := w.issue()
	bb := cp.BB{L: r.X, B: r.Y, R: r.X + r.Width, T: r.Y + r.Height}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetElasticity(1)
	shape.SetCollisionType(cp.CollisionType(id))
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryBody, cp.ALL_CATEGORIES))
	w.space.AddShape(shape)

	w.bodies[id] = &bodyInfo{id: id, body: w.space.StaticBody, shape: shape, static: true, rect: r, enabled: true}
	w.shapes[shape] = id
	return id
}

// CreateDynamicBody adds a box centred on pos that never rotates.
func (w *World) CreateDynamicBody(pos level.Vec, opts level.BodyOptions) level.Body {
	id := w.issue()

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 32, 32
	}

	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	body.SetAngle(0)
	if !opts.Gravity {
		body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
			cp.BodyUpdateVelocity(body, cp.Vector{}, damping, dt)
		})
	}

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(0)
	shape.SetElasticity(opts.Bounce)
	shape.SetCollisionType(cp.CollisionType(id))
	var mask uint = cp.ALL_CATEGORIES
	if !opts.ClampToWorld {
		mask &^= categoryBounds
	}
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryBody, mask))

	w.space.AddBody(body)
	w.space.AddShape(shape)

	w.bodies[id] = &bodyInfo{
		id:      id,
		body:    body,
		shape:   shape,
		rect:    level.Rect{Width: width, Height: height},
		enabled: true,
	}
	w.shapes[shape] = id
	w.logger.Debug("physics: dynamic body", "body", int(id), "gravity", opts.Gravity, "bounce", opts.Bounce)
	return id
}

func (w *World) SetVelocityX(b level.Body, vx float64) {
	info := w.live(b)
	if info == nil || info.static {
		return
	}
	v := info.body.Velocity()
	info.body.SetVelocity(vx, v.Y)
}

func (w *World) SetVelocityY(b level.Body, vy float64) {
	info := w.live(b)
	if info == nil || info.static {
		return
	}
	v := info.body.Velocity()
	info.body.SetVelocity(v.X, vy)
}

// Velocity returns the body's current velocity.
func (w *World) Velocity(b level.Body) level.Vec {
	info := w.live(b)
	if info == nil || info.static {
		return level.Vec{}
	}
	v := info.body.Velocity()
	return level.Vec{X: v.X, Y: v.Y}
}

// IsTouchingBelow reports whether a registered collider held b up during
// the last step.
func (w *World) IsTouchingBelow(b level.Body) bool {
	info := w.live(b)
	return info != nil && info.grounded
}

// RegisterCollider makes a and each body of group block each other and
// tracks a's ground contact against them.
func (w *World) RegisterCollider(a level.Body, group []level.Body) {
	if w.bodies[a] == nil {
		return
	}
	for _, other := range group {
		if w.bodies[other] == nil || !w.claimPair(a, other) {
			continue
		}
		mover := a
		handler := w.space.NewCollisionHandler(cp.CollisionType(a), cp.CollisionType(other))
		handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			shapeA, shapeB := arb.Shapes()
			n := arb.Normal()
			if w.shapes[shapeA] != mover {
				if w.shapes[shapeB] != mover {
					return true
				}
				n = n.Neg()
			}
			if n.Y > groundNormalY {
				if info := w.bodies[mover]; info != nil {
					info.grounded = true
				}
			}
			return true
		}
	}
}

// RegisterOverlap turns each body of group into a sensor and queues fn
// whenever a starts touching one of them. Queued overlaps are delivered
// after the step that detected them.
func (w *World) RegisterOverlap(a level.Body, group []level.Body, fn level.OverlapFunc) {
	if w.bodies[a] == nil || fn == nil {
		return
	}
	for _, other := range group {
		info := w.bodies[other]
		if info == nil || !w.claimPair(a, other) {
			continue
		}
		info.shape.SetSensor(true)

		mover, target := a, other
		handler := w.space.NewCollisionHandler(cp.CollisionType(a), cp.CollisionType(other))
		handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			w.events.Push(OverlapEvent{A: mover, B: target, fn: fn})
			return true
		}
	}
}

// claimPair records a relationship between a and b. A pair can only be
// registered once, as either a collider or an overlap.
func (w *World) claimPair(a, b level.Body) bool {
	key := pairKey{a: a, b: b}
	if a > b {
		key = pairKey{a: b, b: a}
	}
	if _, ok := w.pairs[key]; ok {
		w.logger.Warn("physics: pair already registered", "a", int(a), "b", int(b))
		return false
	}
	w.pairs[key] = struct{}{}
	return true
}

// DisableBody removes b from the simulation. Calls for disabled or unknown
// bodies are ignored.
func (w *World) DisableBody(b level.Body) {
	info := w.live(b)
	if info == nil {
		return
	}
	info.freeze()
	info.enabled = false
	info.grounded = false
	if w.stepping {
		w.pending = append(w.pending, b)
		return
	}
	w.remove(info)
}

func (w *World) remove(info *bodyInfo) {
	w.space.RemoveShape(info.shape)
	if !info.static {
		w.space.RemoveBody(info.body)
	}
	delete(w.shapes, info.shape)
}

// freeze records the body's last position so Bounds keeps answering.
func (info *bodyInfo) freeze() {
	if info.static {
		return
	}
	p := info.body.Position()
	info.rect.X = p.X - info.rect.Width/2
	info.rect.Y = p.Y - info.rect.Height/2
}

// Step advances the simulation by one tick and then delivers the overlaps
// it detected.
func (w *World) Step() {
	for _, info := range w.bodies {
		info.grounded = false
	}

	w.stepping = true
	w.space.Step(w.dt)
	w.stepping = false
	w.flushPending()

	for _, evt := range w.events.Drain() {
		if w.live(evt.A) == nil || w.live(evt.B) == nil {
			continue
		}
		evt.fn(evt.A, evt.B)
	}
	w.flushPending()
}

func (w *World) flushPending() {
	for _, id := range w.pending {
		if info := w.bodies[id]; info != nil {
			w.remove(info)
		}
	}
	w.pending = w.pending[:0]
}

// Bounds returns b's current top-left corner and size.
func (w *World) Bounds(b level.Body) (level.Rect, bool) {
	info := w.bodies[b]
	if info == nil {
		return level.Rect{}, false
	}
	if info.static || !info.enabled {
		return info.rect, true
	}
	p := info.body.Position()
	return level.Rect{
		X:      p.X - info.rect.Width/2,
		Y:      p.Y - info.rect.Height/2,
		Width:  info.rect.Width,
		Height: info.rect.Height,
	}, true
}

// Enabled reports whether b exists and has not been disabled.
func (w *World) Enabled(b level.Body) bool {
	return w.live(b) != nil
}

func (w *World) live(b level.Body) *bodyInfo {
	info := w.bodies[b]
	if info == nil || !info.enabled {
		return nil
	}
	return info
}

// DrawDebug renders every live shape through d.
func (w *World) DrawDebug(d cp.Drawer) {
	cp.DrawSpace(w.space, d)
}
