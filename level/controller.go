// Package level runs one attempt at one level: it places the level's bodies
// through the physics collaborator, turns held input into velocity commands,
// and scores coin and goal overlaps.
package level

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/milk9111/hopper/levels"
	"github.com/milk9111/hopper/session"
)

const (
	DefaultMoveSpeed  = 200.0
	DefaultJumpSpeed  = 400.0
	DefaultBounce     = 0.15
	DefaultCoinReward = 10
)

// Default body sizes, in pixels.
var (
	DefaultPlayerSize = Vec{X: 32, Y: 48}
	DefaultCoinSize   = Vec{X: 24, Y: 24}
	DefaultGoalSize   = Vec{X: 32, Y: 32}
)

type Phase int

const (
	PhaseInitializing Phase = iota
	PhasePlaying
	PhaseCompleted
	PhaseAbandoned
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhasePlaying:
		return "playing"
	case PhaseCompleted:
		return "completed"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Facing int

const (
	FacingIdle Facing = iota
	FacingLeft
	FacingRight
)

// Tuning holds the movement and scoring constants of an attempt.
type Tuning struct {
	MoveSpeed  float64
	JumpSpeed  float64
	Bounce     float64
	CoinReward int
	PlayerSize Vec
	CoinSize   Vec
	GoalSize   Vec
}

func DefaultTuning() Tuning {
	return Tuning{
		MoveSpeed:  DefaultMoveSpeed,
		JumpSpeed:  DefaultJumpSpeed,
		Bounce:     DefaultBounce,
		CoinReward: DefaultCoinReward,
		PlayerSize: DefaultPlayerSize,
		CoinSize:   DefaultCoinSize,
		GoalSize:   DefaultGoalSize,
	}
}

// Deps are the collaborators a Controller holds for its lifetime.
type Deps struct {
	Physics   PhysicsEngine
	Sink      PresentationSink
	Completer Completer
	Tuning    Tuning
	Logger    *log.Logger
}

// PlayState is the per-attempt scoring state.
type PlayState struct {
	LevelIndex     int
	Score          int
	CoinsRemaining map[int]struct{}
	Completed      bool
}

// Controller is the state machine for a single attempt:
// Initializing -> Playing -> Completed, or Abandoned when discarded early.
type Controller struct {
	def        levels.Definition
	levelCount int
	session    *session.State

	physics   PhysicsEngine
	sink      PresentationSink
	completer Completer
	tuning    Tuning
	logger    *log.Logger

	state  PlayState
	phase  Phase
	facing Facing
	err    error

	player    Body
	goal      Body
	platforms []Body
	coinBody  map[int]Body
	bodyCoin  map[Body]int
}

// New validates levelIndex against catalog and prepares an attempt that
// starts at incomingScore. Nothing is registered with the physics engine
// until Setup.
func New(catalog *levels.Catalog, sess *session.State, levelIndex, incomingScore int, deps Deps) (*Controller, error) {
	def, err := catalog.Get(levelIndex)
	if err != nil {
		return nil, err
	}
	if incomingScore < 0 {
		return nil, fmt.Errorf("level: negative incoming score %d", incomingScore)
	}
	if sess == nil || deps.Physics == nil || deps.Completer == nil {
		return nil, fmt.Errorf("level: session, physics and completer are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	tuning := deps.Tuning
	if tuning == (Tuning{}) {
		tuning = DefaultTuning()
	}

	remaining := make(map[int]struct{}, len(def.Coins))
	for i := range def.Coins {
		remaining[i] = struct{}{}
	}

	return &Controller{
		def:        def,
		levelCount: catalog.Len(),
		session:    sess,
		physics:    deps.Physics,
		sink:       deps.Sink,
		completer:  deps.Completer,
		tuning:     tuning,
		logger:     logger.With("level", levelIndex),
		state: PlayState{
			LevelIndex:     levelIndex,
			Score:          incomingScore,
			CoinsRemaining: remaining,
		},
		coinBody: make(map[int]Body, len(def.Coins)),
		bodyCoin: make(map[Body]int, len(def.Coins)),
	}, nil
}

// Setup registers the level's bodies and contact relationships and starts
// play. It runs once; later calls do nothing.
func (c *Controller) Setup() {
	if c.phase != PhaseInitializing {
		return
	}

	for _, p := range c.def.Platforms {
		x, y, w, h := p.Bounds()
		c.platforms = append(c.platforms, c.physics.CreateStaticBody(Rect{X: x, Y: y, Width: w, Height: h}))
	}

	spawn := c.def.SpawnPoint()
	c.player = c.physics.CreateDynamicBody(Vec{X: spawn.X, Y: spawn.Y}, BodyOptions{
		Width:        c.tuning.PlayerSize.X,
		Height:       c.tuning.PlayerSize.Y,
		Gravity:      true,
		Bounce:       c.tuning.Bounce,
		ClampToWorld: true,
	})

	coins := make([]Body, 0, len(c.def.Coins))
	for i, pos := range c.def.Coins {
		b := c.physics.CreateDynamicBody(Vec{X: pos.X, Y: pos.Y}, BodyOptions{
			Width:  c.tuning.CoinSize.X,
			Height: c.tuning.CoinSize.Y,
		})
		c.coinBody[i] = b
		c.bodyCoin[b] = i
		coins = append(coins, b)
	}

	c.goal = c.physics.CreateDynamicBody(Vec{X: c.def.Goal.X, Y: c.def.Goal.Y}, BodyOptions{
		Width:  c.tuning.GoalSize.X,
		Height: c.tuning.GoalSize.Y,
	})

	c.physics.RegisterCollider(c.player, c.platforms)
	c.physics.RegisterOverlap(c.player, coins, func(_, coin Body) {
		if id, ok := c.bodyCoin[coin]; ok {
			c.OnCoinOverlap(id)
		}
	})
	c.physics.RegisterOverlap(c.player, []Body{c.goal}, func(_, _ Body) {
		c.OnGoalOverlap()
	})

	c.phase = PhasePlaying
	c.logger.Debug("level started", "name", c.def.Name, "coins", len(coins), "score", c.state.Score)
	if c.sink != nil {
		c.sink.LevelStarted(c.state.LevelIndex)
		c.sink.ScoreChanged(c.state.Score)
	}
}

// OnFrame turns one tick of held input into velocity commands.
func (c *Controller) OnFrame(in InputState) {
	if c.phase != PhasePlaying {
		return
	}

	switch {
	case in.Left:
		c.physics.SetVelocityX(c.player, -c.tuning.MoveSpeed)
		c.facing = FacingLeft
	case in.Right:
		c.physics.SetVelocityX(c.player, c.tuning.MoveSpeed)
		c.facing = FacingRight
	default:
		c.physics.SetVelocityX(c.player, 0)
		c.facing = FacingIdle
	}

	// Level-triggered: holding up re-jumps on every landing.
	if in.Up && c.physics.IsTouchingBelow(c.player) {
		c.physics.SetVelocityY(c.player, -c.tuning.JumpSpeed)
	}
}

// OnCoinOverlap collects coin id. Repeated or stale overlaps are ignored.
func (c *Controller) OnCoinOverlap(id int) {
	if c.phase != PhasePlaying {
		return
	}
	if _, ok := c.state.CoinsRemaining[id]; !ok {
		return
	}

	delete(c.state.CoinsRemaining, id)
	if b, ok := c.coinBody[id]; ok {
		c.physics.DisableBody(b)
	}
	c.state.Score += c.tuning.CoinReward

	c.logger.Debug("coin collected", "coin", id, "score", c.state.Score, "remaining", len(c.state.CoinsRemaining))
	if c.sink != nil {
		c.sink.ScoreChanged(c.state.Score)
	}
}

// OnGoalOverlap finishes the attempt. Only the first call has any effect.
func (c *Controller) OnGoalOverlap() {
	if c.phase != PhasePlaying {
		return
	}

	c.phase = PhaseCompleted
	c.state.Completed = true
	total := c.session.AddLevelScore(c.state.Score)

	result := Result{LevelIndex: c.state.LevelIndex, Score: total}
	if next := c.state.LevelIndex + 1; next < c.levelCount {
		result.Next = next
		result.HasNext = true
	}

	c.logger.Info("goal reached", "score", c.state.Score, "total", total, "has_next", result.HasNext)
	if err := c.completer.GoalReached(result); err != nil {
		c.err = fmt.Errorf("level %d: report goal: %w", c.state.LevelIndex, err)
	}
}

// Abandon discards the attempt. Pending callbacks become no-ops.
func (c *Controller) Abandon() {
	if c.phase == PhaseCompleted || c.phase == PhaseAbandoned {
		return
	}
	c.phase = PhaseAbandoned
	c.logger.Debug("level abandoned", "score", c.state.Score)
}

// State returns a copy of the attempt's play state.
func (c *Controller) State() PlayState {
	st := c.state
	st.CoinsRemaining = make(map[int]struct{}, len(c.state.CoinsRemaining))
	for id := range c.state.CoinsRemaining {
		st.CoinsRemaining[id] = struct{}{}
	}
	return st
}

func (c *Controller) Phase() Phase {
	return c.phase
}

func (c *Controller) Facing() Facing {
	return c.facing
}

func (c *Controller) Player() Body {
	return c.player
}

func (c *Controller) Goal() Body {
	return c.goal
}

func (c *Controller) Platforms() []Body {
	return append([]Body(nil), c.platforms...)
}

func (c *Controller) Definition() levels.Definition {
	return c.def
}

// Coins returns the bodies of coins that have not been collected.
func (c *Controller) Coins() []Body {
	out := make([]Body, 0, len(c.state.CoinsRemaining))
	for i := range c.def.Coins {
		if _, ok := c.state.CoinsRemaining[i]; ok {
			out = append(out, c.coinBody[i])
		}
	}
	return out
}

// Err returns the error raised while handing the result to the completer.
func (c *Controller) Err() error {
	return c.err
}
