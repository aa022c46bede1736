package level

import (
	"errors"
	"testing"

	"github.com/milk9111/hopper/levels"
	"github.com/milk9111/hopper/session"
)

type overlapReg struct {
	a     Body
	group []Body
	fn    OverlapFunc
}

type velocityCmd struct {
	body Body
	axis byte
	v    float64
}

type fakePhysics struct {
	next      Body
	statics   []Rect
	dynamics  map[Body]BodyOptions
	colliders map[Body][]Body
	overlaps  []overlapReg
	disabled  map[Body]int
	commands  []velocityCmd
	touching  bool
}

func newFakePhysics() *fakePhysics {
	return &fakePhysics{
		dynamics:  make(map[Body]BodyOptions),
		colliders: make(map[Body][]Body),
		disabled:  make(map[Body]int),
	}
}

func (f *fakePhysics) CreateStaticBody(r Rect) Body {
	f.next++
	f.statics = append(f.statics, r)
	return f.next
}

func (f *fakePhysics) CreateDynamicBody(_ Vec, opts BodyOptions) Body {
	f.next++
	f.dynamics[f.next] = opts
	return f.next
}

func (f *fakePhysics) SetVelocityX(b Body, vx float64) {
	f.commands = append(f.commands, velocityCmd{body: b, axis: 'x', v: vx})
}

func (f *fakePhysics) SetVelocityY(b Body, vy float64) {
	f.commands = append(f.commands, velocityCmd{body: b, axis: 'y', v: vy})
}

func (f *fakePhysics) IsTouchingBelow(Body) bool { return f.touching }

func (f *fakePhysics) RegisterCollider(a Body, group []Body) {
	f.colliders[a] = append(f.colliders[a], group...)
}

func (f *fakePhysics) RegisterOverlap(a Body, group []Body, fn OverlapFunc) {
	f.overlaps = append(f.overlaps, overlapReg{a: a, group: group, fn: fn})
}

func (f *fakePhysics) DisableBody(b Body) { f.disabled[b]++ }

// fire delivers an overlap between a and b the way the engine would.
func (f *fakePhysics) fire(a, b Body) {
	for _, reg := range f.overlaps {
		if reg.a != a {
			continue
		}
		for _, g := range reg.group {
			if g == b {
				reg.fn(a, b)
			}
		}
	}
}

type fakeSink struct {
	scores []int
	levels []int
}

func (s *fakeSink) ScoreChanged(score int) { s.scores = append(s.scores, score) }
func (s *fakeSink) LevelStarted(index int) { s.levels = append(s.levels, index) }

type recordingCompleter struct {
	results []Result
	err     error
}

func (r *recordingCompleter) GoalReached(res Result) error {
	r.results = append(r.results, res)
	return r.err
}

func testCatalog(t *testing.T) *levels.Catalog {
	t.Helper()
	cat, err := levels.NewCatalog([]levels.Definition{
		{
			Name: "one",
			Platforms: []levels.Rect{
				{X: 50, Y: 550, Width: 700, Height: 40},
				{X: 200, Y: 450, Width: 120, Height: 20},
			},
			Coins: []levels.Point{{X: 230, Y: 410}, {X: 430, Y: 310}, {X: 630, Y: 210}},
			Goal:  levels.Point{X: 700, Y: 180},
		},
		{
			Name:      "two",
			Platforms: []levels.Rect{{X: 50, Y: 550, Width: 700, Height: 40}},
			Coins:     []levels.Point{{X: 150, Y: 380}},
			Goal:      levels.Point{X: 720, Y: 170},
		},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

type harness struct {
	ctrl      *Controller
	physics   *fakePhysics
	sink      *fakeSink
	completer *recordingCompleter
	session   *session.State
}

func newHarness(t *testing.T, levelIndex, score int) *harness {
	t.Helper()
	h := &harness{
		physics:   newFakePhysics(),
		sink:      &fakeSink{},
		completer: &recordingCompleter{},
		session:   session.New(nil),
	}
	ctrl, err := New(testCatalog(t), h.session, levelIndex, score, Deps{
		Physics:   h.physics,
		Sink:      h.sink,
		Completer: h.completer,
	})
	if err != nil {
		t.Fatalf("New(%d, %d): %v", levelIndex, score, err)
	}
	ctrl.Setup()
	h.ctrl = ctrl
	return h
}

func TestNewInitialState(t *testing.T) {
	cat := testCatalog(t)
	for i := 0; i < cat.Len(); i++ {
		def, _ := cat.Get(i)
		ctrl, err := New(cat, session.New(nil), i, 20, Deps{Physics: newFakePhysics(), Completer: &recordingCompleter{}})
		if err != nil {
			t.Fatalf("New(%d): %v", i, err)
		}
		st := ctrl.State()
		if len(st.CoinsRemaining) != len(def.Coins) {
			t.Fatalf("level %d: %d coins remaining, want %d", i, len(st.CoinsRemaining), len(def.Coins))
		}
		if st.Completed {
			t.Fatalf("level %d: new attempt is already completed", i)
		}
		if st.Score != 20 {
			t.Fatalf("level %d: score %d, want incoming 20", i, st.Score)
		}
		if ctrl.Phase() != PhaseInitializing {
			t.Fatalf("level %d: phase %v, want initializing", i, ctrl.Phase())
		}
	}
}

func TestNewInvalidLevelIndex(t *testing.T) {
	for _, idx := range []int{-1, 2, 100} {
		p := newFakePhysics()
		_, err := New(testCatalog(t), session.New(nil), idx, 0, Deps{Physics: p, Completer: &recordingCompleter{}})
		if !errors.Is(err, levels.ErrInvalidLevelIndex) {
			t.Fatalf("New(%d) error = %v, want ErrInvalidLevelIndex", idx, err)
		}
		if p.next != 0 {
			t.Fatalf("New(%d) touched the physics engine before validation", idx)
		}
	}
}

func TestSetupRegistersBodies(t *testing.T) {
	h := newHarness(t, 0, 0)
	p := h.physics

	if len(p.statics) != 2 {
		t.Fatalf("expected 2 static platforms, got %d", len(p.statics))
	}
	want := Rect{X: 50, Y: 530, Width: 700, Height: 40}
	if p.statics[0] != want {
		t.Fatalf("platform 0 = %+v, want %+v", p.statics[0], want)
	}

	player := p.dynamics[h.ctrl.Player()]
	if !player.Gravity || !player.ClampToWorld || player.Bounce != DefaultBounce {
		t.Fatalf("player options = %+v", player)
	}
	for _, coin := range h.ctrl.Coins() {
		if p.dynamics[coin].Gravity {
			t.Fatalf("coin %d has gravity", coin)
		}
	}
	if p.dynamics[h.ctrl.Goal()].Gravity {
		t.Fatalf("goal has gravity")
	}

	if got := p.colliders[h.ctrl.Player()]; len(got) != 2 {
		t.Fatalf("player collides with %d platforms, want 2", len(got))
	}
	if len(p.overlaps) != 2 {
		t.Fatalf("expected coin and goal overlaps, got %d", len(p.overlaps))
	}

	if h.ctrl.Phase() != PhasePlaying {
		t.Fatalf("phase after setup = %v", h.ctrl.Phase())
	}
	if len(h.sink.levels) != 1 || h.sink.levels[0] != 0 {
		t.Fatalf("LevelStarted calls = %v", h.sink.levels)
	}

	before := p.next
	h.ctrl.Setup()
	if p.next != before {
		t.Fatalf("second Setup registered more bodies")
	}
}

func TestOnFrameHorizontal(t *testing.T) {
	cases := []struct {
		name   string
		in     InputState
		wantVX float64
		facing Facing
	}{
		{"idle", InputState{}, 0, FacingIdle},
		{"left", InputState{Left: true}, -DefaultMoveSpeed, FacingLeft},
		{"right", InputState{Right: true}, DefaultMoveSpeed, FacingRight},
		{"both_left_wins", InputState{Left: true, Right: true}, -DefaultMoveSpeed, FacingLeft},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t, 0, 0)
			h.ctrl.OnFrame(c.in)
			cmds := h.physics.commands
			if len(cmds) != 1 || cmds[0].axis != 'x' || cmds[0].v != c.wantVX || cmds[0].body != h.ctrl.Player() {
				t.Fatalf("commands = %+v, want one x=%v", cmds, c.wantVX)
			}
			if h.ctrl.Facing() != c.facing {
				t.Fatalf("facing = %v, want %v", h.ctrl.Facing(), c.facing)
			}
		})
	}
}

func TestOnFrameJump(t *testing.T) {
	cases := []struct {
		name     string
		up       bool
		touching bool
		jump     bool
	}{
		{"grounded_up", true, true, true},
		{"airborne_up", true, false, false},
		{"grounded_no_up", false, true, false},
		{"airborne_no_up", false, false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t, 0, 0)
			h.physics.touching = c.touching
			h.ctrl.OnFrame(InputState{Up: c.up})

			var jumps []velocityCmd
			for _, cmd := range h.physics.commands {
				if cmd.axis == 'y' {
					jumps = append(jumps, cmd)
				}
			}
			if c.jump {
				if len(jumps) != 1 || jumps[0].v != -DefaultJumpSpeed {
					t.Fatalf("jump commands = %+v, want one y=%v", jumps, -DefaultJumpSpeed)
				}
			} else if len(jumps) != 0 {
				t.Fatalf("unexpected jump commands %+v", jumps)
			}
		})
	}
}

func TestHeldJumpRetriggersOnLanding(t *testing.T) {
	h := newHarness(t, 0, 0)
	up := InputState{Up: true}

	h.physics.touching = true
	h.ctrl.OnFrame(up)
	h.physics.touching = false
	h.ctrl.OnFrame(up)
	h.physics.touching = true
	h.ctrl.OnFrame(up)

	jumps := 0
	for _, cmd := range h.physics.commands {
		if cmd.axis == 'y' {
			jumps++
		}
	}
	if jumps != 2 {
		t.Fatalf("expected a jump on each landing, got %d", jumps)
	}
}

func TestCoinOverlapIdempotent(t *testing.T) {
	h := newHarness(t, 0, 0)
	coin := h.ctrl.Coins()[0]

	h.physics.fire(h.ctrl.Player(), coin)
	h.physics.fire(h.ctrl.Player(), coin)
	h.ctrl.OnCoinOverlap(0)

	st := h.ctrl.State()
	if st.Score != DefaultCoinReward {
		t.Fatalf("score = %d, want %d", st.Score, DefaultCoinReward)
	}
	if _, ok := st.CoinsRemaining[0]; ok {
		t.Fatalf("coin 0 still remaining")
	}
	if h.physics.disabled[coin] != 1 {
		t.Fatalf("coin disabled %d times, want 1", h.physics.disabled[coin])
	}
	if len(h.sink.scores) != 2 || h.sink.scores[1] != DefaultCoinReward {
		t.Fatalf("score updates = %v", h.sink.scores)
	}
}

func TestCoinOverlapUnknownID(t *testing.T) {
	h := newHarness(t, 0, 0)
	h.ctrl.OnCoinOverlap(42)
	h.ctrl.OnCoinOverlap(-1)
	if h.ctrl.State().Score != 0 {
		t.Fatalf("unknown coin changed score")
	}
}

func TestAllCoinsHaveNoBonus(t *testing.T) {
	h := newHarness(t, 0, 0)
	for i := 0; i < 3; i++ {
		h.ctrl.OnCoinOverlap(i)
	}
	if got := h.ctrl.State().Score; got != 3*DefaultCoinReward {
		t.Fatalf("score = %d, want %d", got, 3*DefaultCoinReward)
	}
}

func TestGoalOverlapIdempotent(t *testing.T) {
	h := newHarness(t, 0, 0)
	h.ctrl.OnCoinOverlap(0)

	h.physics.fire(h.ctrl.Player(), h.ctrl.Goal())
	h.physics.fire(h.ctrl.Player(), h.ctrl.Goal())
	h.ctrl.OnGoalOverlap()

	if len(h.completer.results) != 1 {
		t.Fatalf("GoalReached called %d times, want 1", len(h.completer.results))
	}
	if h.session.CumulativeScore() != DefaultCoinReward {
		t.Fatalf("cumulative = %d, want %d", h.session.CumulativeScore(), DefaultCoinReward)
	}
	if !h.ctrl.State().Completed || h.ctrl.Phase() != PhaseCompleted {
		t.Fatalf("attempt not completed")
	}
}

func TestGoalResultNext(t *testing.T) {
	cases := []struct {
		name    string
		level   int
		hasNext bool
		next    int
	}{
		{"first_level", 0, true, 1},
		{"last_level", 1, false, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t, c.level, 0)
			h.ctrl.OnGoalOverlap()
			r := h.completer.results[0]
			if r.HasNext != c.hasNext || r.Next != c.next || r.LevelIndex != c.level {
				t.Fatalf("result = %+v, want next=%d hasNext=%v", r, c.next, c.hasNext)
			}
		})
	}
}

func TestCompletedFreezesFrameAndScore(t *testing.T) {
	h := newHarness(t, 0, 0)
	h.ctrl.OnGoalOverlap()
	h.physics.commands = nil
	h.physics.touching = true

	h.ctrl.OnFrame(InputState{Left: true, Up: true})
	h.ctrl.OnCoinOverlap(1)

	if len(h.physics.commands) != 0 {
		t.Fatalf("frozen attempt issued commands %+v", h.physics.commands)
	}
	if h.ctrl.State().Score != 0 {
		t.Fatalf("frozen attempt changed score")
	}
}

func TestAbandonIgnoresPendingCallbacks(t *testing.T) {
	h := newHarness(t, 0, 0)
	h.ctrl.Abandon()

	h.physics.fire(h.ctrl.Player(), h.ctrl.Coins()[0])
	h.physics.fire(h.ctrl.Player(), h.ctrl.Goal())
	h.ctrl.OnFrame(InputState{Right: true})

	if h.ctrl.Phase() != PhaseAbandoned {
		t.Fatalf("phase = %v", h.ctrl.Phase())
	}
	if len(h.completer.results) != 0 || h.session.CumulativeScore() != 0 || h.ctrl.State().Score != 0 {
		t.Fatalf("abandoned attempt mutated state")
	}
	if len(h.physics.commands) != 0 {
		t.Fatalf("abandoned attempt issued commands")
	}
}

func TestCompleterErrorIsKept(t *testing.T) {
	h := newHarness(t, 0, 0)
	boom := errors.New("boom")
	h.completer.err = boom
	h.ctrl.OnGoalOverlap()
	if !errors.Is(h.ctrl.Err(), boom) {
		t.Fatalf("Err() = %v, want wrapped boom", h.ctrl.Err())
	}
}
