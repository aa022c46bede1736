package main

import (
	"errors"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/hopper/common"
	"github.com/milk9111/hopper/input"
	"github.com/milk9111/hopper/level"
	"github.com/milk9111/hopper/levels"
	"github.com/milk9111/hopper/physics"
	"github.com/milk9111/hopper/prefabs"
	"github.com/milk9111/hopper/scene"
	"github.com/milk9111/hopper/session"
)

// Options are the runtime settings taken from the command line.
type Options struct {
	LevelsPath string
	Debug      bool
	TPS        int
	Monitor    bool
}

// Game is the ebiten.Game for the whole run. It owns the screen flow and,
// while a level is on screen, that level's physics world and controller.
type Game struct {
	opts   Options
	logger *log.Logger

	catalog *levels.Catalog
	prefabs *prefabs.Set
	session *session.State
	flow    *scene.Flow
	input   *input.Reader
	hud     *HUD
	ui      *ebitenui.UI

	world *physics.World
	ctrl  *level.Controller

	watcher *prefabs.Watcher
	err     error
}

var _ scene.Navigator = (*Game)(nil)

func NewGame(opts Options, logger *log.Logger) (*Game, error) {
	if logger == nil {
		logger = log.Default()
	}
	if opts.TPS <= 0 {
		opts.TPS = common.TicksPerSecond
	}

	catalog, err := levels.Open(opts.LevelsPath)
	if err != nil {
		return nil, err
	}
	set, err := prefabs.LoadSet()
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:    opts,
		logger:  logger,
		catalog: catalog,
		prefabs: set,
		input:   input.NewReader(),
		hud:     NewHUD(),
	}
	g.session = session.New(logger.WithPrefix("session"))
	g.flow = scene.NewFlow(g.session, g, logger.WithPrefix("scene"))

	if opts.Debug {
		g.startWatcher()
	}

	logger.Info("catalog loaded", "levels", catalog.Len(), "path", opts.LevelsPath)
	g.flow.Begin()
	return g, g.err
}

func (g *Game) startWatcher() {
	dirs := []string{prefabs.Dir}
	if g.opts.LevelsPath != "" {
		dirs = append(dirs, filepath.Dir(g.opts.LevelsPath))
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		g.logger.Warn("hot reload disabled", "dirs", dirs, "err", err)
		return
	}
	g.watcher = w
	g.logger.Debug("watching for changes", "dirs", dirs)
}

// Run opens the window and blocks until the game exits.
func (g *Game) Run() error {
	if g.opts.Monitor {
		if monitors := ebiten.AppendMonitors(nil); len(monitors) > 0 {
			ebiten.SetMonitor(monitors[0])
		}
	}
	ebiten.SetWindowSize(common.ViewportWidth, common.ViewportHeight)
	ebiten.SetWindowTitle("hopper")
	ebiten.SetTPS(g.opts.TPS)
	return ebiten.RunGame(g)
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

// Navigate swaps what is on screen. It is called by the flow after each
// transition.
func (g *Game) Navigate(screen scene.Screen, payload scene.Payload) {
	g.leaveLevel()

	switch screen {
	case scene.ScreenStart:
		g.ui = newStartScreen(g)
	case scene.ScreenLevel:
		g.ui = nil
		if err := g.enterLevel(payload); err != nil {
			g.fail(err)
		}
	case scene.ScreenLevelComplete:
		g.ui = newCompleteScreen(g, payload)
	}
}

func (g *Game) enterLevel(payload scene.Payload) error {
	world := physics.NewWorld(physics.Config{
		Width:       common.ViewportWidth,
		Height:      common.ViewportHeight,
		Gravity:     common.Gravity,
		TicksPerSec: g.opts.TPS,
	}, g.logger.WithPrefix("physics"))

	ctrl, err := level.New(g.catalog, g.session, payload.LevelIndex, payload.Score, level.Deps{
		Physics:   world,
		Sink:      g.hud,
		Completer: level.CompleterFunc(g.goalReached),
		Tuning:    tuningFrom(g.prefabs),
		Logger:    g.logger,
	})
	if err != nil {
		return err
	}
	ctrl.Setup()

	g.world, g.ctrl = world, ctrl
	return nil
}

func (g *Game) leaveLevel() {
	if g.ctrl != nil {
		g.ctrl.Abandon()
	}
	g.world, g.ctrl = nil, nil
}

func (g *Game) goalReached(r level.Result) error {
	return g.flow.GoalReached(scene.Result{Next: r.Next, HasNext: r.HasNext, Score: r.Score})
}

// press runs a menu action. A rejected transition ends the run.
func (g *Game) press(action func() error) {
	if err := action(); err != nil {
		g.fail(err)
	}
}

// confirm is the keyboard shortcut for the active screen's only button.
func (g *Game) confirm() {
	st := g.flow.State()
	switch {
	case st.Screen == scene.ScreenStart:
		g.press(g.flow.PressPlay)
	case st.Screen == scene.ScreenLevelComplete && st.HasNext:
		g.press(g.flow.PressNext)
	case st.Screen == scene.ScreenLevelComplete:
		g.press(g.flow.PressRestart)
	}
}

func (g *Game) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	g.applyReloads()

	in := g.input.Poll()
	if g.input.QuitPressed() {
		return ebiten.Termination
	}

	if g.flow.State().Screen == scene.ScreenLevel {
		// Reaching the goal navigates away mid-step, so hold on to this
		// tick's attempt.
		ctrl, world := g.ctrl, g.world
		if ctrl == nil || world == nil {
			return errors.New("game: level screen without a running level")
		}
		ctrl.OnFrame(in)
		world.Step()
		if err := ctrl.Err(); err != nil {
			return err
		}
		return g.err
	}

	before := g.flow.State()
	if g.ui != nil {
		g.ui.Update()
	}
	if g.input.ConfirmPressed() && g.flow.State() == before {
		g.confirm()
	}
	return g.err
}

// applyReloads picks up edited level and prefab files. The new catalog and
// tuning apply from the next level entry.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	select {
	case err, ok := <-g.watcher.Errors:
		if ok {
			g.logger.Warn("watcher error", "err", err)
		}
	default:
	}

	changed := g.watcher.Drain()
	if len(changed) == 0 {
		return
	}

	catalog, err := levels.Open(g.opts.LevelsPath)
	if err != nil {
		g.logger.Warn("level reload failed", "files", changed, "err", err)
	} else {
		g.catalog = catalog
	}
	set, err := prefabs.LoadSet()
	if err != nil {
		g.logger.Warn("prefab reload failed", "files", changed, "err", err)
	} else {
		g.prefabs = set
	}
	g.logger.Info("reloaded", "files", changed, "levels", g.catalog.Len())
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if g.flow.State().Screen == scene.ScreenLevel && g.ctrl != nil && g.world != nil {
		drawLevel(screen, g.world, g.ctrl, g.prefabs)
		if g.opts.Debug {
			g.world.DrawDebug(&debugDrawer{screen: screen})
		}
		g.hud.Draw(screen, g.session.CumulativeScore())
		return
	}

	if g.ui != nil {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.ViewportWidth, common.ViewportHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// tuningFrom maps the prefab set onto controller tuning. Zero sizes keep the
// controller's defaults.
func tuningFrom(set *prefabs.Set) level.Tuning {
	t := level.DefaultTuning()
	if set == nil {
		return t
	}
	if p := set.Player; p != nil {
		t.MoveSpeed = p.MoveSpeed
		t.JumpSpeed = p.JumpSpeed
		t.Bounce = p.Bounce
		if p.Collider.Width > 0 && p.Collider.Height > 0 {
			t.PlayerSize = level.Vec{X: p.Collider.Width, Y: p.Collider.Height}
		}
	}
	if c := set.Coin; c != nil {
		t.CoinReward = c.Reward
		if c.Collider.Width > 0 && c.Collider.Height > 0 {
			t.CoinSize = level.Vec{X: c.Collider.Width, Y: c.Collider.Height}
		}
	}
	if gs := set.Goal; gs != nil && gs.Collider.Width > 0 && gs.Collider.Height > 0 {
		t.GoalSize = level.Vec{X: gs.Collider.Width, Y: gs.Collider.Height}
	}
	return t
}
