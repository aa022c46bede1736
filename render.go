package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/hopper/level"
	"github.com/milk9111/hopper/physics"
	"github.com/milk9111/hopper/prefabs"
)

var (
	backgroundColor = color.NRGBA{R: 0x1d, G: 0x23, B: 0x2e, A: 0xff}

	defaultPlatformColor = color.NRGBA{R: 0x4a, G: 0x8f, B: 0x3c, A: 0xff}
	defaultCoinColor     = color.NRGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	defaultGoalColor     = color.NRGBA{R: 0xff, G: 0x4f, B: 0xd8, A: 0xff}
	defaultPlayerColor   = color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
)

// drawLevel paints every live body as a filled rectangle in its prefab
// colour.
func drawLevel(screen *ebiten.Image, world *physics.World, ctrl *level.Controller, set *prefabs.Set) {
	platformColor := color.Color(defaultPlatformColor)
	coinColor := color.Color(defaultCoinColor)
	goalColor := color.Color(defaultGoalColor)
	if set != nil {
		if set.Platform != nil {
			platformColor = set.Platform.Color.ColorOr(platformColor)
		}
		if set.Coin != nil {
			coinColor = set.Coin.Color.ColorOr(coinColor)
		}
		if set.Goal != nil {
			goalColor = set.Goal.Color.ColorOr(goalColor)
		}
	}

	for _, b := range ctrl.Platforms() {
		fillBody(screen, world, b, platformColor)
	}
	for _, b := range ctrl.Coins() {
		fillBody(screen, world, b, coinColor)
	}
	fillBody(screen, world, ctrl.Goal(), goalColor)
	fillBody(screen, world, ctrl.Player(), playerColor(set, ctrl.Facing()))
}

func playerColor(set *prefabs.Set, facing level.Facing) color.Color {
	if set == nil || set.Player == nil {
		return defaultPlayerColor
	}
	colors := set.Player.Colors
	idle := colors.Idle.ColorOr(defaultPlayerColor)
	switch facing {
	case level.FacingLeft:
		return colors.Left.ColorOr(idle)
	case level.FacingRight:
		return colors.Right.ColorOr(idle)
	default:
		return idle
	}
}

func fillBody(screen *ebiten.Image, world *physics.World, b level.Body, clr color.Color) {
	if !world.Enabled(b) {
		return
	}
	r, ok := world.Bounds(b)
	if !ok {
		return
	}
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), clr, false)
}

// debugDrawer outlines Chipmunk shapes on top of the level.
type debugDrawer struct {
	screen *ebiten.Image
}

var _ cp.Drawer = (*debugDrawer)(nil)

func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	vector.StrokeCircle(d.screen, float32(pos.X), float32(pos.Y), float32(radius), 1, toRGBA(outline), false)
}

func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fill)
}

func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, outline)
}

func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], outline)
	}
}

func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	l := size / 2
	d.line(cp.Vector{X: pos.X - l, Y: pos.Y}, cp.Vector{X: pos.X + l, Y: pos.Y}, fill)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - l}, cp.Vector{X: pos.X, Y: pos.Y + l}, fill)
}

func (d *debugDrawer) line(a, b cp.Vector, c cp.FColor) {
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, toRGBA(c), false)
}

func (d *debugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	switch {
	case shape == nil:
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	case shape.Sensor():
		return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
	case shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC:
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	default:
		return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
	}
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *debugDrawer) Data() interface{} {
	return nil
}

func toRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
