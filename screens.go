package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/hopper/common"
	"github.com/milk9111/hopper/scene"
	"golang.org/x/image/font/basicfont"
)

var (
	panelColor  = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200}
	buttonColor = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255}
	hoverColor  = color.NRGBA{R: 0x4a, G: 0x4a, B: 0x4a, A: 255}
	textColor   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func newStartScreen(g *Game) *ebitenui.UI {
	return newMenu(
		[]string{"HOPPER", "Collect coins and reach the goal."},
		"Play",
		func() { g.press(g.flow.PressPlay) },
	)
}

func newCompleteScreen(g *Game, payload scene.Payload) *ebitenui.UI {
	lines := []string{"Level complete!", fmt.Sprintf("Score: %d", payload.Score)}
	if payload.HasNext {
		return newMenu(lines, "Next level", func() { g.press(g.flow.PressNext) })
	}
	lines = append(lines, "That was the last level.")
	return newMenu(lines, "Restart", func() { g.press(g.flow.PressRestart) })
}

// newMenu builds a centred panel with a few lines of text and one button.
func newMenu(lines []string, label string, onClick func()) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(panelColor)
	btnImg := &widget.ButtonImage{
		Idle:    imageui.NewNineSliceColor(buttonColor),
		Hover:   imageui.NewNineSliceColor(hoverColor),
		Pressed: imageui.NewNineSliceColor(buttonColor),
	}

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	centred := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(12),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 24, Bottom: 24, Left: 32, Right: 32}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.ViewportWidth/2, common.ViewportHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)

	for _, line := range lines {
		panel.AddChild(widget.NewText(
			widget.TextOpts.Text(line, &face, textColor),
			widget.TextOpts.WidgetOpts(centred),
		))
	}

	panel.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(btnImg),
		widget.ButtonOpts.Text(label, &face, &widget.ButtonTextColor{Idle: textColor}),
		widget.ButtonOpts.WidgetOpts(centred),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			onClick()
		}),
	))

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}
