package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/hopper/level"
	"golang.org/x/image/font/basicfont"
)

// HUD shows the running attempt's score and level number.
type HUD struct {
	face       ebtext.Face
	score      int
	levelIndex int
}

var _ level.PresentationSink = (*HUD)(nil)

func NewHUD() *HUD {
	return &HUD{face: ebtext.NewGoXFace(basicfont.Face7x13)}
}

func (h *HUD) ScoreChanged(score int) {
	h.score = score
}

func (h *HUD) LevelStarted(levelIndex int) {
	h.levelIndex = levelIndex
}

func (h *HUD) Lines(total int) []string {
	return []string{
		fmt.Sprintf("Level %d", h.levelIndex+1),
		fmt.Sprintf("Score: %d", h.score),
		fmt.Sprintf("Total: %d", total),
	}
}

func (h *HUD) Draw(screen *ebiten.Image, total int) {
	for i, line := range h.Lines(total) {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(12, 12+float64(i)*16)
		op.ColorScale.ScaleWithColor(textColor)
		ebtext.Draw(screen, line, h.face, op)
	}
}
