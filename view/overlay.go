package view

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	drape "github.com/ProfMoriartey/3d-demo"
)

// drawOverlay prints run statistics in the top-left corner, refreshed every
// frame.
func (p *Presenter) drawOverlay(screen *ebiten.Image, scene *drape.Scene) {
	f := p.lastFrame
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f\nTPS: %.1f\n%s  signal %.2f  open %.2f\nmeshes %d  tris %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		f.State, f.Signal, f.Opening,
		scene.Len(), p.rend.triCount()))
}
