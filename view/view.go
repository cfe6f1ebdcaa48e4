// Package view opens an interactive window onto a choreography. It owns the
// ebiten game loop: each tick it polls input into the control signal, steps
// the choreo, and paints the scene with a depth-sorted triangle batch.
//
// The package is an optional shell. Everything it calls on the choreography
// is public, so embedders with their own game loop can drive drape directly.
package view

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	drape "github.com/ProfMoriartey/3d-demo"
)

// Config describes the window and input behavior for Run.
type Config struct {
	// Title is the window title. Empty means "drape".
	Title string
	// Width and Height are the window and layout size in pixels. Values
	// below 1 default to 1280x720.
	Width, Height int

	// Camera projects the scene. It should match the camera the scene was
	// built against, or the geometry will not fill the viewport.
	Camera drape.Camera

	// ScrollPerNotch is the signal change per mouse wheel notch. Zero means
	// 0.05; negative inverts the wheel.
	ScrollPerNotch float64
	// KeyDrive switches input from the wheel to held arrow keys (or A/D).
	KeyDrive bool
	// KeyRate is the signal change per second while a key is held. Zero
	// means 0.75.
	KeyRate float64
	// KeyDirection, with KeyDrive, stores the held direction (-1, 0, or 1)
	// as the signal instead of integrating a level. Motor scenes want this.
	KeyDirection bool

	// Overlay prints FPS and frame stats in the corner.
	Overlay bool
	// ScreenshotDir receives PNG captures. Empty means "screenshots".
	ScreenshotDir string

	// OnFrame, when set, observes every frame report after Step.
	OnFrame func(drape.Frame)
}

// Presenter implements ebiten.Game for one choreography. Create it with
// NewPresenter and hand it to ebiten.RunGame, or let Run do both.
type Presenter struct {
	choreo *drape.Choreo
	cfg    Config
	input  Input
	rend   renderer

	lastFrame       drape.Frame
	screenshotQueue []string
}

// NewPresenter wraps a choreography for the game loop, applying Config
// defaults.
func NewPresenter(choreo *drape.Choreo, cfg Config) *Presenter {
	if cfg.Title == "" {
		cfg.Title = "drape"
	}
	if cfg.Width < 1 || cfg.Height < 1 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.ScrollPerNotch == 0 {
		cfg.ScrollPerNotch = 0.05
	}
	if cfg.KeyRate == 0 {
		cfg.KeyRate = 0.75
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}

	p := &Presenter{choreo: choreo, cfg: cfg}
	p.input.PerNotch = cfg.ScrollPerNotch
	p.input.Keys = cfg.KeyDrive
	p.input.KeyRate = cfg.KeyRate
	p.input.Direction = cfg.KeyDirection
	return p
}

// Update polls input into the control signal and steps the choreography by
// one tick. Part of ebiten.Game.
func (p *Presenter) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	p.choreo.Signal().Store(p.input.Read(dt))

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		p.Screenshot(p.cfg.Title)
	}

	p.lastFrame = p.choreo.Step(dt)
	if p.cfg.OnFrame != nil {
		p.cfg.OnFrame(p.lastFrame)
	}
	return nil
}

// Draw paints the scene. Part of ebiten.Game.
func (p *Presenter) Draw(screen *ebiten.Image) {
	scene := p.choreo.Scene()
	if scene == nil {
		return
	}
	screen.Fill(toRGBA(scene.Background))
	p.rend.draw(screen, scene, p.cfg.Camera)
	if p.cfg.Overlay {
		p.drawOverlay(screen, scene)
	}
	p.flushScreenshots(screen)
}

// Layout reports the fixed logical screen size. Part of ebiten.Game.
func (p *Presenter) Layout(_, _ int) (int, int) {
	return p.cfg.Width, p.cfg.Height
}

// Frame returns the report from the most recent Step.
func (p *Presenter) Frame() drape.Frame {
	return p.lastFrame
}

// Run opens a window for the choreography and blocks until it closes. Call it
// from main; ebiten requires the loop on the main goroutine.
func Run(choreo *drape.Choreo, cfg Config) error {
	p := NewPresenter(choreo, cfg)
	ebiten.SetWindowTitle(p.cfg.Title)
	ebiten.SetWindowSize(p.cfg.Width, p.cfg.Height)
	return ebiten.RunGame(p)
}

// toRGBA converts a scene color to 8-bit RGBA for Fill.
func toRGBA(c drape.Color) color.RGBA {
	return color.RGBA{
		R: uint8(drape.Clamp01(c.R)*255 + 0.5),
		G: uint8(drape.Clamp01(c.G)*255 + 0.5),
		B: uint8(drape.Clamp01(c.B)*255 + 0.5),
		A: uint8(drape.Clamp01(c.A)*255 + 0.5),
	}
}
