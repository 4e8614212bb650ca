package sapling

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures Run and NewGame.
type RunConfig struct {
	Title         string
	Width, Height int
	ClearColor    Color
	// ShowCollision draws every scene's collision debug mesh.
	ShowCollision bool
	// ShowStats draws frame rate and collision statistics in the top-left
	// corner.
	ShowStats bool
	// Loop drives the scenes; a default Loop over all registered scenes is
	// used when nil.
	Loop *Loop
}

// Game adapts a Loop to ebiten.Game. Each ebiten tick advances the loop by
// one frame and forwards mouse input to the scenes' pointer dispatch.
type Game struct {
	cfg   RunConfig
	loop  *Loop
	mesh  DebugMesh
	stats statsOverlay

	cursor    [2]int
	hasCursor bool
}

// NewGame creates a Game for cfg.
func NewGame(cfg RunConfig) *Game {
	loop := cfg.Loop
	if loop == nil {
		loop = NewLoop()
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	return &Game{cfg: cfg, loop: loop}
}

// Loop returns the loop driven by the game.
func (g *Game) Loop() *Loop {
	return g.loop
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := 1 / float64(ebiten.TPS())
	g.loop.Advance(dt)
	g.processMouse()
	if g.cfg.ShowStats {
		g.stats.update(dt, g.loop.scenes())
	}
	return nil
}

// processMouse turns ebiten mouse state into pointer actions. Scenes are
// offered each action in creation order until one handles it.
func (g *Game) processMouse() {
	x, y := ebiten.CursorPosition()
	moved := !g.hasCursor || x != g.cursor[0] || y != g.cursor[1]
	g.cursor = [2]int{x, y}
	g.hasCursor = true

	var actions [3]PointerAction
	n := 0
	if moved {
		actions[n] = PointerMove
		n++
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		actions[n] = PointerDown
		n++
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		actions[n] = PointerUp
		n++
	}
	if n == 0 {
		return
	}
	scenes := g.loop.scenes()
	for _, action := range actions[:n] {
		for _, s := range scenes {
			if s.DispatchPointer(float64(x), float64(y), action) {
				break
			}
		}
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.ClearColor.toRGBA())
	if g.cfg.ShowCollision {
		for _, s := range g.loop.scenes() {
			if !s.IsEnabled() {
				continue
			}
			s.CollisionDebugMesh(&g.mesh)
			g.mesh.Draw(screen, s.Camera(), 0.5)
		}
	}
	if g.cfg.ShowStats {
		g.stats.draw(screen)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives the scenes until it is closed.
func Run(cfg RunConfig) error {
	g := NewGame(cfg)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	return ebiten.RunGame(g)
}

func (c Color) toRGBA() color.RGBA {
	clamp := func(v float64) uint8 {
		return uint8(min(max(v, 0), 1)*255 + 0.5)
	}
	return color.RGBA{R: clamp(c.R * c.A), G: clamp(c.G * c.A), B: clamp(c.B * c.A), A: clamp(c.A)}
}
