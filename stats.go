package sapling

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsRefresh is how often, in seconds, the overlay text is rebuilt.
const statsRefresh = 0.5

// statsOverlay renders frame rate and per-scene collision statistics into a
// small image in the corner of the screen.
type statsOverlay struct {
	img     *ebiten.Image
	text    string
	elapsed float64
}

// update rebuilds the overlay text once statsRefresh seconds have passed.
func (o *statsOverlay) update(dt float64, scenes []*Scene) {
	o.elapsed += dt
	if o.text != "" && o.elapsed < statsRefresh {
		return
	}
	o.elapsed = 0
	o.text = formatStats(ebiten.ActualFPS(), ebiten.ActualTPS(), scenes)
}

func (o *statsOverlay) draw(screen *ebiten.Image) {
	if o.text == "" {
		return
	}
	lines := strings.Count(o.text, "\n") + 1
	w, h := 180, lines*16
	if o.img == nil || o.img.Bounds().Dx() != w || o.img.Bounds().Dy() != h {
		o.img = ebiten.NewImage(w, h)
	}
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
	screen.DrawImage(o.img, nil)
}

// formatStats builds the overlay text. Scenes whose backend reports no
// statistics are listed by name only.
func formatStats(fps, tps float64, scenes []*Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f\nTPS: %.1f", fps, tps)
	for _, s := range scenes {
		r, ok := s.backend.(statsReporter)
		if !ok {
			fmt.Fprintf(&b, "\n%s", s.Name())
			continue
		}
		st := r.Stats()
		fmt.Fprintf(&b, "\n%s: %d bodies %d pairs %d hits", s.Name(), st.Bodies, st.Pairs, st.Contacts)
	}
	return b.String()
}
