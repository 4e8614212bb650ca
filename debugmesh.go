package sapling

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// DebugMesh is a triangle list in world space describing collision bodies.
// Backends fill it; callers own it and may reuse it across frames so the
// vertex and index buffers are recycled.
type DebugMesh struct {
	Vertices []ebiten.Vertex
	Indices  []uint32

	// Scratch buffer for camera-projected vertices.
	screen []ebiten.Vertex
}

// Reset empties the mesh, keeping its buffers.
func (m *DebugMesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

// NumQuads returns the number of quads in the mesh.
func (m *DebugMesh) NumQuads() int {
	return len(m.Vertices) / 4
}

// AddQuad appends r as two triangles sharing the diagonal from (maxX, minY)
// to (minX, maxY).
func (m *DebugMesh) AddQuad(r Rect, c Color) {
	base := uint32(len(m.Vertices))
	x0, y0 := float32(r.X), float32(r.Y)
	x1, y1 := float32(r.X+r.Width), float32(r.Y+r.Height)
	cr, cg, cb, ca := float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	m.Vertices = append(m.Vertices,
		ebiten.Vertex{DstX: x0, DstY: y0, SrcX: 0.5, SrcY: 0.5, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: x1, DstY: y0, SrcX: 0.5, SrcY: 0.5, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: x0, DstY: y1, SrcX: 0.5, SrcY: 0.5, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: x1, DstY: y1, SrcX: 0.5, SrcY: 0.5, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
	)
	m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+1, base+3)
}

// Draw renders the mesh onto dst. With a nil camera world coordinates are
// used as screen coordinates. alpha scales every vertex color so bodies stay
// see-through.
func (m *DebugMesh) Draw(dst *ebiten.Image, cam *Camera, alpha float32) {
	if len(m.Indices) == 0 {
		return
	}
	m.screen = append(m.screen[:0], m.Vertices...)
	for i := range m.screen {
		v := &m.screen[i]
		if cam != nil {
			sx, sy := cam.WorldToScreen(float64(v.DstX), float64(v.DstY))
			v.DstX, v.DstY = float32(sx), float32(sy)
		}
		v.ColorR *= alpha
		v.ColorG *= alpha
		v.ColorB *= alpha
		v.ColorA *= alpha
	}
	var op ebiten.DrawTrianglesOptions
	dst.DrawTriangles32(m.screen, m.Indices, ensureWhitePixel(), &op)
}

// white pixel source singleton (no sync.Once, drawing is single-threaded)
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}
