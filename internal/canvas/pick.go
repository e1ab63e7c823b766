package canvas

import (
	"sort"

	"github.com/litescript/ls-globe/internal/scene"
)

// PickRadius is the hit radius around a marker glyph, in cell widths.
const PickRadius = 1.5

// hitCircle is a circular hit area in cell space. Vertical distance is
// scaled by the cell aspect so the circle is round on screen.
type hitCircle struct {
	ID      scene.ID
	CenterX float64
	CenterY float64
	Radius  float64
	Depth   float64
}

func (h hitCircle) contains(x, y float64) bool {
	dx := x - h.CenterX
	dy := (y - h.CenterY) * CharAspect
	return dx*dx+dy*dy <= h.Radius*h.Radius
}

// Pick returns the nearest marker drawn at cell (x, y) in the last frame.
func (r *Renderer) Pick(x, y int) scene.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	px, py := float64(x)+0.5, float64(y)+0.5
	for _, h := range r.hits {
		if h.contains(px, py) {
			return h.ID
		}
	}
	return 0
}

func sortHits(hits []hitCircle) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Depth < hits[j].Depth })
}
