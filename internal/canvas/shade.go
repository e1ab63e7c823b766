package canvas

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-globe/internal/geo"
)

// Procedural surface colors used when the globe has no texture.
var (
	oceanColor     = mustHex("#1b3b6f")
	graticuleColor = mustHex("#4f6fa8")
	starColor      = mustHex("#8a8a9a")
	black          = colorful.Color{}
)

// shadeRamp maps brightness to glyph density.
var shadeRamp = []rune("·:-=+*#%@█")

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// parseHex returns fallback for empty or malformed colors.
func parseHex(s string, fallback colorful.Color) colorful.Color {
	if s == "" {
		return fallback
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}

func scaleColor(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}.Clamped()
}

func multiply(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R * b.R, G: a.G * b.G, B: a.B * b.B}
}

func luminance(c colorful.Color) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

func rampGlyph(brightness float64) rune {
	i := int(clamp01(brightness) * float64(len(shadeRamp)-1))
	return shadeRamp[i]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// sampleTexture returns the equirectangular texel for c.
func sampleTexture(img image.Image, c geo.Coordinates) (colorful.Color, bool) {
	if img == nil {
		return black, false
	}
	b := img.Bounds()
	if b.Empty() {
		return black, false
	}
	u := (c.Lon + 180) / 360
	v := (90 - c.Lat) / 180
	x := b.Min.X + int(clamp01(u)*float64(b.Dx()-1))
	y := b.Min.Y + int(clamp01(v)*float64(b.Dy()-1))
	return colorful.MakeColor(img.At(x, y))
}

// surfaceColor is the untextured globe: ocean with a 30 degree graticule.
func surfaceColor(c geo.Coordinates) colorful.Color {
	const step = 30.0
	const width = 1.5
	near := func(v float64) bool {
		m := math.Mod(math.Abs(v), step)
		return m < width || step-m < width
	}
	if near(c.Lat) || near(c.Lon) {
		return graticuleColor
	}
	return oceanColor
}
