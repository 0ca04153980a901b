package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to half-block terminal cells, two pixel
// rows per cell, and draws them on the screen.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack      = color.RGBA{0, 0, 0, 255}
	ColorWhite      = color.RGBA{255, 255, 255, 255}
	ColorRed        = color.RGBA{255, 0, 0, 255}
	ColorGreen      = color.RGBA{0, 255, 0, 255}
	ColorBlue       = color.RGBA{0, 0, 255, 255}
	ColorYellow     = color.RGBA{255, 255, 0, 255}
	ColorCyan       = color.RGBA{0, 255, 255, 255}
	ColorMagenta    = color.RGBA{255, 0, 255, 255}
	ColorGray       = color.RGBA{128, 128, 128, 255}
	ColorBackground = color.RGBA{30, 30, 40, 255}
)

// pathPalette colors paths by reflection count: line of sight first.
var pathPalette = []Color{
	ColorWhite,
	RGB(255, 200, 60),
	RGB(80, 200, 255),
	RGB(255, 90, 160),
	RGB(140, 255, 120),
}

// PathColor returns the color used for paths with n reflections.
func PathColor(n int) Color {
	if n < 0 {
		n = 0
	}
	return pathPalette[n%len(pathPalette)]
}

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Shade scales the RGB channels of c by f, saturating at 255.
func Shade(c Color, f float64) Color {
	f = max(0, f)
	ch := func(v uint8) uint8 { return uint8(min(255, float64(v)*f)) }
	return RGB(ch(c.R), ch(c.G), ch(c.B))
}
