// Package plot draws line charts of pathloss curves to PNG.
package plot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNoData is returned when a chart has no finite points to draw.
	ErrNoData = errors.New("no data to plot")
	// ErrLengthMismatch is returned for a series whose X and Y differ in length.
	ErrLengthMismatch = errors.New("x and y lengths differ")
)

// Default chart size in pixels.
const (
	DefaultWidth  = 960
	DefaultHeight = 600
)

const margin = 64

var palette = []color.Color{
	color.RGBA{31, 119, 180, 255},
	color.RGBA{255, 127, 14, 255},
	color.RGBA{44, 160, 44, 255},
	color.RGBA{214, 39, 40, 255},
	color.RGBA{148, 103, 189, 255},
	color.RGBA{140, 86, 75, 255},
}

// Series is one named curve.
type Series struct {
	Name  string
	X, Y  []float64
	Color color.Color // nil picks from the palette
}

// Chart is a set of curves sharing axes.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
	Series []Series
}

// New returns an empty chart of the default size.
func New(title, xlabel, ylabel string) *Chart {
	return &Chart{
		Title:  title,
		XLabel: xlabel,
		YLabel: ylabel,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// Add appends a curve.
func (c *Chart) Add(name string, x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("series %q: %w: %d != %d", name, ErrLengthMismatch, len(x), len(y))
	}
	c.Series = append(c.Series, Series{Name: name, X: x, Y: y})
	return nil
}

// Bounds returns the data range over finite points of every series.
func (c *Chart) Bounds() (xmin, xmax, ymin, ymax float64, err error) {
	var xs, ys []float64
	for _, s := range c.Series {
		for i := range s.X {
			if finite(s.X[i]) && finite(s.Y[i]) {
				xs = append(xs, s.X[i])
				ys = append(ys, s.Y[i])
			}
		}
	}
	if len(xs) == 0 {
		return 0, 0, 0, 0, ErrNoData
	}
	return floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys), nil
}

// Image renders the chart.
func (c *Chart) Image() (image.Image, error) {
	dc, err := c.draw()
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// SavePNG renders the chart to path.
func (c *Chart) SavePNG(path string) error {
	dc, err := c.draw()
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func (c *Chart) draw() (*gg.Context, error) {
	for _, s := range c.Series {
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("series %q: %w", s.Name, ErrLengthMismatch)
		}
	}
	xmin, xmax, ymin, ymax, err := c.Bounds()
	if err != nil {
		return nil, err
	}
	xstep := niceStep(xmax - xmin)
	ystep := niceStep(ymax - ymin)
	xmin, xmax = widen(xmin, xmax, xstep)
	ymin, ymax = widen(ymin, ymax, ystep)

	w, h := c.Width, c.Height
	if w <= 2*margin || h <= 2*margin {
		w, h = DefaultWidth, DefaultHeight
	}
	left, right := float64(margin), float64(w-margin/2)
	top, bottom := float64(margin/2), float64(h-margin)
	px := func(x float64) float64 { return left + (x-xmin)/(xmax-xmin)*(right-left) }
	py := func(y float64) float64 { return bottom - (y-ymin)/(ymax-ymin)*(bottom-top) }

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Grid and tick labels
	dc.SetLineWidth(1)
	for x := xmin; x <= xmax+xstep/2; x += xstep {
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawLine(px(x), top, px(x), bottom)
		dc.Stroke()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(tick(x, xstep), px(x), bottom+6, 0.5, 1)
	}
	for y := ymin; y <= ymax+ystep/2; y += ystep {
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawLine(left, py(y), right, py(y))
		dc.Stroke()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(tick(y, ystep), left-6, py(y), 1, 0.5)
	}

	// Axes
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(left, top, right-left, bottom-top)
	dc.Stroke()
	dc.DrawStringAnchored(c.Title, float64(w)/2, top/2, 0.5, 0.5)
	dc.DrawStringAnchored(c.XLabel, (left+right)/2, float64(h)-12, 0.5, 0)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, 14, (top+bottom)/2)
	dc.DrawStringAnchored(c.YLabel, 14, (top+bottom)/2, 0.5, 0.5)
	dc.Pop()

	// Curves; non-finite points break the line.
	dc.SetLineWidth(1.5)
	for i, s := range c.Series {
		dc.SetColor(seriesColor(s, i))
		pen := false
		for j := range s.X {
			if !finite(s.X[j]) || !finite(s.Y[j]) {
				pen = false
				continue
			}
			if pen {
				dc.LineTo(px(s.X[j]), py(s.Y[j]))
			} else {
				dc.MoveTo(px(s.X[j]), py(s.Y[j]))
				pen = true
			}
		}
		dc.Stroke()
	}

	// Legend
	for i, s := range c.Series {
		y := top + 14 + float64(i)*16
		dc.SetColor(seriesColor(s, i))
		dc.DrawLine(right-150, y, right-126, y)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(s.Name, right-120, y, 0, 0.5)
	}
	return dc, nil
}

func seriesColor(s Series, i int) color.Color {
	if s.Color != nil {
		return s.Color
	}
	return palette[i%len(palette)]
}

// niceStep returns a 1, 2 or 5 times power of ten step giving roughly
// eight ticks over span.
func niceStep(span float64) float64 {
	if !(span > 0) || !finite(span) {
		return 1
	}
	raw := span / 8
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / mag; {
	case f < 1.5:
		return mag
	case f < 3.5:
		return 2 * mag
	case f < 7.5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// widen snaps [lo, hi] outward to multiples of step.
func widen(lo, hi, step float64) (float64, float64) {
	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step
	if hi <= lo {
		hi = lo + step
	}
	return lo, hi
}

func tick(v, step float64) string {
	prec := 0
	if step < 1 {
		prec = int(math.Ceil(-math.Log10(step)))
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
