package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/taigrr/ratracer/pkg/config"
	"github.com/taigrr/ratracer/pkg/radio"
	"github.com/taigrr/ratracer/pkg/shape"
	"github.com/taigrr/ratracer/pkg/tracer"
)

// report is the outcome of one run.
type report struct {
	ID             string       `json:"id"`
	Scene          string       `json:"scene"`
	Frequency      float64      `json:"frequency"`
	MaxReflections int          `json:"maxReflections"`
	Tx             [3]float64   `json:"tx"`
	Rx             [3]float64   `json:"rx"`
	Surfaces       []string     `json:"surfaces"`
	Triangles      int          `json:"triangles"`
	Paths          []pathReport `json:"paths"`
	PowerDB        *float64     `json:"powerDb"` // null below the power floor
	Phase          float64      `json:"phase"`
	Sweep          *sweepReport `json:"sweep,omitempty"`
	Elapsed        string       `json:"elapsed"`
}

type pathReport struct {
	Reflections int          `json:"reflections"`
	Surfaces    []string     `json:"surfaces"`
	Length      float64      `json:"length"`
	Points      [][3]float64 `json:"points"`
	Reflectance float64      `json:"reflectance"`
	PowerDB     *float64     `json:"powerDb"`
	Phase       float64      `json:"phase"`
}

type sweepReport struct {
	Distances []float64  `json:"distances"`
	PowerDB   []*float64 `json:"powerDb"`
}

func newReport(scenePath string, f float64, setup *config.Setup, res *tracer.Result, names map[shape.ID]string) *report {
	rep := &report{
		ID:             uuid.NewString(),
		Scene:          filepath.Base(scenePath),
		Frequency:      f,
		MaxReflections: setup.MaxReflections,
		Tx:             setup.Tx.Position.Array(),
		Rx:             setup.Rx.Position.Array(),
	}
	for _, s := range setup.Surfaces {
		rep.Surfaces = append(rep.Surfaces, s.Name)
		rep.Triangles += s.Mesh.TriangleCount()
	}

	var total complex128
	for _, c := range setup.Model.Contributions(res, setup.Tx, setup.Rx) {
		total += c.Amplitude
		p := pathReport{
			Reflections: res.Path(c.Path).Reflections(),
			Length:      c.Length,
			Reflectance: radio.Amplitude(c.Reflectance),
			PowerDB:     finiteOrNil(radio.ToLog(radio.Power(c.Amplitude))),
			Phase:       radio.Phase(c.Amplitude),
		}
		for _, id := range res.Shapes(c.Path) {
			p.Surfaces = append(p.Surfaces, names[id])
		}
		for _, pt := range res.Breakpoints(c.Path) {
			p.Points = append(p.Points, pt.Array())
		}
		rep.Paths = append(rep.Paths, p)
	}
	rep.PowerDB = finiteOrNil(radio.ToLog(radio.Power(total)))
	rep.Phase = radio.Phase(total)
	return rep
}

func (r *report) addSweep(distances, powers []float64) {
	s := &sweepReport{Distances: distances, PowerDB: make([]*float64, len(powers))}
	for i, p := range powers {
		s.PowerDB[i] = finiteOrNil(p)
	}
	r.Sweep = s
}

func (r *report) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

var (
	headStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

func (r *report) writeText(w io.Writer, color bool) {
	head, label, value := headStyle, labelStyle, valueStyle
	if !color {
		head, label, value = lipgloss.NewStyle(), lipgloss.NewStyle(), lipgloss.NewStyle()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", head.Render("run"), label.Render(r.ID))
	fmt.Fprintf(&b, "%s %s at %.4g Hz, up to %d reflections\n", label.Render("scene"), r.Scene, r.Frequency, r.MaxReflections)
	fmt.Fprintf(&b, "%s %d surfaces (%d triangles), %d paths\n", label.Render("found"), len(r.Surfaces), r.Triangles, len(r.Paths))
	for i, p := range r.Paths {
		via := "line of sight"
		if p.Reflections > 0 {
			via = "via " + strings.Join(p.Surfaces, ", ")
		}
		fmt.Fprintf(&b, "  %2d  %8.3f m  %10s  |Γ| %.3f  %s\n", i, p.Length, formatDB(p.PowerDB), p.Reflectance, via)
	}
	fmt.Fprintf(&b, "%s %s, phase %.3f rad\n", head.Render("received"), value.Render(formatDB(r.PowerDB)), r.Phase)
	if s := r.Sweep; s != nil && len(s.Distances) > 0 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range s.PowerDB {
			if p != nil {
				lo, hi = math.Min(lo, *p), math.Max(hi, *p)
			}
		}
		fmt.Fprintf(&b, "%s %d positions over %.3g..%.3g m, %s to %s\n", label.Render("sweep"),
			len(s.Distances), s.Distances[0], s.Distances[len(s.Distances)-1],
			formatDB(finiteOrNil(lo)), formatDB(finiteOrNil(hi)))
	}
	fmt.Fprintf(&b, "%s %s", label.Render("elapsed"), r.Elapsed)
	lipgloss.Fprintln(w, b.String())
}

func (r *report) viewerTitle() string {
	return fmt.Sprintf("%s  %d paths  %s", r.Scene, len(r.Paths), formatDB(r.PowerDB))
}

func formatDB(v *float64) string {
	if v == nil {
		return "-inf dB"
	}
	return fmt.Sprintf("%.2f dB", *v)
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
