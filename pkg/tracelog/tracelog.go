// Package tracelog prints tracing events as styled text.
package tracelog

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"charm.land/lipgloss/v2"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/shape"
	"github.com/taigrr/ratracer/pkg/tracer"
)

type styles struct {
	candidate lipgloss.Style
	detail    lipgloss.Style
	accepted  lipgloss.Style
	rejected  lipgloss.Style
	name      lipgloss.Style
}

func colored() styles {
	return styles{
		candidate: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		accepted:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		rejected:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		name:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Option configures a Logger.
type Option func(*Logger)

// WithNames labels surfaces by name instead of by ID.
func WithNames(names map[shape.ID]string) Option {
	return func(l *Logger) {
		l.names = names
	}
}

// WithVerbose also prints candidates, images and intersections.
func WithVerbose(v bool) Option {
	return func(l *Logger) {
		l.verbose = v
	}
}

// WithNoColor disables ANSI styling.
func WithNoColor() Option {
	return func(l *Logger) {
		l.styles = styles{}
	}
}

// Logger is a tracer.Observer that writes one line per event. Colors are
// downsampled to what w supports. It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	names   map[shape.ID]string
	verbose bool
	styles  styles

	candidates atomic.Int64
	accepted   atomic.Int64
	missed     atomic.Int64
	shadowed   atomic.Int64
}

var _ tracer.Observer = (*Logger)(nil)

// New returns a logger writing to w.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{w: w, styles: colored()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetNames replaces the surface labels. Surfaces get their IDs when the
// scene is built, so names are usually set after the logger is created.
func (l *Logger) SetNames(names map[shape.ID]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = names
}

// Candidate counts a sequence and prints it in verbose mode.
func (l *Logger) Candidate(seq []shape.ID) {
	l.candidates.Add(1)
	if l.verbose {
		l.printf("%s %s", l.styles.candidate.Render("candidate"), l.sequence(seq))
	}
}

// Images prints the mirrored receivers in verbose mode.
func (l *Logger) Images(seq []shape.ID, images []math3d.Vec3) {
	if l.verbose && len(seq) > 0 {
		l.printf("  %s %s", l.styles.detail.Render("images"), tracer.View(images, " "))
	}
}

// Intersection prints one forward step in verbose mode.
func (l *Logger) Intersection(s shape.Shape, image, point math3d.Vec3) {
	if l.verbose {
		l.printf("  %s %s toward %v at %v", l.styles.detail.Render("hit"), l.shape(s.ID()), image, point)
	}
}

// Rejected counts and prints a dropped sequence.
func (l *Logger) Rejected(seq []shape.ID, r tracer.Rejection) {
	switch r.Reason {
	case tracer.Missed:
		l.missed.Add(1)
	case tracer.Shadowed:
		l.shadowed.Add(1)
	}
	if !l.verbose {
		return
	}
	by := "by"
	if r.Reason == tracer.Missed {
		by = "reflector"
	}
	l.printf("  %s %s: %s %s %s on leg %d", l.styles.rejected.Render("rejected"),
		l.sequence(seq), r.Reason, by, l.shape(r.Shape), r.Leg)
}

// Accepted counts and prints a found path.
func (l *Logger) Accepted(seq []shape.ID, start math3d.Vec3, p tracer.Path) {
	l.accepted.Add(1)
	l.printf("%s %s length %.3f: %s", l.styles.accepted.Render("path"),
		l.sequence(seq), p.Length(), tracer.View(p.Breakpoints(start), " -> "))
}

// Stats are the event counts seen so far.
type Stats struct {
	Candidates int64
	Accepted   int64
	Missed     int64
	Shadowed   int64
}

// Stats returns the event counts seen so far.
func (l *Logger) Stats() Stats {
	return Stats{
		Candidates: l.candidates.Load(),
		Accepted:   l.accepted.Load(),
		Missed:     l.missed.Load(),
		Shadowed:   l.shadowed.Load(),
	}
}

// Summary prints the event counts.
func (l *Logger) Summary() {
	s := l.Stats()
	l.printf("%s %d candidates, %d paths, %d missed, %d shadowed",
		l.styles.candidate.Render("summary"), s.Candidates, s.Accepted, s.Missed, s.Shadowed)
}

func (l *Logger) sequence(seq []shape.ID) string {
	if len(seq) == 0 {
		return l.styles.name.Render("[los]")
	}
	parts := make([]string, len(seq))
	for i, id := range seq {
		parts[i] = l.shape(id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (l *Logger) shape(id shape.ID) string {
	l.mu.Lock()
	name, ok := l.names[id]
	l.mu.Unlock()
	if !ok {
		name = "#" + id.String()
	}
	return l.styles.name.Render(name)
}

func (l *Logger) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lipgloss.Fprintf(l.w, format+"\n", args...)
}
