package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/ratracer/pkg/render"
)

// smoothed eases a value toward its target with a critically damped spring.
type smoothed struct {
	Value  float64
	Target float64
	vel    float64
	spring harmonica.Spring
}

func newSmoothed(fps int, v float64) smoothed {
	return smoothed{
		Value:  v,
		Target: v,
		// Frequency 6.0 = quick follow, damping 1.0 = no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (s *smoothed) Update() {
	s.Value, s.vel = s.spring.Update(s.Value, s.vel, s.Target)
}

// orbit is the animated camera state.
type orbit struct {
	Azimuth, Elevation, Distance smoothed
	home                         [3]float64
	fps                          int
}

func newOrbit(fps int, cam *render.Camera) *orbit {
	o := &orbit{fps: fps, home: [3]float64{cam.Azimuth, cam.Elevation, cam.Distance}}
	o.Reset()
	return o
}

func (o *orbit) Reset() {
	o.Azimuth = newSmoothed(o.fps, o.home[0])
	o.Elevation = newSmoothed(o.fps, o.home[1])
	o.Distance = newSmoothed(o.fps, o.home[2])
}

func (o *orbit) Rotate(dAz, dEl float64) {
	o.Azimuth.Target += dAz
	o.Elevation.Target = math.Max(-1.5, math.Min(1.5, o.Elevation.Target+dEl))
}

func (o *orbit) Zoom(factor float64) {
	o.Distance.Target = math.Max(o.home[2]/20, math.Min(o.home[2]*5, o.Distance.Target*factor))
}

func (o *orbit) Apply(cam *render.Camera) {
	o.Azimuth.Update()
	o.Elevation.Update()
	o.Distance.Update()
	cam.SetOrbit(o.Azimuth.Value, o.Elevation.Value, o.Distance.Value)
}

var (
	hudStyle = uv.Style{Fg: color.RGBA{255, 255, 255, 255}, Bg: color.RGBA{0, 0, 0, 255}}
	hudDim   = uv.Style{Fg: color.RGBA{160, 160, 160, 255}, Bg: color.RGBA{0, 0, 0, 255}}
)

// drawText writes s into one row of cells starting at column x.
func drawText(scr uv.Screen, x, y int, s string, style uv.Style) {
	for _, r := range s {
		if x >= scr.Bounds().Max.X {
			return
		}
		scr.SetCell(x, y, &uv.Cell{Content: string(r), Width: 1, Style: style})
		x++
	}
}

func runViewer(ctx context.Context, view *render.SceneView, title string, fps int) error {
	if fps < 1 {
		fps = 30
	}
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking, SGR extended mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	// The bottom row is the HUD; every other row holds two pixel rows.
	fb := render.NewFramebuffer(width, 2*max(height-1, 1))
	camera := render.NewCamera()
	box := view.Bounds()
	camera.Frame(box)
	cam := newOrbit(fps, camera)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu                     sync.Mutex
		showHUD                = true
		mouseDown              bool
		lastMouseX, lastMouseY int
	)
	paths := 0
	if view.Result != nil {
		paths = view.Result.Len()
	}
	selectPath := func(step int) {
		if paths == 0 {
			return
		}
		// -1 shows all paths; the cycle is -1, 0, 1, ..., paths-1.
		view.Selected = (view.Selected+1+step+paths+1)%(paths+1) - 1
	}

	go func() {
		for ev := range term.Events() {
			mu.Lock()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb.Resize(width, 2*max(height-1, 1))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "q", "ctrl+c"):
					cancel()
				case ev.MatchString("w", "up"):
					cam.Rotate(0, 0.15)
				case ev.MatchString("s", "down"):
					cam.Rotate(0, -0.15)
				case ev.MatchString("a", "left"):
					cam.Rotate(-0.2, 0)
				case ev.MatchString("d", "right"):
					cam.Rotate(0.2, 0)
				case ev.MatchString("+", "="):
					cam.Zoom(0.8)
				case ev.MatchString("-", "_"):
					cam.Zoom(1.25)
				case ev.MatchString("n", "tab"):
					selectPath(1)
				case ev.MatchString("p", "shift+tab"):
					selectPath(-1)
				case ev.MatchString("f"):
					view.Filled = !view.Filled
				case ev.MatchString("g"):
					view.Grid = !view.Grid
				case ev.MatchString("r"):
					cam.Reset()
					view.Selected = -1
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					showHUD = !showHUD
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					cam.Rotate(float64(ev.X-lastMouseX)*0.05, float64(ev.Y-lastMouseY)*0.05)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					cam.Zoom(0.9)
				case uv.MouseWheelDown:
					cam.Zoom(1.1)
				}
			}
			mu.Unlock()
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(fps)
	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}
		now := time.Now()

		mu.Lock()
		cam.Apply(camera)
		view.Render(fb, camera)
		fb.Draw(term, uv.Rect(0, 0, width, max(height-1, 1)))

		hud := ""
		if showHUD {
			hud = " " + title
			if view.Selected >= 0 {
				hud += fmt.Sprintf("  [path %d/%d]", view.Selected+1, paths)
			}
		}
		for x := range width {
			term.SetCell(x, height-1, &uv.Cell{Content: " ", Width: 1, Style: hudDim})
		}
		drawText(term, 0, height-1, hud, hudStyle)
		if showHUD {
			const hint = "n/p path  f fill  g grid  ? hud "
			drawText(term, max(width-len(hint), len(hud)+1), height-1, hint, hudDim)
		}
		mu.Unlock()

		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
