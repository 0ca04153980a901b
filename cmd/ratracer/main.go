// ratracer - image-method radio ray tracer
// Finds every specular path between a transmitter and a receiver among flat
// reflecting surfaces and sums them into a k-ray pathloss.
//
// Usage:
//
//	ratracer [options] <scene.json>
//
// The scene file lists surfaces (or a glTF model of them), the two antennas
// and optionally a receiver sweep. See -h for options.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/taigrr/ratracer/pkg/config"
	"github.com/taigrr/ratracer/pkg/models"
	"github.com/taigrr/ratracer/pkg/plot"
	"github.com/taigrr/ratracer/pkg/radio"
	"github.com/taigrr/ratracer/pkg/render"
	"github.com/taigrr/ratracer/pkg/shape"
	"github.com/taigrr/ratracer/pkg/tracelog"
	"github.com/taigrr/ratracer/pkg/tracer"
)

var (
	maxReflections = flag.Int("k", -1, "Maximum reflections per path (-1 uses the scene file)")
	frequency      = flag.Float64("freq", 0, "Carrier frequency in Hz (0 uses the scene file)")
	workers        = flag.Int("workers", 0, "Tracing goroutines (0 = GOMAXPROCS)")
	maxCandidates  = flag.Int("max-candidates", 0, "Refuse queries with more reflector sequences (0 = no limit)")
	timeout        = flag.Duration("timeout", 0, "Abort after this long (0 = no limit)")
	verbose        = flag.Bool("v", false, "Log every candidate sequence")
	quiet          = flag.Bool("q", false, "Do not log paths")
	noColor        = flag.Bool("no-color", false, "Disable colored output")
	jsonOut        = flag.Bool("json", false, "Write the report as JSON")
	plotPath       = flag.String("plot", "", "Write the sweep curve to this PNG")
	snapshotPath   = flag.String("snapshot", "", "Write a picture of the scene and paths to this PNG")
	view           = flag.Bool("view", false, "Open the interactive terminal viewer")
	targetFPS      = flag.Int("fps", 30, "Viewer target FPS")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ratracer - image-method radio ray tracer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ratracer [options] <scene.json>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nViewer controls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag / arrows / WASD - Orbit\n")
		fmt.Fprintf(os.Stderr, "  Scroll / +/-               - Zoom\n")
		fmt.Fprintf(os.Stderr, "  N/P                        - Next/previous path\n")
		fmt.Fprintf(os.Stderr, "  F                          - Toggle filled surfaces\n")
		fmt.Fprintf(os.Stderr, "  G                          - Toggle ground grid\n")
		fmt.Fprintf(os.Stderr, "  R                          - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?                          - Toggle HUD\n")
		fmt.Fprintf(os.Stderr, "  Esc/Q                      - Quit\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if *frequency != 0 {
		cfg.Frequency = *frequency
	}
	if *maxReflections >= 0 {
		cfg.MaxReflections = maxReflections
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var logOpts []tracelog.Option
	if *noColor {
		logOpts = append(logOpts, tracelog.WithNoColor())
	}
	logOpts = append(logOpts, tracelog.WithVerbose(*verbose))
	logger := tracelog.New(os.Stderr, logOpts...)

	opts := []tracer.Option{
		tracer.WithWorkers(*workers),
		tracer.WithMaxCandidates(*maxCandidates),
	}
	var obs tracer.Observer
	if !*quiet {
		obs = logger
	}
	setup, err := cfg.Build(opts...)
	if err != nil {
		return err
	}
	names := make(map[shape.ID]string, len(setup.Surfaces))
	for _, s := range setup.Surfaces {
		names[s.Plane.ID()] = s.Name
	}
	logger.SetNames(names)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	began := time.Now()
	res, err := traceQuery(ctx, setup, obs, opts...)
	if err != nil {
		return err
	}
	if *verbose {
		logger.Summary()
	}
	rep := newReport(cfgPath, cfg.Frequency, setup, res, names)

	if sw := setup.Sweep; sw != nil {
		powers, err := radio.Sweep(ctx, setup.Model, setup.Tx, setup.Rx, sw.Direction, sw.Distances, setup.MaxReflections, *workers)
		if err != nil {
			return err
		}
		rep.addSweep(sw.Distances, powers)
		if *plotPath != "" {
			if err := plotSweep(*plotPath, cfg.Frequency, setup, powers); err != nil {
				return err
			}
		}
	} else if *plotPath != "" {
		return errors.New("-plot needs a sweep in the scene file")
	}
	rep.Elapsed = time.Since(began).String()

	if *jsonOut {
		if err := rep.writeJSON(os.Stdout); err != nil {
			return err
		}
	} else {
		rep.writeText(os.Stdout, !*noColor)
	}

	meshes := make([]*models.Mesh, len(setup.Surfaces))
	for i, s := range setup.Surfaces {
		meshes[i] = s.Mesh
	}
	sv := render.NewSceneView(meshes, res)
	if *snapshotPath != "" {
		if err := render.Snapshot(sv, 640, 400, *snapshotPath); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if *view {
		return runViewer(ctx, sv, rep.viewerTitle(), *targetFPS)
	}
	return nil
}

// traceQuery traces the configured tx/rx pair. Only this query reports to
// obs; setup.Tracer, which the pathloss model and sweeps share, stays quiet.
func traceQuery(ctx context.Context, setup *config.Setup, obs tracer.Observer, opts ...tracer.Option) (*tracer.Result, error) {
	tr := setup.Tracer
	if obs != nil {
		tr = tracer.New(setup.Scene, append(slices.Clip(opts), tracer.WithObserver(obs))...)
	}
	res, err := tr.TraceParallel(ctx, setup.Tx.Position, setup.Rx.Position, setup.MaxReflections)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	return res, nil
}

// plotSweep draws the k-ray curve next to the free-space reference.
func plotSweep(path string, f float64, setup *config.Setup, powers []float64) error {
	sw := setup.Sweep
	chart := plot.New(
		fmt.Sprintf("received power at %.3g GHz, k = %d", f/1e9, setup.MaxReflections),
		"receiver offset, m", "power, dB")

	free := make([]float64, len(sw.Distances))
	for i, d := range sw.Distances {
		rx := setup.Rx.Position.Add(sw.Direction.Scale(d))
		free[i] = radio.ToLog(radio.FreeSpace(rx.Distance(setup.Tx.Position), f))
	}
	if err := chart.Add(fmt.Sprintf("up to %d reflections", setup.MaxReflections), sw.Distances, powers); err != nil {
		return err
	}
	if err := chart.Add("free space", sw.Distances, free); err != nil {
		return err
	}
	return chart.SavePNG(path)
}
