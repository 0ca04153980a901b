package plot

import (
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNiceStep(t *testing.T) {
	tests := []struct {
		span float64
		want float64
	}{
		{8, 1},
		{16, 2},
		{40, 5},
		{70, 10},
		{0.8, 0.1},
		{0, 1},
		{math.Inf(1), 1},
	}
	for _, tc := range tests {
		if got := niceStep(tc.span); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("niceStep(%v) = %v, want %v", tc.span, got, tc.want)
		}
	}
}

func TestWiden(t *testing.T) {
	lo, hi := widen(-93.4, -41.2, 10)
	if lo != -100 || hi != -40 {
		t.Errorf("widen() = %v, %v, want -100, -40", lo, hi)
	}
	lo, hi = widen(5, 5, 1)
	if hi <= lo {
		t.Errorf("flat range not widened: %v, %v", lo, hi)
	}
}

func TestBounds(t *testing.T) {
	c := New("t", "x", "y")
	if _, _, _, _, err := c.Bounds(); !errors.Is(err, ErrNoData) {
		t.Errorf("empty chart: err = %v, want ErrNoData", err)
	}

	if err := c.Add("a", []float64{1, 2, 3}, []float64{-50, math.Inf(-1), -70}); err != nil {
		t.Fatal(err)
	}
	if err := c.Add("b", []float64{0, 4}, []float64{-60, -65}); err != nil {
		t.Fatal(err)
	}
	xmin, xmax, ymin, ymax, err := c.Bounds()
	if err != nil {
		t.Fatal(err)
	}
	if xmin != 0 || xmax != 4 || ymin != -70 || ymax != -50 {
		t.Errorf("Bounds() = %v %v %v %v", xmin, xmax, ymin, ymax)
	}
}

func TestAddLengthMismatch(t *testing.T) {
	c := New("t", "x", "y")
	err := c.Add("bad", []float64{1, 2}, []float64{1})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
	if len(c.Series) != 0 {
		t.Error("mismatched series was added")
	}
}

func TestSavePNG(t *testing.T) {
	c := New("pathloss", "distance, m", "power, dB")
	c.Width, c.Height = 320, 200
	x := []float64{1, 2, 4, 8, 16}
	y := []float64{-40, -46, -52, -58, -64}
	if err := c.Add("free space", x, y); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "plot.png")
	if err := c.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("image is %dx%d, want 320x200", b.Dx(), b.Dy())
	}
}

func TestImageNoData(t *testing.T) {
	c := New("t", "x", "y")
	if _, err := c.Image(); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}
