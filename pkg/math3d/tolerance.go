package math3d

import "strconv"

// Tolerance is the single threshold for near-zero conditions: degenerate
// normals, near-parallel ray/plane tests and zero-length directions.
const Tolerance = 1e-6

// ShadowMargin is trimmed from both ends of the fractional interval (0, 1)
// when testing a segment for shadowing. The far-end trim matches the 0.99999
// indent so a reflector never shadows the segment that ends on it; the
// near-end trim does the same for the segment that starts on it.
const ShadowMargin = 1e-5

// NearZero reports whether |x| is below Tolerance.
func NearZero(x float64) bool {
	return x > -Tolerance && x < Tolerance
}

func formatFloat(f float64) string {
	// Round away float noise such as 1.6666666666666667 or -0 in printed paths.
	s := strconv.FormatFloat(f, 'f', 6, 64)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
