package tracer

import (
	"iter"
	"math"

	"github.com/taigrr/ratracer/pkg/shape"
)

// Sequences yields every k-tuple over ids, in lexicographic order of
// position in ids, that has no two equal adjacent entries. k == 0 yields a
// single empty sequence.
//
// The yielded slice is reused between iterations; clone it to keep it.
func Sequences(ids []shape.ID, k int) iter.Seq[[]shape.ID] {
	return func(yield func([]shape.ID) bool) {
		if k < 0 {
			return
		}
		buf := make([]shape.ID, k)
		var fill func(pos int) bool
		fill = func(pos int) bool {
			if pos == k {
				return yield(buf)
			}
			for _, id := range ids {
				if pos > 0 && buf[pos-1] == id {
					continue
				}
				buf[pos] = id
				if !fill(pos + 1) {
					return false
				}
			}
			return true
		}
		fill(0)
	}
}

// AllSequences yields the sequences of length 0 through maxLen, shortest
// first. The yielded slice is reused between iterations.
func AllSequences(ids []shape.ID, maxLen int) iter.Seq[[]shape.ID] {
	return func(yield func([]shape.ID) bool) {
		for k := 0; k <= longestSequence(len(ids), maxLen); k++ {
			for seq := range Sequences(ids, k) {
				if !yield(seq) {
					return
				}
			}
		}
	}
}

// CountSequences returns how many sequences Sequences yields for n distinct
// ids: n·(n-1)^(k-1). The count saturates at math.MaxInt.
func CountSequences(n, k int) int {
	switch {
	case k < 0:
		return 0
	case k == 0:
		return 1
	case n <= 0, n == 1 && k > 1:
		return 0
	case n <= 2:
		return n
	}
	count := n
	for range k - 1 {
		if count > math.MaxInt/(n-1) {
			return math.MaxInt
		}
		count *= n - 1
	}
	return count
}

// CountAllSequences returns how many sequences AllSequences yields.
func CountAllSequences(n, maxLen int) int {
	maxLen = longestSequence(n, maxLen)
	switch {
	case maxLen < 0:
		return 0
	case n == 2:
		// Two sequences of every length.
		if maxLen > (math.MaxInt-1)/2 {
			return math.MaxInt
		}
		return 1 + 2*maxLen
	}
	total := 0
	for k := 0; k <= maxLen; k++ {
		c := CountSequences(n, k)
		if total > math.MaxInt-c {
			return math.MaxInt
		}
		total += c
	}
	return total
}

// longestSequence caps maxLen at the longest length that has any sequence:
// none but the empty one without ids, and single reflections with one id.
func longestSequence(n, maxLen int) int {
	switch {
	case n <= 0:
		return min(maxLen, 0)
	case n == 1:
		return min(maxLen, 1)
	}
	return maxLen
}
