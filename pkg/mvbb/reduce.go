package mvbb

import "golang.org/x/sync/errgroup"

// parallelThreshold is the input size below which reductions stay on the
// calling goroutine.
const parallelThreshold = 1 << 14

// chunked splits [0, n) into contiguous ranges and runs fn on each, in
// parallel when n is large enough. It returns the number of ranges; fn is
// called with the range index so callers can merge results in order.
func chunked(n, workers int, fn func(chunk, lo, hi int)) int {
	chunks := 1
	if workers > 1 && n >= parallelThreshold {
		chunks = workers
	}
	if chunks == 1 {
		fn(0, 0, n)
		return 1
	}

	size := (n + chunks - 1) / chunks
	var g errgroup.Group
	for c := 0; c < chunks; c++ {
		lo, hi := c*size, min((c+1)*size, n)
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			fn(c, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
	return chunks
}

// argMax returns the lowest index maximizing value over [0, n), or -1 when
// n is zero.
func argMax(n, workers int, value func(i int) float64) (int, float64) {
	type best struct {
		index int
		value float64
	}
	results := make([]best, max(workers, 1))
	for i := range results {
		results[i].index = -1
	}

	chunks := chunked(n, workers, func(c, lo, hi int) {
		b := best{index: -1}
		for i := lo; i < hi; i++ {
			if v := value(i); b.index < 0 || v > b.value {
				b = best{index: i, value: v}
			}
		}
		results[c] = b
	})

	out := best{index: -1}
	for _, b := range results[:chunks] {
		if b.index >= 0 && (out.index < 0 || b.value > out.value) {
			out = b
		}
	}
	return out.index, out.value
}
