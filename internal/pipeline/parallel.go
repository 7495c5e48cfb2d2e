package pipeline

import (
	"runtime"
	"sync"
)

// WorkerCount returns the default pool size: every CPU but one, at least one.
func WorkerCount() int {
	n := runtime.NumCPU()
	if n <= 2 {
		return 1
	}
	return n - 1
}

// Shards splits n rows into at most workers contiguous [start, end) spans of
// near-equal size.
func Shards(n, workers int) [][2]int {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	spans := make([][2]int, 0, workers)
	size, extra := n/workers, n%workers
	start := 0
	for i := 0; i < workers; i++ {
		end := start + size
		if i < extra {
			end++
		}
		spans = append(spans, [2]int{start, end})
		start = end
	}
	return spans
}

// ApplyParallel applies fn to contiguous shards of rows concurrently and
// concatenates the results in shard order. fn must only read its own shard.
func ApplyParallel[T, U any](rows []T, fn func([]T) []U, workers int) []U {
	spans := Shards(len(rows), workers)
	if len(spans) <= 1 {
		return fn(rows)
	}

	results := make([][]U, len(spans))
	var wg sync.WaitGroup
	for i, span := range spans {
		wg.Add(1)
		go func(i int, shard []T) {
			defer wg.Done()
			results[i] = fn(shard)
		}(i, rows[span[0]:span[1]:span[1]])
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]U, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// Map adapts a per-row function to a shard function for ApplyParallel.
func Map[T, U any](fn func(T) U) func([]T) []U {
	return func(shard []T) []U {
		out := make([]U, len(shard))
		for i, row := range shard {
			out[i] = fn(row)
		}
		return out
	}
}
