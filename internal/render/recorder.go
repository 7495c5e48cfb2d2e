package render

import (
	"context"
	"sort"
	"sync"
)

// Recorder is a WriteFunc that keeps requests in memory
type Recorder struct {
	mu       sync.Mutex
	requests map[string]Request
	writes   int
	// Err, when set, is returned for every write
	Err error
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{requests: make(map[string]Request)}
}

// Write implements WriteFunc
func (r *Recorder) Write(ctx context.Context, req Request) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.Name] = req
	r.writes++
	return nil
}

// Writes counts successful writes, including repeated names
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Get returns the request written under name
func (r *Recorder) Get(name string) (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[name]
	return req, ok
}

// Names returns the recorded names, sorted
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.requests))
	for n := range r.requests {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
