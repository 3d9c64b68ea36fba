package files

import "sync"

// fillGuard coordinates cache fills on a miss with concurrent Saves. A Save
// that lands while a miss for the same id is loading marks the fill stale,
// and the loaded copy, which may predate the Save, is not cached.
type fillGuard struct {
	mu      sync.Mutex
	flights map[string]*fill
}

type fill struct {
	readers int
	stale   bool
}

func newFillGuard() *fillGuard {
	return &fillGuard{flights: make(map[string]*fill)}
}

// begin registers a miss for id. It must be called before the backing read.
func (g *fillGuard) begin(id string) *fill {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.flights[id]
	if !ok {
		f = &fill{}
		g.flights[id] = f
	}
	f.readers++
	return f
}

// finish ends a miss started with begin. store runs under the guard's lock
// unless a Save marked the fill stale; pass nil when the read failed.
func (g *fillGuard) finish(id string, f *fill, store func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if store != nil && !f.stale {
		store()
	}
	f.readers--
	if f.readers == 0 {
		delete(g.flights, id)
	}
}

// invalidate marks any in-flight miss for id stale and runs update under the
// guard's lock, so update and a racing fill never interleave.
func (g *fillGuard) invalidate(id string, update func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if f, ok := g.flights[id]; ok {
		f.stale = true
	}
	update()
}
