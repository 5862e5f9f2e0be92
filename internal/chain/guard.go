package chain

import (
	"errors"
	"sync"
)

// ErrGenerationInFlight means a generation for the repository is
// already running. Second requests are rejected rather than queued, so
// two generations never race to fill the same commit message box.
var ErrGenerationInFlight = errors.New("a commit message generation is already running for this repository")

// Guard tracks which repositories have a generation in flight.
type Guard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{running: make(map[string]struct{})}
}

// Acquire reserves repoPath for one generation. The returned release
// func must be called when the generation finishes, success or not,
// and is safe to call more than once.
func (g *Guard) Acquire(repoPath string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.running[repoPath]; busy {
		return nil, ErrGenerationInFlight
	}
	g.running[repoPath] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, repoPath)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether repoPath has a generation in flight.
func (g *Guard) Busy(repoPath string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.running[repoPath]
	return busy
}
