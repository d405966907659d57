package instantiate

import (
	"context"
	"sort"
	"sync"

	"github.com/ecopia-map/cesium_streamer/internal/observability"
)

// MemoryInstantiator keeps every request it receives
type MemoryInstantiator struct {
	mu      sync.Mutex
	records map[string]Request

	// Reject makes Instantiate report failure for matching requests
	Reject func(request Request) bool
}

func NewMemoryInstantiator() *MemoryInstantiator {
	return &MemoryInstantiator{records: make(map[string]Request)}
}

func (m *MemoryInstantiator) Instantiate(ctx context.Context, request Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.Reject != nil && m.Reject(request) {
		return Result{Success: false}, nil
	}

	m.mu.Lock()
	m.records[request.Path] = request
	m.mu.Unlock()

	observability.DecodedMeshBytes.Add(float64(len(request.MeshBytes)))
	return Result{Success: true, Copyright: meshCopyright(request.MeshBytes)}, nil
}

func (m *MemoryInstantiator) Get(path string) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[path]
	return r, ok
}

// Paths returns the paths of every instantiated mesh, sorted
func (m *MemoryInstantiator) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := make([]string, 0, len(m.records))
	for p := range m.records {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
