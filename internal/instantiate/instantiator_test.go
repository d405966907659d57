package instantiate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/cesium_streamer/internal/content/contenttest"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileInstantiator(t *testing.T) {
	dir := t.TempDir()
	mesh := contenttest.GlbWithCopyright("Google;Zenrin")
	offset := r3.Vector{X: 1, Y: 2, Z: 3}

	result, err := NewFileInstantiator(dir).Instantiate(context.Background(), Request{
		Path:         "0-1/0-2",
		MeshBytes:    mesh,
		CenterOffset: &offset,
		Placement: geometry.Placement{
			Position: mgl32.Vec3{4, 5, 6},
			Rotation: mgl32.QuatIdent(),
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"Google", "Zenrin"}, result.Copyright)

	written, err := os.ReadFile(filepath.Join(dir, "0-1", "0-2.glb"))
	require.NoError(t, err)
	assert.Equal(t, mesh, written)

	data, err := os.ReadFile(filepath.Join(dir, "0-1", "0-2.json"))
	require.NoError(t, err)
	var meta sidecar
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, [3]float32{4, 5, 6}, meta.Position)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, meta.Rotation)
	require.NotNil(t, meta.CenterOffset)
	assert.Equal(t, [3]float64{1, 2, 3}, *meta.CenterOffset)
	assert.Equal(t, len(mesh), meta.MeshBytes)
}

func TestFileInstantiatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileInstantiator(t.TempDir()).Instantiate(ctx, Request{Path: "0"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryInstantiator(t *testing.T) {
	m := NewMemoryInstantiator()
	m.Reject = func(r Request) bool { return r.Path == "bad" }
	ctx := context.Background()

	result, err := m.Instantiate(ctx, Request{Path: "0-1", MeshBytes: []byte("not a glb")})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Copyright)

	result, err = m.Instantiate(ctx, Request{Path: "0", MeshBytes: contenttest.GlbWithCopyright("A")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, result.Copyright)

	result, err = m.Instantiate(ctx, Request{Path: "bad"})
	require.NoError(t, err)
	assert.False(t, result.Success)

	assert.Equal(t, []string{"0", "0-1"}, m.Paths())
	_, ok := m.Get("bad")
	assert.False(t, ok)
}
