package tileset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverseNamesInPreOrder(t *testing.T) {
	ts, err := Parse([]byte(sampleTileset))
	require.NoError(t, err)

	var names []string
	var geometricErrors []float64
	Traverse(ts.Root, func(tile *Tile, name string) {
		names = append(names, name)
		geometricErrors = append(geometricErrors, tile.GeometricError)
	})

	assert.Equal(t, []string{"0", "0-0", "0-1", "0-1-0"}, names)
	assert.Equal(t, []float64{100, 10, 0, 0}, geometricErrors)
}

func TestTraverseNilRoot(t *testing.T) {
	called := false
	Traverse(nil, func(*Tile, string) { called = true })
	assert.False(t, called)
}

func TestParentName(t *testing.T) {
	parent, ok := ParentName("0-2-1")
	assert.True(t, ok)
	assert.Equal(t, "0-2", parent)

	parent, ok = ParentName("0-12")
	assert.True(t, ok)
	assert.Equal(t, "0", parent)

	_, ok = ParentName("0")
	assert.False(t, ok)

	assert.Equal(t, "0-3", ChildName("0", 3))
}

func TestTraverseKeepsManifestIndexAcrossNullChildren(t *testing.T) {
	ts, err := Parse([]byte(`{
		"asset": {"version": "1.0"},
		"root": {"geometricError": 10, "children": [
			null,
			{"geometricError": 1, "content": {"uri": "b.b3dm"}},
			null,
			{"geometricError": 1, "content": {"uri": "d.b3dm"}}
		]}
	}`))
	require.NoError(t, err)

	named := make(map[string]string)
	Traverse(ts.Root, func(tile *Tile, name string) {
		if tile.HasContent() {
			named[tile.Content.URL] = name
		}
	})

	assert.Equal(t, map[string]string{"b.b3dm": "0-1", "d.b3dm": "0-3"}, named)
	assert.Equal(t, 1, ts.Root.Children[0].CloneWithoutChildren().Index)
}
