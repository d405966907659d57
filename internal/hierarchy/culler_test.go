package hierarchy

import (
	"context"
	"testing"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cullRootURL = "https://tiles.example/root.json"

func loadCullScenario(t *testing.T, culler *Culler) (*Tree, NodeID) {
	fetcher := fetch.NewMapFetcher(map[string][]byte{
		cullRootURL: manifestJSON(testTile{
			volume: boxJSON(aoiEcef(), 50000),
			children: []testTile{
				insideTile("inside.b3dm"),
				outsideTile("outside.b3dm"),
			},
		}),
	})

	tree := NewTree()
	loader := NewSubtreeLoader(tree, fetcher, culler, LoaderOptions{Aoi: testAoi})
	root, err := loader.Load(context.Background(), NoNode, cullRootURL, true)
	require.NoError(t, err)
	return tree, root
}

func TestCullerDestroysOutsideNodes(t *testing.T) {
	tree, root := loadCullScenario(t, NewCuller(tiler.CullModeDestroy))

	assert.Equal(t, 2, tree.Len())
	_, ok := tree.Lookup("0-0")
	assert.True(t, ok)
	_, ok = tree.Lookup("0-1")
	assert.False(t, ok)

	n, _ := tree.Get(root)
	assert.Len(t, n.Children, 1)
}

func TestCullerDeactivatesOutsideNodes(t *testing.T) {
	tree, _ := loadCullScenario(t, NewCuller(tiler.CullModeDeactivate))

	assert.Equal(t, 3, tree.Len())
	inside, _ := tree.Lookup("0-0")
	outside, _ := tree.Lookup("0-1")

	n, _ := tree.Get(inside)
	assert.True(t, n.Active)
	n, _ = tree.Get(outside)
	assert.False(t, n.Active)
}

func TestCullerKeepsNodesWithoutVolume(t *testing.T) {
	tree := NewTree()
	root, err := tree.attach(NoNode, stagedChain(1))
	require.NoError(t, err)

	aoi := converters.AoiSphere(testAoi)
	assert.Equal(t, 0, NewCuller(tiler.CullModeDestroy).Cull(tree, root, aoi))
	assert.Equal(t, 2, tree.Len())
}

type penetration bool

func (p penetration) Penetrates(other CollisionVolume) bool {
	return bool(p)
}

func TestCullerPrefersCollisionVolumes(t *testing.T) {
	tree, root := loadCullScenario(t, NewCuller(tiler.CullModeDestroy))
	require.Equal(t, 2, tree.Len())

	culler := NewCuller(tiler.CullModeDestroy)
	culler.AoiVolume = penetration(true)
	culler.NodeVolume = func(n Node) CollisionVolume {
		if n.Path == "0-0" {
			return penetration(false)
		}
		return nil
	}

	n, _ := tree.Get(root)
	assert.Equal(t, 1, culler.Cull(tree, root, n.Context.AoiSphere))
	assert.Equal(t, 1, tree.Len())
}
