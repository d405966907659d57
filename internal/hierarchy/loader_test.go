package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rootURL   = "https://tiles.example/root.json"
	nestedURL = "https://tiles.example/nested/tileset.json"
)

func newLoader(resources map[string][]byte, opts LoaderOptions) (*SubtreeLoader, *fetch.MapFetcher) {
	opts.Aoi = testAoi
	fetcher := fetch.NewMapFetcher(resources)
	return NewSubtreeLoader(NewTree(), fetcher, NewCuller(tiler.CullModeDestroy), opts), fetcher
}

func TestLoadRootAndNested(t *testing.T) {
	loader, fetcher := newLoader(map[string][]byte{
		rootURL: manifestJSON(insideTile("",
			insideTile("nested/tileset.json?session=xyz"),
			outsideTile("far.b3dm"),
		)),
		nestedURL: manifestJSON(insideTile("",
			insideTile("mesh.b3dm"),
			insideTile("other.glb"),
		)),
	}, LoaderOptions{APIKey: "k"})
	tree := loader.Tree()
	ctx := context.Background()

	root, err := loader.Load(ctx, NoNode, rootURL, true)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Len())

	rootNode, _ := tree.Get(root)
	require.NotNil(t, rootNode.Context)
	assert.Equal(t, rootURL, rootNode.Context.RootURL)
	assert.NotNil(t, rootNode.Context.RootBoxCenter)
	assert.Equal(t, "k", rootNode.Context.APIKey)

	result, err := loader.ExpandSubtrees(ctx, root, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expanded)
	assert.Equal(t, 5, result.Visited)
	assert.NoError(t, result.Warning)
	assert.Equal(t, 5, tree.Len())

	assert.Equal(t, []string{
		rootURL + "?key=k",
		nestedURL + "?session=xyz&key=k",
	}, fetcher.Requests())

	meshID, ok := tree.Lookup("0-0/0-0")
	require.True(t, ok)
	mesh, _ := tree.Get(meshID)
	assert.Equal(t, "xyz", mesh.SessionID)
	assert.Equal(t, 3, mesh.Depth)
	assert.True(t, mesh.HasMeshContent())
	assert.Same(t, rootNode.Context, mesh.Context)

	resolved, err := fetch.ResolveReference(mesh.ManifestURL, mesh.Tile.Content.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://tiles.example/nested/mesh.b3dm", resolved)

	again, err := loader.ExpandSubtrees(ctx, root, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Expanded)
	assert.Len(t, fetcher.Requests(), 2)
}

func TestLoadKeepsExplicitSession(t *testing.T) {
	loader, fetcher := newLoader(map[string][]byte{
		rootURL: manifestJSON(insideTile("")),
	}, LoaderOptions{APIKey: "k", SessionID: "s"})

	_, err := loader.Load(context.Background(), NoNode, rootURL+"?session=given", true)
	require.NoError(t, err)
	assert.Equal(t, []string{rootURL + "?session=given&key=k"}, fetcher.Requests())
}

func TestLoadErrors(t *testing.T) {
	loader, _ := newLoader(map[string][]byte{
		rootURL: []byte(`{"asset": {"version": "1.0"}, "root": {"boundingVolume": `),
	}, LoaderOptions{})
	ctx := context.Background()

	_, err := loader.Load(ctx, NoNode, rootURL, true)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, LoadErrorParse, loadErr.Kind)
	var parseErr *tileset.ParseError
	assert.True(t, errors.As(err, &parseErr))

	_, err = loader.Load(ctx, NoNode, "https://tiles.example/missing.json", true)
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, LoadErrorFetch, loadErr.Kind)
	var transportErr *fetch.TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.False(t, IsCancelled(err))

	_, err = loader.Load(ctx, NodeID(3), "child.json", false)
	assert.ErrorIs(t, err, ErrUnknownNode)

	assert.Equal(t, 0, loader.Tree().Len())
}

func TestLoadCancelledLeavesTreeUntouched(t *testing.T) {
	loader, _ := newLoader(map[string][]byte{
		rootURL: manifestJSON(insideTile("")),
	}, LoaderOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, NoNode, rootURL, true)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, 0, loader.Tree().Len())
}

func TestExpandAbandonsBrokenBranch(t *testing.T) {
	loader, _ := newLoader(map[string][]byte{
		rootURL: manifestJSON(insideTile("",
			insideTile("broken.json"),
			insideTile("nested/tileset.json"),
		)),
		"https://tiles.example/broken.json": []byte(`{"root": [`),
		nestedURL:                           manifestJSON(insideTile("mesh.b3dm")),
	}, LoaderOptions{})
	ctx := context.Background()

	root, err := loader.Load(ctx, NoNode, rootURL, true)
	require.NoError(t, err)

	result, err := loader.ExpandSubtrees(ctx, root, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Expanded)

	_, ok := loader.Tree().Lookup("0-1/0")
	assert.True(t, ok)
	brokenID, _ := loader.Tree().Lookup("0-0")
	assert.False(t, loader.Tree().IsExpanded(brokenID))
}

func TestExpandNodeBudget(t *testing.T) {
	children := make([]testTile, 19)
	for i := range children {
		children[i] = insideTile(fmt.Sprintf("mesh%d.b3dm", i))
	}
	loader, _ := newLoader(map[string][]byte{
		rootURL: manifestJSON(insideTile("", children...)),
	}, LoaderOptions{})
	ctx := context.Background()

	root, err := loader.Load(ctx, NoNode, rootURL, true)
	require.NoError(t, err)
	require.Equal(t, 20, loader.Tree().Len())

	result, err := loader.ExpandSubtrees(ctx, root, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Visited)
	assert.True(t, result.BudgetExceeded)
	assert.ErrorIs(t, result.Warning, ErrBudgetExceeded)
	assert.Equal(t, 0, result.Remaining)

	result, err = loader.ExpandSubtrees(ctx, root, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Visited)
	assert.False(t, result.BudgetExceeded)
	assert.NoError(t, result.Warning)
}

func TestExpandBudgetSharedAcrossNestedManifests(t *testing.T) {
	resources := map[string][]byte{
		rootURL: manifestJSON(insideTile("",
			insideTile("a.json"),
			insideTile("b.json"),
		)),
	}
	for _, name := range []string{"a", "b"} {
		resources["https://tiles.example/"+name+".json"] = manifestJSON(insideTile("",
			insideTile("1.b3dm"), insideTile("2.b3dm"), insideTile("3.b3dm"),
		))
	}
	loader, fetcher := newLoader(resources, LoaderOptions{})
	ctx := context.Background()

	root, err := loader.Load(ctx, NoNode, rootURL, true)
	require.NoError(t, err)

	result, err := loader.ExpandSubtrees(ctx, root, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Visited)
	assert.Equal(t, 1, result.Expanded)
	assert.True(t, result.BudgetExceeded)
	assert.Len(t, fetcher.Requests(), 2)
}

func TestExpandDepthLimit(t *testing.T) {
	loader, _ := newLoader(map[string][]byte{
		rootURL:   manifestJSON(insideTile("", insideTile("nested/tileset.json"))),
		nestedURL: manifestJSON(insideTile("", insideTile("deeper.json"))),
	}, LoaderOptions{})
	ctx := context.Background()

	root, err := loader.Load(ctx, NoNode, rootURL, true)
	require.NoError(t, err)

	result, err := loader.ExpandSubtrees(ctx, root, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expanded)
	assert.True(t, result.DepthLimited)
	assert.Equal(t, 0, result.Failed)
}

func TestExpandCancelled(t *testing.T) {
	loader, _ := newLoader(map[string][]byte{
		rootURL: manifestJSON(insideTile("", insideTile("nested/tileset.json"))),
	}, LoaderOptions{})

	root, err := loader.Load(context.Background(), NoNode, rootURL, true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.ExpandSubtrees(ctx, root, 0, 0)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, 2, loader.Tree().Len())
}
