package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/ecopia-map/cesium_streamer/internal/observability"
	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/golang/glog"
)

type LoadErrorKind string

const (
	LoadErrorFetch     LoadErrorKind = "fetch"
	LoadErrorParse     LoadErrorKind = "parse"
	LoadErrorCancelled LoadErrorKind = "cancelled"
)

type LoadError struct {
	Kind LoadErrorKind
	URL  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsCancelled tells cancellation apart from failures
func IsCancelled(err error) bool {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind == LoadErrorCancelled
	}
	return errors.Is(err, context.Canceled)
}

type LoaderOptions struct {
	Aoi       geometry.CullingAoi
	APIKey    string
	SessionID string
}

// SubtreeLoader fetches manifests and attaches their nodes to the tree
type SubtreeLoader struct {
	tree    *Tree
	fetcher fetch.Fetcher
	culler  *Culler
	options LoaderOptions
}

func NewSubtreeLoader(tree *Tree, fetcher fetch.Fetcher, culler *Culler, options LoaderOptions) *SubtreeLoader {
	return &SubtreeLoader{
		tree:    tree,
		fetcher: fetcher,
		culler:  culler,
		options: options,
	}
}

func (l *SubtreeLoader) Tree() *Tree {
	return l.tree
}

// Load fetches one manifest and attaches it. With isRoot a new tileset context is created and the
// new root is returned; otherwise the manifest is attached below parent and parent is returned.
// The tree is left untouched on any error.
func (l *SubtreeLoader) Load(ctx context.Context, parent NodeID, manifestURL string, isRoot bool) (NodeID, error) {
	var (
		tilesetCtx *TilesetContext
		session    string
		base       string
	)

	if isRoot {
		tilesetCtx = NewTilesetContext(l.options.Aoi, l.options.APIKey)
		session = l.options.SessionID
		parent = NoNode
	} else {
		parentNode, ok := l.tree.Get(parent)
		if !ok {
			return NoNode, fmt.Errorf("%w: %d", ErrUnknownNode, parent)
		}
		tilesetCtx = parentNode.Context
		base = parentNode.ManifestURL
		session = parentNode.SessionID
		if parentNode.Tile != nil && parentNode.Tile.Content != nil {
			if s := fetch.QueryValue(parentNode.Tile.Content.URL, "session"); s != "" {
				session = s
			}
		}
	}

	resolved, err := fetch.ResolveReference(base, manifestURL)
	if err != nil {
		return NoNode, l.fail(&LoadError{Kind: LoadErrorFetch, URL: manifestURL, Err: err})
	}
	requestURL := RequestURL(resolved, tilesetCtx.APIKey, session)

	glog.V(1).Infof("loading manifest %s", resolved)
	data, err := l.fetcher.Fetch(ctx, requestURL)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return NoNode, l.fail(&LoadError{Kind: LoadErrorCancelled, URL: resolved, Err: err})
		}
		return NoNode, l.fail(&LoadError{Kind: LoadErrorFetch, URL: resolved, Err: err})
	}

	ts, err := tileset.Parse(data)
	if err != nil {
		return NoNode, l.fail(&LoadError{Kind: LoadErrorParse, URL: resolved, Err: err})
	}

	if err := ctx.Err(); err != nil {
		return NoNode, l.fail(&LoadError{Kind: LoadErrorCancelled, URL: resolved, Err: err})
	}

	if isRoot {
		tilesetCtx.adoptRootManifest(resolved, ts)
	}

	staged := stage(ts, tilesetCtx, resolved, session)
	root, err := l.tree.attach(parent, staged)
	if err != nil {
		return NoNode, err
	}
	observability.ManifestLoads.WithLabelValues("success").Inc()

	if n, ok := l.tree.Get(root); ok && len(n.Children) > 0 && l.culler != nil {
		culled := l.culler.Cull(l.tree, root, tilesetCtx.AoiSphere)
		glog.V(1).Infof("attached %d nodes from %s, culled %d", len(staged), resolved, culled)
	}

	if isRoot {
		return root, nil
	}
	return parent, nil
}

// RequestURL appends the API key and session unless the URL already carries them
func RequestURL(resolved, apiKey, session string) string {
	return fetch.WithQueryParam(fetch.WithQueryParam(resolved, "key", apiKey), "session", session)
}

func (l *SubtreeLoader) fail(err *LoadError) error {
	observability.ManifestLoads.WithLabelValues(string(err.Kind)).Inc()
	return err
}

// stage builds detached nodes in traversal order with Parent indexing into the result
func stage(ts *tileset.Tileset, tilesetCtx *TilesetContext, manifestURL, session string) []*Node {
	var staged []*Node
	index := make(map[string]int)

	tileset.Traverse(ts.Root, func(tile *tileset.Tile, name string) {
		n := &Node{
			Name:        name,
			Parent:      NoNode,
			Tile:        tile.CloneWithoutChildren(),
			ManifestURL: manifestURL,
			SessionID:   session,
			Context:     tilesetCtx,
			Volume:      tile.BoundingVolume.Kind,
			Active:      true,
			LoadState:   LoadStateNone,
		}
		if parentName, ok := tileset.ParentName(name); ok {
			n.Parent = NodeID(index[parentName])
		}

		switch tile.BoundingVolume.Kind {
		case tileset.VolumeBox:
			center := converters.TileFrameToWorldFrame(tile.BoundingVolume.BoxCenter())
			n.NodeBoxCenter = &center
		case tileset.VolumeRegion:
			center := converters.RegionCenter(tile.BoundingVolume.Region)
			n.NodeRegionCenter = &center
		}
		if tile.Content != nil && tile.Content.BoundingVolume != nil && tile.Content.BoundingVolume.Kind == tileset.VolumeBox {
			center := converters.TileFrameToWorldFrame(tile.Content.BoundingVolume.BoxCenter())
			n.ContentBoxCenter = &center
		}

		index[name] = len(staged)
		staged = append(staged, n)
	})

	return staged
}
