package io

import (
	"sync"

	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/ecopia-map/cesium_streamer/internal/hierarchy"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/golang/glog"
)

type StandardProducer struct {
	options *tiler.StreamerOptions
}

func NewStandardProducer(options *tiler.StreamerOptions) *StandardProducer {
	return &StandardProducer{
		options: options,
	}
}

// Parses the tree and submits WorkUnits to the provided work channel for every node whose mesh should be loaded.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup, tree *hierarchy.Tree, root hierarchy.NodeID) {
	tree.Walk(root, func(n hierarchy.Node) bool {
		if !n.Active {
			return false
		}
		if p.options.MaxLoadDepth > 0 && n.Depth > p.options.MaxLoadDepth {
			glog.V(2).Infof("%s below max load depth", n.Path)
			return false
		}

		if unit := p.workFor(tree, n); unit != nil {
			work <- unit
		}
		return true
	})

	close(work)
	wg.Done()
}

// workFor applies the mesh load policy and marks the node queued when it passes
func (p *StandardProducer) workFor(tree *hierarchy.Tree, n hierarchy.Node) *WorkUnit {
	if !n.HasMeshContent() || n.Context == nil {
		return nil
	}

	// the children refine this node away
	if n.Tile.Refine == tiler.RefineModeReplace && len(n.Children) > 0 {
		return nil
	}

	if sphere, ok := tree.EnsureBoundingSphere(n.ID); ok && p.options.OversizeFactor > 0 {
		if sphere.RadiusMeters >= p.options.OversizeFactor*n.Context.Aoi.RadiusMeters {
			glog.V(2).Infof("skipping oversize node %s (radius %.0fm)", n.Path, sphere.RadiusMeters)
			return nil
		}
	}

	resolved, err := fetch.ResolveReference(n.ManifestURL, n.Tile.Content.URL)
	if err != nil {
		glog.Warningf("skipping %s: %v", n.Path, err)
		return nil
	}

	if !tree.CompareAndSetLoadState(n.ID, hierarchy.LoadStateNone, hierarchy.LoadStateQueued) {
		return nil
	}

	return &WorkUnit{
		Node:      n,
		URL:       hierarchy.RequestURL(resolved, n.Context.APIKey, n.SessionID),
		Extension: n.Tile.Content.FileExtension(),
	}
}
