package pkg

import (
	"context"
	"fmt"
	goio "io"
	"strings"
	"text/tabwriter"

	"github.com/ecopia-map/cesium_streamer/internal/hierarchy"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/ecopia-map/cesium_streamer/internal/tileset"
	"github.com/ecopia-map/cesium_streamer/tools"
)

// Inspect prints the node table of the root tileset. With expand the nested tilesets are attached
// and culled against the area of interest first, as a load would do.
func (s *Streamer) Inspect(ctx context.Context, opts *tiler.StreamerOptions, expand bool, w goio.Writer) error {
	rootURL, err := RootURL(opts.TilesetURL)
	if err != nil {
		return err
	}

	if expand {
		return s.inspectTree(ctx, opts, rootURL, w)
	}

	data, err := s.algorithmManager.GetFetcherAlgorithm().Fetch(ctx, hierarchy.RequestURL(rootURL, opts.APIKey, opts.SessionID))
	if err != nil {
		return err
	}
	ts, err := tileset.Parse(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "tileset %s version %s, geometric error %s\n", rootURL, ts.Asset.Version, tools.FmtDecimal(ts.GeometricError, 3))
	if ts.Asset.Copyright != "" {
		fmt.Fprintf(w, "copyright %s\n", ts.Asset.Copyright)
	}

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "NAME\tVOLUME\tERROR\tREFINE\tCONTENT")
	tileset.Traverse(ts.Root, func(tile *tileset.Tile, name string) {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n", name, tile.BoundingVolume.Kind, tools.FmtDecimal(tile.GeometricError, 3), tile.Refine, contentURL(tile))
	})
	return table.Flush()
}

func (s *Streamer) inspectTree(ctx context.Context, opts *tiler.StreamerOptions, rootURL string, w goio.Writer) error {
	defer s.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	aoi, err := ResolveAoi(opts, s.algorithmManager.GetCoordinateConverterAlgorithm(), s.algorithmManager.GetElevationCorrectionAlgorithm())
	if err != nil {
		return err
	}

	tree := hierarchy.NewTree()
	loader := hierarchy.NewSubtreeLoader(tree, s.algorithmManager.GetFetcherAlgorithm(), hierarchy.NewCuller(opts.CullMode), hierarchy.LoaderOptions{
		Aoi:       aoi,
		APIKey:    opts.APIKey,
		SessionID: opts.SessionID,
	})

	root, err := loader.Load(ctx, hierarchy.NoNode, rootURL, true)
	if err != nil {
		return err
	}
	result, err := loader.ExpandSubtrees(ctx, root, opts.MaxDepth, opts.MaxNodes)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d nodes, %d visited, %d tilesets expanded, %d failed\n", tree.Len(), result.Visited, result.Expanded, result.Failed)
	if result.Warning != nil {
		fmt.Fprintf(w, "warning: %v\n", result.Warning)
	}

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "PATH\tVOLUME\tRADIUS\tACTIVE\tCONTENT")
	tree.Walk(root, func(n hierarchy.Node) bool {
		radius := "-"
		if sphere, ok := tree.EnsureBoundingSphere(n.ID); ok {
			radius = tools.FmtDecimal(sphere.RadiusMeters, 1)
		}
		fmt.Fprintf(table, "%s%s\t%s\t%s\t%t\t%s\n", strings.Repeat("  ", n.Depth), n.Path, n.Volume, radius, n.Active, contentURL(n.Tile))
		return true
	})
	return table.Flush()
}

func contentURL(tile *tileset.Tile) string {
	if tile == nil || !tile.HasContent() {
		return "-"
	}
	return tile.Content.URL
}
