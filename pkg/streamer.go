package pkg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/ecopia-map/cesium_streamer/internal/geometry"
	"github.com/ecopia-map/cesium_streamer/internal/hierarchy"
	"github.com/ecopia-map/cesium_streamer/internal/io"
	"github.com/ecopia-map/cesium_streamer/internal/observability"
	"github.com/ecopia-map/cesium_streamer/internal/scheduler"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/ecopia-map/cesium_streamer/pkg/algorithm_manager"
	"github.com/ecopia-map/cesium_streamer/tools"
	"github.com/golang/glog"
)

const schedulerTickInterval = 50 * time.Millisecond

type IStreamer interface {
	RunStreamer(ctx context.Context, opts *tiler.StreamerOptions) error
}

type Streamer struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewStreamer(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) *Streamer {
	return &Streamer{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Summary describes the tree left by a streaming run
type Summary struct {
	Nodes     int
	Meshes    int
	Loaded    int
	Failed    int
	Cancelled int
	Expansion hierarchy.ExpandResult
	Copyright string
}

// Starts the streaming process
func (s *Streamer) RunStreamer(ctx context.Context, opts *tiler.StreamerOptions) error {
	summary, err := s.Stream(ctx, opts)
	if summary != nil {
		tools.LogOutput(fmt.Sprintf("> %d nodes, %d/%d meshes loaded, %d failed, %d cancelled",
			summary.Nodes, summary.Loaded, summary.Meshes, summary.Failed, summary.Cancelled))
		if summary.Copyright != "" {
			tools.LogOutput("> data attribution:", summary.Copyright)
		}
	}
	return err
}

// Stream loads the root tileset, expands nested tilesets around the area of interest and loads every
// retained mesh. Failed mesh loads are logged and counted, they do not fail the run.
func (s *Streamer) Stream(ctx context.Context, opts *tiler.StreamerOptions) (*Summary, error) {
	defer s.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	aoi, err := ResolveAoi(opts, s.algorithmManager.GetCoordinateConverterAlgorithm(), s.algorithmManager.GetElevationCorrectionAlgorithm())
	if err != nil {
		return nil, err
	}
	rootURL, err := RootURL(opts.TilesetURL)
	if err != nil {
		return nil, err
	}
	tools.LogOutput("> area of interest", tools.FmtDecimal(aoi.CenterLatDeg, 6), tools.FmtDecimal(aoi.CenterLonDeg, 6),
		"radius", tools.FmtDecimal(aoi.RadiusMeters, 1)+"m")

	tree := hierarchy.NewTree()
	fetcher := s.algorithmManager.GetFetcherAlgorithm()
	loader := hierarchy.NewSubtreeLoader(tree, fetcher, hierarchy.NewCuller(opts.CullMode), hierarchy.LoaderOptions{
		Aoi:       aoi,
		APIKey:    opts.APIKey,
		SessionID: opts.SessionID,
	})

	tools.LogOutput("> loading root tileset...", rootURL)
	root, err := loader.Load(ctx, hierarchy.NoNode, rootURL, true)
	if err != nil {
		return nil, err
	}

	tools.LogOutput("> expanding nested tilesets...")
	expansion, err := loader.ExpandSubtrees(ctx, root, opts.MaxDepth, opts.MaxNodes)
	if err != nil {
		return nil, err
	}
	if expansion.Warning != nil {
		tools.LogOutput("> partial tree:", expansion.Warning)
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	if opts.MetricsAddr != "" {
		observability.ServeMetrics(runCtx, opts.MetricsAddr)
	}

	sched := scheduler.New(opts.ConcurrencyLimit)
	go sched.Run(runCtx, schedulerTickInterval)
	go func() {
		<-runCtx.Done()
		sched.Shutdown()
	}()

	collector := hierarchy.NewCopyrightCollector(tree)
	if opts.CopyrightInterval > 0 {
		go collector.Run(runCtx, root, opts.CopyrightInterval, func(text string) {
			glog.Infof("attribution: %s", text)
		})
	}

	tools.LogOutput("> loading meshes...")
	loadErrors := s.loadMeshes(runCtx, opts, tree, root, sched, fetcher)
	for _, err := range loadErrors {
		glog.Warningln(err)
	}

	summary := summarize(tree, root)
	summary.Expansion = expansion
	summary.Copyright = collector.Collect(root)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// Runs a producer walking the tree and a consumer turning its work into scheduled loads
func (s *Streamer) loadMeshes(ctx context.Context, opts *tiler.StreamerOptions, tree *hierarchy.Tree, root hierarchy.NodeID, sched *scheduler.Scheduler, fetcher fetch.Fetcher) []error {
	// init channel where to submit work with a buffer 5 times greater than the number of concurrent loads
	workChannel := make(chan *io.WorkUnit, sched.Limit()*5)

	// init channel where the consumer submits failed loads, drained while the loads run
	errorChannel := make(chan error)
	var loadErrors []error
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for err := range errorChannel {
			loadErrors = append(loadErrors, err)
		}
	}()

	var waitGroup sync.WaitGroup

	waitGroup.Add(1)
	producer := io.NewStandardProducer(opts)
	go producer.Produce(workChannel, &waitGroup, tree, root)

	waitGroup.Add(1)
	consumer := io.NewStandardConsumer(tree, sched, fetcher, s.algorithmManager.GetInstantiatorAlgorithm())
	go consumer.Consume(ctx, workChannel, errorChannel, &waitGroup)

	// wait for producer and consumer to finish
	waitGroup.Wait()

	close(errorChannel)
	<-drained

	return loadErrors
}

func summarize(tree *hierarchy.Tree, root hierarchy.NodeID) *Summary {
	summary := &Summary{}
	tree.Walk(root, func(n hierarchy.Node) bool {
		summary.Nodes++
		if n.HasMeshContent() {
			summary.Meshes++
		}
		switch n.LoadState {
		case hierarchy.LoadStateLoaded:
			summary.Loaded++
		case hierarchy.LoadStateFailed:
			summary.Failed++
		case hierarchy.LoadStateCancelled:
			summary.Cancelled++
		}
		return true
	})
	return summary
}

// ResolveAoi converts the area of interest options to a WGS84 geodetic circle. Projected centers are
// given as easting in AoiLon and northing in AoiLat.
func ResolveAoi(opts *tiler.StreamerOptions, converter converters.CoordinateConverter, corrector converters.ElevationCorrector) (geometry.CullingAoi, error) {
	if opts.AoiRadius <= 0 {
		return geometry.CullingAoi{}, errors.New("area of interest radius must be positive")
	}

	lat, lon := opts.AoiLat, opts.AoiLon
	if opts.Srid != 0 && opts.Srid != converters.WGS84Srid {
		p, err := converter.ConvertToWGS84LatLngAlt(geometry.Coordinate{X: opts.AoiLon, Y: opts.AoiLat, Z: opts.AoiHeight}, opts.Srid)
		if err != nil {
			return geometry.CullingAoi{}, fmt.Errorf("convert area of interest from EPSG:%d: %w", opts.Srid, err)
		}
		lat, lon = p.Lat.Degrees(), p.Lng.Degrees()
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return geometry.CullingAoi{}, fmt.Errorf("area of interest center out of range: %f, %f", lat, lon)
	}

	return geometry.CullingAoi{
		CenterLatDeg: lat,
		CenterLonDeg: lon,
		HeightMeters: corrector.CorrectElevation(lon, lat, opts.AoiHeight),
		RadiusMeters: opts.AoiRadius,
	}, nil
}

// RootURL accepts http(s) and file URLs as they are and turns anything else into a file URL
func RootURL(location string) (string, error) {
	if location == "" {
		return "", errors.New("no tileset url given")
	}
	return fetch.PathToURL(location)
}
