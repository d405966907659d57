package std_algorithm_manager

import (
	"github.com/ecopia-map/cesium_streamer/internal/converters"
	"github.com/ecopia-map/cesium_streamer/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/cesium_streamer/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/ecopia-map/cesium_streamer/internal/instantiate"
	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/ecopia-map/cesium_streamer/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options             *tiler.StreamerOptions
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
	fetcher             fetch.Fetcher
	instantiator        instantiate.Instantiator
}

func NewAlgorithmManager(opts *tiler.StreamerOptions) algorithm_manager.AlgorithmManager {
	output := ""
	if opts.StreamerLoadOptions != nil {
		output = opts.StreamerLoadOptions.Output
	}

	var instantiator instantiate.Instantiator
	switch opts.Instantiator {
	case tiler.InstantiatorMemory:
		instantiator = instantiate.NewMemoryInstantiator()
	default:
		instantiator = instantiate.NewFileInstantiator(output)
	}

	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: proj4_coordinate_converter.NewProj4CoordinateConverter(),
		elevationCorrector:  offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset),
		fetcher:             fetch.NewDefaultFetcher(),
		instantiator:        instantiator,
	}
}

func (m *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return m.elevationCorrector
}

func (m *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return m.coordinateConverter
}

func (m *StandardAlgorithmManager) GetFetcherAlgorithm() fetch.Fetcher {
	return m.fetcher
}

func (m *StandardAlgorithmManager) GetInstantiatorAlgorithm() instantiate.Instantiator {
	return m.instantiator
}
