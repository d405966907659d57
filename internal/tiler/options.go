package tiler

import (
	"strings"
	"time"
)

type RefineMode string
type CullMode string
type InstantiatorKind string

const (
	RefineModeAdd     RefineMode = "ADD"
	RefineModeReplace RefineMode = "REPLACE"
)

const (
	// Culled nodes are removed from the tree together with their subtree
	CullModeDestroy CullMode = "DESTROY"

	// Culled nodes stay in the tree but are marked inactive, their content is never loaded
	CullModeDeactivate CullMode = "DEACTIVATE"
)

const (
	InstantiatorFile   InstantiatorKind = "FILE"
	InstantiatorMemory InstantiatorKind = "MEMORY"
)

const (
	DefaultConcurrencyLimit  = 8
	DefaultMaxDepth          = 8
	DefaultMaxNodes          = 1000
	DefaultMaxLoadDepth      = 64
	DefaultAoiRadiusMeters   = 1000.0
	DefaultOversizeFactor    = 50.0
	DefaultCopyrightInterval = time.Second
	DefaultAoiLat            = 35.6581
	DefaultAoiLon            = 139.7017
)

func (e RefineMode) String() string {
	if e == RefineModeAdd {
		return "ADD"
	} else if e == RefineModeReplace {
		return "REPLACE"
	}
	return ""
}

func ParseRefineMode(value string) RefineMode {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	if normalizedValue == "ADD" {
		return RefineModeAdd
	} else if normalizedValue == "REPLACE" {
		return RefineModeReplace
	}
	return ""
}

func ParseCullMode(value string) CullMode {
	switch strings.Trim(strings.ToUpper(value), " ") {
	case "DESTROY":
		return CullModeDestroy
	case "DEACTIVATE":
		return CullModeDeactivate
	}
	return ""
}

func ParseInstantiatorKind(value string) InstantiatorKind {
	switch strings.Trim(strings.ToUpper(value), " ") {
	case "FILE":
		return InstantiatorFile
	case "MEMORY":
		return InstantiatorMemory
	}
	return ""
}

// Contains the options needed to stream a tileset
type StreamerOptions struct {
	TilesetURL        string        // Root manifest URL, http(s), file:// or local path
	APIKey            string        // Appended as key= to every request when set
	SessionID         string        // Appended as session= to the root request when set
	AoiLat            float64       // AOI center latitude, or northing when Srid is projected
	AoiLon            float64       // AOI center longitude, or easting when Srid is projected
	AoiHeight         float64       // AOI center height in meters
	AoiRadius         float64       // AOI radius in meters
	Srid              int           // EPSG code of the AOI center coordinates
	ZOffset           float64       // Offset in meters added to the AOI height
	MaxDepth          int           // Max recursion depth of nested manifest expansion
	MaxNodes          int           // Max number of nodes visited by nested manifest expansion
	MaxLoadDepth      int           // Max depth of nodes whose mesh content is loaded
	ConcurrencyLimit  int           // Max number of mesh loads running at once
	OversizeFactor    float64       // Nodes whose bounding sphere exceeds AoiRadius times this factor are not loaded
	CullMode          CullMode      // How nodes outside the AOI are pruned
	Instantiator      InstantiatorKind
	CopyrightInterval time.Duration // Interval between attribution refreshes
	MetricsAddr       string        // Address of the prometheus endpoint, disabled when empty

	Command                string
	StreamerLoadOptions    *StreamerLoadOptions
	StreamerDecodeOptions  *StreamerDecodeOptions
	StreamerCatalogOptions *StreamerCatalogOptions
}

type StreamerLoadOptions struct {
	Output string // Output folder for the file instantiator
}

type StreamerDecodeOptions struct {
	Input            string // Input container file/folder
	Output           string // Folder receiving extracted mesh payloads, nothing is written when empty
	FolderProcessing bool
	Recursive        bool
}

type StreamerCatalogOptions struct {
	Catalog    string // Catalog JSON file or URL
	Prefecture string
	City       string
	Type       string
	Format     string
	Lod        string
	Texture    string
}

func DefaultStreamerOptions() StreamerOptions {
	return StreamerOptions{
		AoiLat:            DefaultAoiLat,
		AoiLon:            DefaultAoiLon,
		AoiRadius:         DefaultAoiRadiusMeters,
		Srid:              4326,
		MaxDepth:          DefaultMaxDepth,
		MaxNodes:          DefaultMaxNodes,
		MaxLoadDepth:      DefaultMaxLoadDepth,
		ConcurrencyLimit:  DefaultConcurrencyLimit,
		OversizeFactor:    DefaultOversizeFactor,
		CullMode:          CullModeDestroy,
		Instantiator:      InstantiatorFile,
		CopyrightInterval: DefaultCopyrightInterval,
	}
}

func (opt *StreamerOptions) Copy() *StreamerOptions {
	newOpt := *opt
	newOpt.StreamerLoadOptions = nil
	newOpt.StreamerDecodeOptions = nil
	newOpt.StreamerCatalogOptions = nil

	if opt.StreamerLoadOptions != nil {
		loadOpt := *opt.StreamerLoadOptions
		newOpt.StreamerLoadOptions = &loadOpt
	}

	if opt.StreamerDecodeOptions != nil {
		decodeOpt := *opt.StreamerDecodeOptions
		newOpt.StreamerDecodeOptions = &decodeOpt
	}

	if opt.StreamerCatalogOptions != nil {
		catalogOpt := *opt.StreamerCatalogOptions
		newOpt.StreamerCatalogOptions = &catalogOpt
	}

	return &newOpt
}
