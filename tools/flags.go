package tools

import (
	"flag"
	"strings"
	"time"

	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/golang/glog"
)

const (
	CommandLoad     = "load"
	CommandInspect  = "inspect"
	CommandDecode   = "decode"
	CommandDatasets = "datasets"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type StreamerFlags struct {
	URL               *string  `json:"url"`
	APIKey            *string  `json:"-"`
	Session           *string  `json:"session"`
	Lat               *float64 `json:"lat"`
	Lon               *float64 `json:"lon"`
	Height            *float64 `json:"height"`
	Radius            *float64 `json:"radius"`
	Srid              *int     `json:"srid"`
	ZOffset           *float64 `json:"zoffset"`
	MaxDepth          *int     `json:"max_depth"`
	MaxNodes          *int     `json:"max_nodes"`
	CullMode          *string  `json:"cull_mode"`
	Config            *string  `json:"config"`
	ExplicitConfigKey map[string]bool
}

type FlagsForCommandLoad struct {
	StreamerFlags
	MaxLoadDepth      *int
	Concurrency       *int
	OversizeFactor    *float64
	Instantiator      *string
	CopyrightInterval *time.Duration
	MetricsAddr       *string
	Output            *string
	Silent            *bool
	LogTimestamp      *bool
	Help              *bool
}

type FlagsForCommandInspect struct {
	StreamerFlags
	Expand *bool
	Help   *bool
}

type FlagsForCommandDecode struct {
	Input                     *string
	Output                    *string
	FolderProcessing          *bool
	RecursiveFolderProcessing *bool
	Help                      *bool
}

type FlagsForCommandDatasets struct {
	Catalog    *string
	Prefecture *string
	City       *string
	Type       *string
	Format     *string
	Lod        *string
	Texture    *string
	Help       *bool
}

// FlagCommand is a flag set whose flags may have a one letter shorthand
type FlagCommand struct {
	*flag.FlagSet
	aliases map[string]string
}

func NewFlagCommand(name string) *FlagCommand {
	return &FlagCommand{
		FlagSet: flag.NewFlagSet(name, flag.ExitOnError),
		aliases: make(map[string]string),
	}
}

// ExplicitConfigKeys returns the config file keys of every flag set on the command line
func (f *FlagCommand) ExplicitConfigKeys() map[string]bool {
	keys := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) {
		name := fl.Name
		if long, ok := f.aliases[name]; ok {
			name = long
		}
		keys[strings.ReplaceAll(name, "-", "_")] = true
	})
	return keys
}

// ParseFlagsGlobal parses the flags placed before the subcommand, glog flags included
func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of the streamer.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineStreamerFlags(flagCommand *FlagCommand) StreamerFlags {
	return StreamerFlags{
		URL:      defineStringFlagCommand(flagCommand, "url", "u", "", "Root tileset URL, file:// URL or local path of the root tileset.json."),
		APIKey:   defineStringFlagCommand(flagCommand, "api-key", "k", "", "API key appended as key= to every request."),
		Session:  defineStringFlagCommand(flagCommand, "session", "", "", "Session id appended to the root request."),
		Lat:      defineFloat64FlagCommand(flagCommand, "lat", "", tiler.DefaultAoiLat, "Area of interest center latitude, or northing when srid is a projected system."),
		Lon:      defineFloat64FlagCommand(flagCommand, "lon", "", tiler.DefaultAoiLon, "Area of interest center longitude, or easting when srid is a projected system."),
		Height:   defineFloat64FlagCommand(flagCommand, "height", "", 0, "Area of interest center height in meters."),
		Radius:   defineFloat64FlagCommand(flagCommand, "radius", "r", tiler.DefaultAoiRadiusMeters, "Area of interest radius in meters."),
		Srid:     defineIntFlagCommand(flagCommand, "srid", "e", 4326, "EPSG srid code of the area of interest center."),
		ZOffset:  defineFloat64FlagCommand(flagCommand, "zoffset", "z", 0, "Vertical offset to apply to the area of interest, in meters."),
		MaxDepth: defineIntFlagCommand(flagCommand, "max-depth", "", tiler.DefaultMaxDepth, "Max nesting depth of tileset expansion."),
		MaxNodes: defineIntFlagCommand(flagCommand, "max-nodes", "", tiler.DefaultMaxNodes, "Max number of nodes visited by tileset expansion."),
		CullMode: defineStringFlagCommand(flagCommand, "cull-mode", "", string(tiler.CullModeDestroy), "What happens to nodes outside the area of interest, 'DESTROY' or 'DEACTIVATE'."),
		Config:   defineStringFlagCommand(flagCommand, "config", "", "", "TOML file with default values, explicit flags override it."),
	}
}

func ParseFlagsForCommandLoad(args []string) FlagsForCommandLoad {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := NewFlagCommand("command-load")

	streamerFlags := defineStreamerFlags(flagCommand)
	maxLoadDepth := defineIntFlagCommand(flagCommand, "max-load-depth", "", tiler.DefaultMaxLoadDepth, "Nodes deeper than this are never loaded.")
	concurrency := defineIntFlagCommand(flagCommand, "concurrency", "c", tiler.DefaultConcurrencyLimit, "Max number of mesh loads running at once.")
	oversizeFactor := defineFloat64FlagCommand(flagCommand, "oversize-factor", "", tiler.DefaultOversizeFactor, "Nodes whose bounding sphere radius exceeds the area of interest radius times this factor are not loaded. 0 disables the check.")
	instantiator := defineStringFlagCommand(flagCommand, "instantiator", "", string(tiler.InstantiatorFile), "Where loaded meshes go, 'FILE' or 'MEMORY'.")
	copyrightInterval := defineDurationFlagCommand(flagCommand, "copyright-interval", "", tiler.DefaultCopyrightInterval, "Interval between attribution refreshes.")
	metricsAddr := defineStringFlagCommand(flagCommand, "metrics-addr", "", "", "Address serving prometheus metrics, e.g. ':9100'. Disabled when empty.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where meshes are written.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)
	streamerFlags.ExplicitConfigKey = flagCommand.ExplicitConfigKeys()

	return FlagsForCommandLoad{
		StreamerFlags:     streamerFlags,
		MaxLoadDepth:      maxLoadDepth,
		Concurrency:       concurrency,
		OversizeFactor:    oversizeFactor,
		Instantiator:      instantiator,
		CopyrightInterval: copyrightInterval,
		MetricsAddr:       metricsAddr,
		Output:            output,
		Silent:            silent,
		LogTimestamp:      logTimestamp,
		Help:              help,
	}
}

func ParseFlagsForCommandInspect(args []string) FlagsForCommandInspect {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := NewFlagCommand("command-inspect")

	streamerFlags := defineStreamerFlags(flagCommand)
	expand := defineBoolFlagCommand(flagCommand, "expand", "x", false, "Also expands nested tilesets and culls against the area of interest.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)
	streamerFlags.ExplicitConfigKey = flagCommand.ExplicitConfigKeys()

	return FlagsForCommandInspect{
		StreamerFlags: streamerFlags,
		Expand:        expand,
		Help:          help,
	}
}

func ParseFlagsForCommandDecode(args []string) FlagsForCommandDecode {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := NewFlagCommand("command-decode")

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input .b3dm/.glb file or folder.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Folder receiving the extracted glb payloads. Nothing is written when empty.")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all tile content files from input folder. Input must be a folder if specified")
	recursiveFolderProcessing := defineBoolFlagCommand(flagCommand, "recursive", "", false, "Enables recursive lookup for all tile content files inside the subfolders")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)

	return FlagsForCommandDecode{
		Input:                     input,
		Output:                    output,
		FolderProcessing:          folderProcessing,
		RecursiveFolderProcessing: recursiveFolderProcessing,
		Help:                      help,
	}
}

func ParseFlagsForCommandDatasets(args []string) FlagsForCommandDatasets {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := NewFlagCommand("command-datasets")

	catalog := defineStringFlagCommand(flagCommand, "catalog", "", "", "Dataset catalog JSON, URL or local path.")
	prefecture := defineStringFlagCommand(flagCommand, "pref", "p", "", "Prefecture name or code.")
	city := defineStringFlagCommand(flagCommand, "city", "", "", "City or ward name or code.")
	typ := defineStringFlagCommand(flagCommand, "type", "", "", "Dataset type, Japanese or English name, e.g. 'bldg'.")
	format := defineStringFlagCommand(flagCommand, "format", "", "", "Dataset format, e.g. '3D Tiles'.")
	lod := defineStringFlagCommand(flagCommand, "lod", "", "", "Level of detail.")
	texture := defineStringFlagCommand(flagCommand, "texture", "", "", "'true' or 'false' to select by texture availability.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)

	return FlagsForCommandDatasets{
		Catalog:    catalog,
		Prefecture: prefecture,
		City:       city,
		Type:       typ,
		Format:     format,
		Lod:        lod,
		Texture:    texture,
		Help:       help,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *FlagCommand, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		flagCommand.aliases[shortHand] = name
	}

	return &output
}

func defineIntFlagCommand(flagCommand *FlagCommand, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		flagCommand.aliases[shortHand] = name
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *FlagCommand, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		flagCommand.aliases[shortHand] = name
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *FlagCommand, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		flagCommand.aliases[shortHand] = name
	}
	return &output
}

func defineDurationFlagCommand(flagCommand *FlagCommand, name string, shortHand string, defaultValue time.Duration, usage string) *time.Duration {
	var output time.Duration
	flagCommand.DurationVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.DurationVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		flagCommand.aliases[shortHand] = name
	}
	return &output
}
