package tiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	URL               string  `toml:"url"`
	APIKey            string  `toml:"api_key"`
	Session           string  `toml:"session"`
	Lat               float64 `toml:"lat"`
	Lon               float64 `toml:"lon"`
	Height            float64 `toml:"height"`
	Radius            float64 `toml:"radius"`
	Srid              int     `toml:"srid"`
	ZOffset           float64 `toml:"zoffset"`
	MaxDepth          int     `toml:"max_depth"`
	MaxNodes          int     `toml:"max_nodes"`
	MaxLoadDepth      int     `toml:"max_load_depth"`
	Concurrency       int     `toml:"concurrency"`
	OversizeFactor    float64 `toml:"oversize_factor"`
	CullMode          string  `toml:"cull_mode"`
	Instantiator      string  `toml:"instantiator"`
	CopyrightInterval string  `toml:"copyright_interval"`
	MetricsAddr       string  `toml:"metrics_addr"`
	Output            string  `toml:"output"`
}

// ApplyConfigFile overlays the keys defined in a TOML file onto opts. Keys listed in skip are left
// untouched so that explicit command line flags win over the file.
func ApplyConfigFile(path string, opts *StreamerOptions, skip map[string]bool) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load streamer config: %w", err)
	}

	defined := func(key string) bool {
		return meta.IsDefined(key) && !skip[key]
	}

	if defined("url") {
		opts.TilesetURL = strings.TrimSpace(raw.URL)
	}
	if defined("api_key") {
		opts.APIKey = strings.TrimSpace(raw.APIKey)
	}
	if defined("session") {
		opts.SessionID = strings.TrimSpace(raw.Session)
	}
	if defined("lat") {
		opts.AoiLat = raw.Lat
	}
	if defined("lon") {
		opts.AoiLon = raw.Lon
	}
	if defined("height") {
		opts.AoiHeight = raw.Height
	}
	if defined("radius") {
		opts.AoiRadius = raw.Radius
	}
	if defined("srid") {
		opts.Srid = raw.Srid
	}
	if defined("zoffset") {
		opts.ZOffset = raw.ZOffset
	}
	if defined("max_depth") {
		opts.MaxDepth = raw.MaxDepth
	}
	if defined("max_nodes") {
		opts.MaxNodes = raw.MaxNodes
	}
	if defined("max_load_depth") {
		opts.MaxLoadDepth = raw.MaxLoadDepth
	}
	if defined("concurrency") {
		opts.ConcurrencyLimit = raw.Concurrency
	}
	if defined("oversize_factor") {
		opts.OversizeFactor = raw.OversizeFactor
	}
	if defined("cull_mode") {
		mode := ParseCullMode(raw.CullMode)
		if mode == "" {
			return fmt.Errorf("parse cull_mode: unknown mode %q", raw.CullMode)
		}
		opts.CullMode = mode
	}
	if defined("instantiator") {
		kind := ParseInstantiatorKind(raw.Instantiator)
		if kind == "" {
			return fmt.Errorf("parse instantiator: unknown kind %q", raw.Instantiator)
		}
		opts.Instantiator = kind
	}
	if defined("copyright_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.CopyrightInterval))
		if err != nil {
			return fmt.Errorf("parse copyright_interval: %w", err)
		}
		opts.CopyrightInterval = d
	}
	if defined("metrics_addr") {
		opts.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if defined("output") {
		if opts.StreamerLoadOptions == nil {
			opts.StreamerLoadOptions = &StreamerLoadOptions{}
		}
		opts.StreamerLoadOptions.Output = strings.TrimSpace(raw.Output)
	}

	return nil
}
