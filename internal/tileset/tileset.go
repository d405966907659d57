package tileset

import (
	"net/url"
	"path"
	"strings"

	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/golang/geo/r3"
)

type VolumeKind int

const (
	VolumeUnknown VolumeKind = iota
	VolumeBox
	VolumeRegion
)

func (k VolumeKind) String() string {
	switch k {
	case VolumeBox:
		return "box"
	case VolumeRegion:
		return "region"
	}
	return "unknown"
}

// BoundingVolume holds either an oriented box (center followed by three half axes) or a
// [west, south, east, north, minHeight, maxHeight] region in radians and meters.
type BoundingVolume struct {
	Kind   VolumeKind
	Box    [12]float64
	Region [6]float64
}

func (b BoundingVolume) BoxCenter() r3.Vector {
	return r3.Vector{X: b.Box[0], Y: b.Box[1], Z: b.Box[2]}
}

// BoxHalfAxes returns the three half axis vectors of a box volume
func (b BoundingVolume) BoxHalfAxes() [3]r3.Vector {
	return [3]r3.Vector{
		{X: b.Box[3], Y: b.Box[4], Z: b.Box[5]},
		{X: b.Box[6], Y: b.Box[7], Z: b.Box[8]},
		{X: b.Box[9], Y: b.Box[10], Z: b.Box[11]},
	}
}

// ContentRef points at either a mesh container or a nested manifest
type ContentRef struct {
	URL            string
	BoundingVolume *BoundingVolume
}

// FileExtension returns the lower case extension of the URL path, query excluded
func (c ContentRef) FileExtension() string {
	p := c.URL
	if u, err := url.Parse(c.URL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}

// QueryString returns the raw query of the URL without the leading question mark
func (c ContentRef) QueryString() string {
	i := strings.Index(c.URL, "?")
	if i < 0 {
		return ""
	}
	query := c.URL[i+1:]
	if j := strings.Index(query, "#"); j >= 0 {
		query = query[:j]
	}
	return query
}

func (c ContentRef) IsManifest() bool {
	return c.FileExtension() == ".json"
}

func (c ContentRef) IsMesh() bool {
	ext := c.FileExtension()
	return ext == ".b3dm" || ext == ".glb"
}

type Tile struct {
	BoundingVolume BoundingVolume
	GeometricError float64
	Refine         tiler.RefineMode
	Content        *ContentRef
	Children       []*Tile

	// Position in the manifest children array, null entries included
	Index int
}

func (t *Tile) HasContent() bool {
	return t.Content != nil && t.Content.URL != ""
}

// CloneWithoutChildren returns a copy of the tile sharing nothing with the original except immutable values
func (t *Tile) CloneWithoutChildren() *Tile {
	clone := &Tile{
		BoundingVolume: t.BoundingVolume,
		GeometricError: t.GeometricError,
		Refine:         t.Refine,
		Index:          t.Index,
	}
	if t.Content != nil {
		content := *t.Content
		if t.Content.BoundingVolume != nil {
			bv := *t.Content.BoundingVolume
			content.BoundingVolume = &bv
		}
		clone.Content = &content
	}
	return clone
}

type PropertyRange struct {
	Minimum float64
	Maximum float64
}

type Asset struct {
	Version        string
	TilesetVersion string
	Copyright      string
}

type Tileset struct {
	Asset          Asset
	GeometricError float64
	Properties     map[string]PropertyRange
	Root           *Tile
}

// HorizontalCenter returns the midpoint of the _x and _y property ranges carried by streaming
// tile variants, as longitude and latitude in degrees.
func (ts *Tileset) HorizontalCenter() (lonDeg float64, latDeg float64, ok bool) {
	x, okX := ts.Properties["_x"]
	y, okY := ts.Properties["_y"]
	if !okX || !okY {
		return 0, 0, false
	}
	return (x.Minimum + x.Maximum) / 2, (y.Minimum + y.Maximum) / 2, true
}
