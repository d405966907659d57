package tileset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ecopia-map/cesium_streamer/internal/tiler"
	"github.com/golang/glog"
)

// MaxJSONDepth bounds object and array nesting in a manifest
const MaxJSONDepth = 100

var (
	ErrMaxDepthExceeded = errors.New("manifest nesting exceeds maximum depth")
	ErrMissingRoot      = errors.New("manifest has no root tile")
)

type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "tileset parse error: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type rawBoundingVolume struct {
	Box    []float64 `json:"box"`
	Region []float64 `json:"region"`
	Sphere []float64 `json:"sphere"`
}

type rawContent struct {
	URL            string             `json:"url"`
	URI            string             `json:"uri"`
	BoundingVolume *rawBoundingVolume `json:"boundingVolume"`
}

type rawTile struct {
	BoundingVolume *rawBoundingVolume `json:"boundingVolume"`
	GeometricError float64            `json:"geometricError"`
	Refine         string             `json:"refine"`
	Content        *rawContent        `json:"content"`
	Children       []*rawTile         `json:"children"`
}

type rawAsset struct {
	Version        string `json:"version"`
	TilesetVersion string `json:"tilesetVersion"`
	Copyright      string `json:"copyright"`
}

type rawTileset struct {
	Asset          rawAsset                   `json:"asset"`
	GeometricError float64                    `json:"geometricError"`
	Properties     map[string]json.RawMessage `json:"properties"`
	Root           *rawTile                   `json:"root"`
}

// Parse decodes a manifest document into a tile tree. Malformed JSON, nesting deeper than
// MaxJSONDepth and malformed bounding volumes all return a *ParseError.
func Parse(data []byte) (*Tileset, error) {
	if err := checkDepth(data, MaxJSONDepth); err != nil {
		return nil, &ParseError{Err: err}
	}

	var raw rawTileset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if raw.Root == nil {
		return nil, &ParseError{Err: ErrMissingRoot}
	}

	root, err := convertTile(raw.Root, tiler.RefineModeReplace)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	return &Tileset{
		Asset: Asset{
			Version:        raw.Asset.Version,
			TilesetVersion: raw.Asset.TilesetVersion,
			Copyright:      raw.Asset.Copyright,
		},
		GeometricError: raw.GeometricError,
		Properties:     convertProperties(raw.Properties),
		Root:           root,
	}, nil
}

// checkDepth scans the token stream without building values
func checkDepth(data []byte, maxDepth int) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		delim, ok := token.(json.Delim)
		if !ok {
			continue
		}
		switch delim {
		case '{', '[':
			depth++
			if depth > maxDepth {
				return fmt.Errorf("%w (%d)", ErrMaxDepthExceeded, maxDepth)
			}
		case '}', ']':
			depth--
		}
	}
}

func convertTile(raw *rawTile, parentRefine tiler.RefineMode) (*Tile, error) {
	tile := &Tile{
		GeometricError: raw.GeometricError,
		Refine:         parentRefine,
	}

	if raw.Refine != "" {
		if refine := tiler.ParseRefineMode(raw.Refine); refine != "" {
			tile.Refine = refine
		} else {
			glog.V(2).Infof("unknown refine %q, inheriting %s", raw.Refine, parentRefine)
		}
	}

	volume, err := convertBoundingVolume(raw.BoundingVolume)
	if err != nil {
		return nil, err
	}
	tile.BoundingVolume = volume

	if raw.Content != nil {
		content := &ContentRef{URL: raw.Content.URI}
		if content.URL == "" {
			content.URL = raw.Content.URL
		}
		if raw.Content.BoundingVolume != nil {
			contentVolume, err := convertBoundingVolume(raw.Content.BoundingVolume)
			if err != nil {
				return nil, err
			}
			content.BoundingVolume = &contentVolume
		}
		tile.Content = content
	}

	for i, rawChild := range raw.Children {
		if rawChild == nil {
			continue
		}
		child, err := convertTile(rawChild, tile.Refine)
		if err != nil {
			return nil, err
		}
		child.Index = i
		tile.Children = append(tile.Children, child)
	}

	return tile, nil
}

func convertBoundingVolume(raw *rawBoundingVolume) (BoundingVolume, error) {
	volume := BoundingVolume{Kind: VolumeUnknown}
	if raw == nil {
		return volume, nil
	}

	switch {
	case raw.Box != nil:
		if len(raw.Box) != 12 {
			return volume, fmt.Errorf("box bounding volume must have 12 values, got %d", len(raw.Box))
		}
		volume.Kind = VolumeBox
		copy(volume.Box[:], raw.Box)
	case raw.Region != nil:
		if len(raw.Region) != 6 {
			return volume, fmt.Errorf("region bounding volume must have 6 values, got %d", len(raw.Region))
		}
		volume.Kind = VolumeRegion
		copy(volume.Region[:], raw.Region)
	}

	return volume, nil
}

func convertProperties(raw map[string]json.RawMessage) map[string]PropertyRange {
	properties := make(map[string]PropertyRange)
	for name, value := range raw {
		var r struct {
			Minimum *float64 `json:"minimum"`
			Maximum *float64 `json:"maximum"`
		}
		if err := json.Unmarshal(value, &r); err != nil || r.Minimum == nil || r.Maximum == nil {
			continue
		}
		properties[name] = PropertyRange{Minimum: *r.Minimum, Maximum: *r.Maximum}
	}
	return properties
}
