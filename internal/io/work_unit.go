package io

import (
	"github.com/ecopia-map/cesium_streamer/internal/hierarchy"
)

// Contains the minimal data needed to load a single mesh, i.e. the node snapshot and the resolved content URL
type WorkUnit struct {
	Node hierarchy.Node

	// Fully resolved content URL with key and session applied
	URL       string
	Extension string
}
