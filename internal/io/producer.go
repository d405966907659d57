package io

import (
	"sync"

	"github.com/ecopia-map/cesium_streamer/internal/hierarchy"
)

type Producer interface {
	Produce(work chan *WorkUnit, wg *sync.WaitGroup, tree *hierarchy.Tree, root hierarchy.NodeID)
}
