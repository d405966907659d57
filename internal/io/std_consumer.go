package io

import (
	"context"
	"fmt"
	"sync"

	"github.com/ecopia-map/cesium_streamer/internal/content"
	"github.com/ecopia-map/cesium_streamer/internal/fetch"
	"github.com/ecopia-map/cesium_streamer/internal/hierarchy"
	"github.com/ecopia-map/cesium_streamer/internal/instantiate"
	"github.com/ecopia-map/cesium_streamer/internal/scheduler"
	"github.com/golang/glog"
)

type StandardConsumer struct {
	tree         *hierarchy.Tree
	scheduler    *scheduler.Scheduler
	fetcher      fetch.Fetcher
	instantiator instantiate.Instantiator
}

func NewStandardConsumer(tree *hierarchy.Tree, sched *scheduler.Scheduler, fetcher fetch.Fetcher, instantiator instantiate.Instantiator) *StandardConsumer {
	return &StandardConsumer{
		tree:         tree,
		scheduler:    sched,
		fetcher:      fetcher,
		instantiator: instantiator,
	}
}

// Continually consumes WorkUnits submitted to a work channel, turning each into a scheduled load task.
// Once the channel is closed waits for every task and records its outcome on the node. Failed loads are
// sent to the error channel, they never stop the other loads.
func (c *StandardConsumer) Consume(ctx context.Context, workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	var carriers []*scheduler.TaskCarrier
	var units []*WorkUnit
	for work := range workchan {
		work := work
		carrier := c.scheduler.Submit(ctx, work.Node.Path, float32(work.Node.Tile.GeometricError), scheduler.TaskFunc(func(ctx context.Context) (bool, interface{}, error) {
			return c.doWork(ctx, work)
		}))
		carriers = append(carriers, carrier)
		units = append(units, work)
	}

	for i, carrier := range carriers {
		<-carrier.Done()
		id := units[i].Node.ID

		switch carrier.State() {
		case scheduler.TaskStateSuccess:
			c.tree.SetLoadState(id, hierarchy.LoadStateLoaded)
		case scheduler.TaskStateCancelled:
			c.tree.SetLoadState(id, hierarchy.LoadStateCancelled)
		default:
			c.tree.SetLoadState(id, hierarchy.LoadStateFailed)
			errchan <- fmt.Errorf("load %s: %w", units[i].Node.Path, carrier.Err())
		}
	}
}

// Fetches, decodes and instantiates the mesh of a WorkUnit
func (c *StandardConsumer) doWork(ctx context.Context, work *WorkUnit) (bool, interface{}, error) {
	data, err := c.fetcher.Fetch(ctx, work.URL)
	if err != nil {
		return false, nil, err
	}

	decoded, err := content.DecodeContent(work.Extension, data)
	if err != nil {
		return false, nil, err
	}

	result, err := c.instantiator.Instantiate(ctx, instantiate.Request{
		Path:         work.Node.Path,
		MeshBytes:    decoded.MeshBytes,
		CenterOffset: decoded.CenterOffset,
		Placement:    work.Node.Context.Placement(work.Node, decoded.CenterOffset),
	})
	if err != nil {
		return false, nil, err
	}
	if !result.Success {
		return false, nil, nil
	}

	copyright := result.Copyright
	if len(copyright) == 0 {
		copyright = decoded.Copyright
	}
	c.tree.SetCopyright(work.Node.ID, copyright)

	glog.V(2).Infof("loaded %s (%d bytes)", work.Node.Path, len(decoded.MeshBytes))
	return true, result, nil
}
