package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamer_scheduler_tasks_submitted_total",
		Help: "Tasks submitted to the load scheduler",
	})

	TasksFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamer_scheduler_tasks_finished_total",
		Help: "Tasks that reached a terminal state, by state",
	}, []string{"state"})

	TasksRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "streamer_scheduler_tasks_running",
		Help: "Tasks currently running",
	})

	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "streamer_scheduler_task_duration_seconds",
		Help:    "Wall time of scheduled tasks",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	})

	ManifestLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamer_manifest_loads_total",
		Help: "Manifest loads, by result",
	}, []string{"result"})

	NodesCulled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamer_nodes_culled_total",
		Help: "Nodes pruned for lying outside the area of interest",
	})

	FetchedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamer_fetched_bytes_total",
		Help: "Bytes retrieved by fetchers",
	})

	DecodedMeshBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamer_decoded_mesh_bytes_total",
		Help: "Mesh payload bytes handed to instantiators",
	})
)

// ServeMetrics exposes the default registry on addr until ctx is done
func ServeMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		glog.Infof("serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("metrics server: %v", err)
		}
	}()
}
