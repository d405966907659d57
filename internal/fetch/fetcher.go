package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/ecopia-map/cesium_streamer/internal/observability"
	"github.com/golang/glog"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves the bytes behind a URL. Implementations must honour ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TransportError is returned when a resource could not be retrieved
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPFetcher issues GET requests. Concurrent requests for the same URL share a single round trip.
// The shared request runs until every caller waiting on it has returned, so one caller's
// cancellation never reaches the others.
type HTTPFetcher struct {
	client *http.Client
	group  singleflight.Group

	mu       sync.Mutex
	inflight map[string]*sharedRequest
}

type sharedRequest struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, inflight: make(map[string]*sharedRequest)}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shared := f.join(ctx, url)
		results := f.group.DoChan(url, func() (interface{}, error) {
			return f.get(shared.ctx, url)
		})

		select {
		case <-ctx.Done():
			f.leave(url, shared)
			return nil, ctx.Err()
		case res := <-results:
			f.leave(url, shared)
			if res.Shared {
				glog.V(2).Infof("shared fetch of %s", url)
			}
			if res.Err != nil {
				// a round trip abandoned by its last waiter, started before this caller joined
				if errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
					continue
				}
				return nil, res.Err
			}
			return res.Val.([]byte), nil
		}
	}
}

func (f *HTTPFetcher) join(ctx context.Context, url string) *sharedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	shared, ok := f.inflight[url]
	if !ok {
		sharedCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		shared = &sharedRequest{ctx: sharedCtx, cancel: cancel}
		f.inflight[url] = shared
	}
	shared.waiters++
	return shared
}

func (f *HTTPFetcher) leave(url string, shared *sharedRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()

	shared.waiters--
	if shared.waiters > 0 {
		return
	}
	shared.cancel()
	if f.inflight[url] == shared {
		delete(f.inflight, url)
	}
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{URL: url, Err: err}
	}

	observability.FetchedBytes.Add(float64(len(data)))
	return data, nil
}

// FileFetcher reads file:// URLs and plain paths from the local disk
type FileFetcher struct{}

func (f FileFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(LocalPath(url))
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	observability.FetchedBytes.Add(float64(len(data)))
	return data, nil
}

// SchemeFetcher routes http(s) URLs to the network and everything else to the disk
type SchemeFetcher struct {
	HTTP Fetcher
	File Fetcher
}

func NewDefaultFetcher() *SchemeFetcher {
	return &SchemeFetcher{
		HTTP: NewHTTPFetcher(nil),
		File: FileFetcher{},
	}
}

func (f *SchemeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return f.HTTP.Fetch(ctx, url)
	}
	return f.File.Fetch(ctx, url)
}

// MapFetcher serves resources from memory, keyed by URL without its query string
type MapFetcher struct {
	mu        sync.Mutex
	resources map[string][]byte
	requests  []string
}

func NewMapFetcher(resources map[string][]byte) *MapFetcher {
	if resources == nil {
		resources = make(map[string][]byte)
	}
	return &MapFetcher{resources: resources}
}

func (f *MapFetcher) Set(url string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources[url] = data
}

func (f *MapFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, url)

	if data, ok := f.resources[url]; ok {
		return data, nil
	}
	if data, ok := f.resources[StripQuery(url)]; ok {
		return data, nil
	}
	return nil, &TransportError{URL: url, StatusCode: http.StatusNotFound}
}

// Requests returns every URL fetched so far, in order
func (f *MapFetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}
