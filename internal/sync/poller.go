// Package sync keeps locally cached resources fresh by polling a cheap
// change marker and refetching the full collection only when the marker
// moves. One Poller per resource.
package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	"github.com/ferretex/storefront-client/pkg/logger"
	"github.com/ferretex/storefront-client/pkg/metrics"
	"github.com/ferretex/storefront-client/pkg/types"
)

var (
	errResourceRequired = errors.New("poller resource is required")
	errMarkerRequired   = errors.New("poller marker func is required")
	errRefetchRequired  = errors.New("poller refetch func is required")
	errLoggerRequired   = errors.New("poller logger is required")
)

// DefaultInterval is used when Params leaves Interval unset.
const DefaultInterval = 5 * time.Second

// MarkerFunc fetches the current change marker for the resource.
type MarkerFunc func(ctx context.Context) (types.ChangeMarker, error)

// RefetchFunc reloads the full collection after a marker change.
type RefetchFunc func(ctx context.Context) error

// VisibleFunc gates polling; when it reports false the tick is skipped
// entirely, marker probe included.
type VisibleFunc func() bool

// Params configures a Poller.
type Params struct {
	Resource string
	Interval time.Duration
	Marker   MarkerFunc
	Refetch  RefetchFunc
	Visible  VisibleFunc
	Logger   *logger.Logger
	Metrics  *metrics.SyncMetrics
}

// Poller probes a change marker on a fixed cadence and triggers exactly one
// refetch per observed change. Failures are logged and swallowed; the next
// tick retries.
type Poller struct {
	resource string
	interval time.Duration
	marker   MarkerFunc
	refetch  RefetchFunc
	visible  VisibleFunc
	logger   *logger.Logger
	metrics  *metrics.SyncMetrics

	mu     stdsync.Mutex
	seeded bool
	last   string
	busy   bool
}

// New validates params and returns a Poller. Run must still be called to
// start the loop.
func New(params Params) (*Poller, error) {
	if params.Resource == "" {
		return nil, errResourceRequired
	}
	if params.Marker == nil {
		return nil, errMarkerRequired
	}
	if params.Refetch == nil {
		return nil, errRefetchRequired
	}
	if params.Logger == nil {
		return nil, errLoggerRequired
	}
	if params.Interval <= 0 {
		params.Interval = DefaultInterval
	}
	return &Poller{
		resource: params.Resource,
		interval: params.Interval,
		marker:   params.Marker,
		refetch:  params.Refetch,
		visible:  params.Visible,
		logger:   params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Run ticks until the context is cancelled. It never returns an error from
// the polled endpoints; those are absorbed per tick.
func (p *Poller) Run(ctx context.Context) {
	ctx = p.logger.WithResource(ctx, p.resource)
	p.logger.Info(ctx, "poller started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(ctx, "poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle: probe the marker, compare, refetch on change.
// The first successful probe only records the marker; refetches start with
// the second observation. A tick that lands while a refetch is still in
// flight leaves the recorded marker untouched so the change is picked up
// next time.
func (p *Poller) Tick(ctx context.Context) {
	if p.visible != nil && !p.visible() {
		return
	}

	p.metrics.IncPoll(p.resource)
	marker, err := p.marker(ctx)
	if err != nil {
		p.metrics.IncFailure(p.resource)
		p.logger.Warn(p.logger.WithResource(ctx, p.resource), "marker probe failed: "+err.Error())
		return
	}

	p.mu.Lock()
	if !p.seeded {
		p.seeded = true
		p.last = marker.LastChanged
		p.mu.Unlock()
		return
	}
	if marker.LastChanged == p.last {
		p.mu.Unlock()
		return
	}
	if p.busy {
		p.mu.Unlock()
		return
	}
	p.busy = true
	p.mu.Unlock()

	p.metrics.IncRefetch(p.resource)
	refetchErr := p.refetch(ctx)

	p.mu.Lock()
	p.busy = false
	if refetchErr == nil {
		p.last = marker.LastChanged
	}
	p.mu.Unlock()

	if refetchErr != nil {
		p.metrics.IncFailure(p.resource)
		p.logger.Warn(p.logger.WithResource(ctx, p.resource), "refetch failed: "+refetchErr.Error())
	}
}
