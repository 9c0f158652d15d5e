package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ghaggin/cems/internal/metrics"
	"github.com/ghaggin/cems/internal/model"
	"github.com/ghaggin/cems/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	msgFetchFailed  = "Failed to load events. Please try again later."
	msgStatusFailed = "Failed to update event status."
	msgRSVPFailed   = "Failed to update your RSVP."
	msgCreateFailed = "Failed to create event."
	msgCreated      = "Event submitted for approval."
)

// API is the event half of the CEMS service.
type API interface {
	GetEvents(ctx context.Context) ([]model.Event, error)
	SearchEvents(ctx context.Context, p model.SearchParams) ([]model.Event, error)
	CreateEvent(ctx context.Context, d model.EventDraft) (*model.Event, error)
	UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error
	RSVP(ctx context.Context, id string) error
	CancelRSVP(ctx context.Context, id string) error
}

// FetchError wraps any failure reading events from the service.
type FetchError struct {
	Call string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching events (%s): %v", e.Call, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Catalog is what pages use to read and change events. Reads never fail:
// a failed fetch is reported to the user and yields an empty list.
type Catalog struct {
	api     API
	notify  session.Notifier
	log     *zap.Logger
	metrics *metrics.Metrics
}

type Params struct {
	fx.In

	API      API
	Notifier session.Notifier
	Log      *zap.Logger
	Metrics  *metrics.Metrics `optional:"true"`
}

func New(p Params) *Catalog {
	return &Catalog{
		api:     p.API,
		notify:  p.Notifier,
		log:     p.Log,
		metrics: p.Metrics,
	}
}

// List searches when any filter is set and lists everything otherwise.
func (c *Catalog) List(ctx context.Context, p model.SearchParams) []model.Event {
	if p.IsZero() {
		evs, err := c.api.GetEvents(ctx)
		return c.settle(ctx, "list", evs, err)
	}
	evs, err := c.api.SearchEvents(ctx, p)
	return c.settle(ctx, "search", evs, err)
}

// ByStatus lists the events in one admin review tab.
func (c *Catalog) ByStatus(ctx context.Context, status model.EventStatus) []model.Event {
	evs, err := c.api.SearchEvents(ctx, model.SearchParams{Status: string(status)})
	return c.settle(ctx, "search", evs, err)
}

// Counts fetches every review tab concurrently. Tabs that fail to load
// count as zero and are not reported to the user.
func (c *Catalog) Counts(ctx context.Context) map[model.EventStatus]int {
	var (
		mu     sync.Mutex
		counts = make(map[model.EventStatus]int, len(model.Statuses))
	)

	var g errgroup.Group
	for _, st := range model.Statuses {
		g.Go(func() error {
			evs, err := c.api.SearchEvents(ctx, model.SearchParams{Status: string(st)})
			if err != nil {
				c.metrics.EventAPIError("count")
				c.log.Warn("counting events failed", zap.String("status", string(st)), zap.Error(err))
				evs = nil
			}
			mu.Lock()
			counts[st] = len(evs)
			mu.Unlock()
			return nil
		})
	}
	// every tab reports its own failure; Wait only joins
	_ = g.Wait()

	return counts
}

func (c *Catalog) SetStatus(ctx context.Context, id string, status model.EventStatus) error {
	if err := c.api.UpdateEventStatus(ctx, id, status); err != nil {
		return c.fail(ctx, "status", msgStatusFailed, err)
	}
	c.notify.Notify(ctx, model.Toast{Kind: model.ToastSuccess, Message: fmt.Sprintf("Event %s.", status)})
	return nil
}

// ToggleRSVP adds an RSVP, or withdraws it when attending is true.
func (c *Catalog) ToggleRSVP(ctx context.Context, id string, attending bool) error {
	call, msg := c.api.RSVP, "You're going!"
	if attending {
		call, msg = c.api.CancelRSVP, "RSVP cancelled."
	}

	if err := call(ctx, id); err != nil {
		return c.fail(ctx, "rsvp", msgRSVPFailed, err)
	}
	c.notify.Notify(ctx, model.Toast{Kind: model.ToastSuccess, Message: msg})
	return nil
}

func (c *Catalog) Create(ctx context.Context, d model.EventDraft) (*model.Event, error) {
	ev, err := c.api.CreateEvent(ctx, d)
	if err != nil {
		return nil, c.fail(ctx, "create", msgCreateFailed, err)
	}
	c.notify.Notify(ctx, model.Toast{Kind: model.ToastSuccess, Message: msgCreated})
	return ev, nil
}

func (c *Catalog) settle(ctx context.Context, call string, evs []model.Event, err error) []model.Event {
	if err != nil {
		c.fail(ctx, call, msgFetchFailed, &FetchError{Call: call, Err: err})
		return []model.Event{}
	}
	if evs == nil {
		return []model.Event{}
	}
	return evs
}

func (c *Catalog) fail(ctx context.Context, call, msg string, err error) error {
	c.metrics.EventAPIError(call)
	c.log.Error("event service call failed", zap.String("call", call), zap.Error(err))
	c.notify.Notify(ctx, model.Toast{Kind: model.ToastError, Message: msg})
	return err
}
