package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ghaggin/cems/internal/model"
)

func (c *Client) GetEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) SearchEvents(ctx context.Context, p model.SearchParams) ([]model.Event, error) {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("keyword", p.Keyword)
	set("location", p.Location)
	set("status", p.Status)
	set("startDate", p.StartDate)
	set("endDate", p.EndDate)

	var events []model.Event
	if err := c.do(ctx, http.MethodGet, "/events/search", q, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, d model.EventDraft) (*model.Event, error) {
	var ev model.Event
	if err := c.do(ctx, http.MethodPost, "/events", nil, d, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *Client) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) error {
	body := struct {
		Status model.EventStatus `json:"status"`
	}{status}
	return c.do(ctx, http.MethodPatch, "/events/"+url.PathEscape(id)+"/status", nil, body, nil)
}

func (c *Client) RSVP(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/events/"+url.PathEscape(id)+"/rsvp", nil, nil, nil)
}

func (c *Client) CancelRSVP(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id)+"/rsvp", nil, nil, nil)
}
