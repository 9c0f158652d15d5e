package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ghaggin/cems/internal/config"
	"github.com/ghaggin/cems/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	maxErrorBody = 4 << 10

	headerRequestID = "X-Request-ID"
)

var (
	errEmptyToken = errors.New("auth service returned an empty token")
)

// StatusError is a non-2xx answer from the CEMS service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cems api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("cems api: %d %s", e.StatusCode, e.Message)
}

func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client calls the CEMS REST service on behalf of the current browser
// session. The credential token is read from the session store on every
// request.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens session.Store
	log    *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
	Tokens session.Store
	HTTP   *http.Client `optional:"true"`
}

func New(p Params) (*Client, error) {
	base, err := url.Parse(p.Config.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}

	hc := p.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: p.Config.API.Timeout}
	}

	return &Client{
		base:   base,
		http:   hc,
		tokens: p.Tokens,
		log:    p.Log,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, requestID(ctx))
	if token, ok := c.tokens.Get(ctx, session.TokenKey); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("cems api call",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return se
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil {
		se.Message = payload.Message
		if se.Message == "" {
			se.Message = payload.Error
		}
	}
	return se
}

// requestID reuses the id of the page request when there is one so the
// front end and service logs line up.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
