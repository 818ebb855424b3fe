package terminal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/pkg/logger"
)

const (
	defaultUsersTimeout  = 50 * time.Second
	defaultEventsTimeout = 900 * time.Second
	maxResponseBytes     = 64 << 20
)

// HTTPClient is the subset of *http.Client used by the bridge gateway.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BridgeGateway reads the terminal through an HTTP bridge exposing
// GET /users and GET /attendance as JSON arrays.
type BridgeGateway struct {
	baseURL       *url.URL
	client        HTTPClient
	usersTimeout  time.Duration
	eventsTimeout time.Duration
	location      *time.Location
	logger        logger.Logger
}

// BridgeOption configures a BridgeGateway.
type BridgeOption func(*BridgeGateway)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c HTTPClient) BridgeOption {
	return func(g *BridgeGateway) {
		if c != nil {
			g.client = c
		}
	}
}

// WithTimeouts sets the per-call deadlines for the user and punch downloads.
func WithTimeouts(users, events time.Duration) BridgeOption {
	return func(g *BridgeGateway) {
		if users > 0 {
			g.usersTimeout = users
		}
		if events > 0 {
			g.eventsTimeout = events
		}
	}
}

// WithLocation sets the zone used for zoneless terminal timestamps.
func WithLocation(loc *time.Location) BridgeOption {
	return func(g *BridgeGateway) {
		if loc != nil {
			g.location = loc
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(l logger.Logger) BridgeOption {
	return func(g *BridgeGateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewBridgeGateway validates rawURL and builds a gateway.
func NewBridgeGateway(rawURL string, opts ...BridgeOption) (*BridgeGateway, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("terminal bridge url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("terminal bridge url: unsupported scheme %q", u.Scheme)
	}

	g := &BridgeGateway{
		baseURL:       u,
		client:        &http.Client{},
		usersTimeout:  defaultUsersTimeout,
		eventsTimeout: defaultEventsTimeout,
		location:      time.Local,
		logger:        logger.Get().Named("terminal"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// FetchUsers implements Gateway.
func (g *BridgeGateway) FetchUsers(ctx context.Context) (model.Directory, error) {
	const op = "terminal.fetch_users"
	var users []userRecord
	if err := g.getJSON(ctx, "users", g.usersTimeout, &users); err != nil {
		return model.Directory{}, unavailable(op, err)
	}
	return toDirectory(users), nil
}

// FetchEvents implements Gateway.
func (g *BridgeGateway) FetchEvents(ctx context.Context) ([]model.ClockEvent, error) {
	const op = "terminal.fetch_events"
	var punches []punchRecord
	if err := g.getJSON(ctx, "attendance", g.eventsTimeout, &punches); err != nil {
		return nil, unavailable(op, err)
	}
	events, err := toEvents(punches, g.location)
	if err != nil {
		return nil, unavailable(op, err)
	}
	return events, nil
}

func (g *BridgeGateway) getJSON(ctx context.Context, path string, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := g.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn(ctx, "terminal request failed", logger.String("path", path), logger.Error(err))
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	g.logger.Debug(ctx, "terminal request done",
		logger.String("path", path),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}
