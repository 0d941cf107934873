// Package remote provides a planner that delegates to an HTTP planning
// service.
//
// The request is a JSON object {"start": Pose, "goal": Pose, "tolerance":
// number}. A 2xx response must carry {"path": [Pose...], "cost": number};
// cost may be omitted, in which case the path length is used. Any other
// status, a transport error or an empty path counts as failure.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the "remote" planning type.
func (m *Module) Register(r *registry.Registry) {
	r.Planning.Register("remote", func() plugin.Planner { return new(Planner) })
}

// Request is the body sent to the planning service.
type Request struct {
	Start     nav.Pose `json:"start"`
	Goal      nav.Pose `json:"goal"`
	Tolerance float64  `json:"tolerance"`
}

// Response is the body expected back.
type Response struct {
	Path nav.Path `json:"path"`
	Cost *float64 `json:"cost,omitempty"`
}

// Planner calls the service at "url" with "method" (default POST) and
// "timeout" (default 10s).
type Planner struct {
	url    string
	method string
	client *http.Client
	logger *slog.Logger
}

// Initialize implements plugin.Initializer.
func (p *Planner) Initialize(scope plugin.Scope) error {
	raw, err := scope.Config.String("url", "")
	if err != nil {
		return err
	}
	if raw == "" {
		return fmt.Errorf("%s is required", scope.Config.Path("url"))
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s: invalid URL '%s'", scope.Config.Path("url"), raw)
	}

	method, err := scope.Config.String("method", http.MethodPost)
	if err != nil {
		return err
	}
	timeout, err := scope.Config.Duration("timeout", 10*time.Second)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		return fmt.Errorf("%s: must be positive", scope.Config.Path("timeout"))
	}

	p.url = u.String()
	p.method = method
	p.client = newHTTPClient(timeout)
	p.logger = scope.Logger
	return nil
}

// MakePlan implements plugin.Planner.
func (p *Planner) MakePlan(ctx context.Context, start, goal nav.Pose, tolerance float64, path *nav.Path, cost *float64) bool {
	logger := ctxlog.FromContext(ctx)

	res, err := p.call(ctx, Request{Start: start, Goal: goal, Tolerance: tolerance})
	if err != nil {
		logger.Warn("Remote planner failed.", "url", p.url, "error", err)
		return false
	}
	if len(res.Path) == 0 {
		logger.Warn("Remote planner returned an empty path.", "url", p.url)
		return false
	}

	*path = res.Path
	if res.Cost != nil {
		*cost = *res.Cost
	} else {
		*cost = res.Path.Length()
	}
	return true
}

func (p *Planner) call(ctx context.Context, body Request) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	ctxlog.FromContext(ctx).Debug("Making HTTP request", "method", p.method, "url", p.url)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return &out, nil
}

// Close implements io.Closer.
func (p *Planner) Close() error {
	if p.client != nil {
		destroyHTTPClient(p.client)
	}
	return nil
}
