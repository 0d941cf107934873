// Package socketio provides a post-planning step that publishes the final
// path to a socket.io server.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the "socketio" post-planning type.
func (m *Module) Register(r *registry.Registry) {
	r.PostPlanning.Register("socketio", func() plugin.PostPlanner { return new(Publisher) })
}

// Message is the payload emitted for every path.
type Message struct {
	Path nav.Path `json:"path"`
	Cost float64  `json:"cost"`
}

// Publisher emits each path as a Message on "event" (default "path").
//
// Parameters: url (required), namespace (default "/"), event, timeout
// (default 10s), insecure_skip_verify, required (default false). When
// required is false a publishing error is logged and the path still passes.
type Publisher struct {
	baseURL            string
	path               string
	namespace          string
	event              string
	timeout            time.Duration
	insecureSkipVerify bool
	required           bool
	logger             *slog.Logger

	mu sync.Mutex
	io *socket.Socket
}

// Initialize implements plugin.Initializer. It does not connect; the
// connection is opened on first use and kept until Close.
func (p *Publisher) Initialize(scope plugin.Scope) error {
	cfg := scope.Config

	raw, err := cfg.String("url", "")
	if err != nil {
		return err
	}
	if raw == "" {
		return fmt.Errorf("%s is required", cfg.Path("url"))
	}
	parsedURL, err := url.Parse(raw)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("%s: invalid URL '%s'", cfg.Path("url"), raw)
	}
	p.baseURL = fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	p.path = parsedURL.Path

	if p.namespace, err = cfg.String("namespace", "/"); err != nil {
		return err
	}
	if p.event, err = cfg.String("event", "path"); err != nil {
		return err
	}
	if p.event == "" {
		return fmt.Errorf("%s: must not be empty", cfg.Path("event"))
	}
	if p.timeout, err = cfg.Duration("timeout", 10*time.Second); err != nil {
		return err
	}
	if p.timeout <= 0 {
		return fmt.Errorf("%s: must be positive", cfg.Path("timeout"))
	}
	if p.insecureSkipVerify, err = cfg.Bool("insecure_skip_verify", false); err != nil {
		return err
	}
	if p.required, err = cfg.Bool("required", false); err != nil {
		return err
	}
	p.logger = scope.Logger.With("url", raw, "namespace", p.namespace, "event", p.event)
	return nil
}

// PostProcess implements plugin.PostPlanner. Path and cost are never
// modified.
func (p *Publisher) PostProcess(ctx context.Context, path *nav.Path, cost *float64) bool {
	logger := ctxlog.FromContext(ctx)

	io, err := p.connect(ctx)
	if err != nil {
		logger.Warn("Failed to publish path.", "error", err, "required", p.required)
		return !p.required
	}

	logger.Info("Emitting event", "event", p.event, "poses", len(*path))
	if err := io.Emit(p.event, Message{Path: path.Clone(), Cost: *cost}); err != nil {
		logger.Warn("Failed to publish path.", "error", err, "required", p.required)
		return !p.required
	}
	return true
}

// connect returns the live socket, dialing it first if needed.
func (p *Publisher) connect(ctx context.Context) (*socket.Socket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.io != nil && p.io.Connected() {
		return p.io, nil
	}
	p.disconnect()

	opts := socket.DefaultOptions()
	opts.SetPath(p.path)
	if p.insecureSkipVerify {
		p.logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	// A dropped connection is redialed on the next path instead.
	opts.SetReconnection(false)

	manager := socket.NewManager(p.baseURL, opts)
	io := manager.Socket(p.namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		p.logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	p.logger.Debug("Initiating connection...")
	io.Connect()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		p.io = io
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", p.timeout)
	}
}

func (p *Publisher) disconnect() {
	if p.io != nil {
		p.logger.Debug("Disconnecting socket client")
		p.io.Disconnect()
		p.io = nil
	}
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnect()
	return nil
}
