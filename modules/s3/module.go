// Package s3 provides a post-planning step that uploads the final path as a
// JSON document to a pre-signed object storage URL.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
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

// Register registers the "s3_upload" post-planning type.
func (m *Module) Register(r *registry.Registry) {
	r.PostPlanning.Register("s3_upload", func() plugin.PostPlanner { return new(Uploader) })
}

// Document is the object written for every path.
type Document struct {
	Path nav.Path `json:"path"`
	Cost float64  `json:"cost"`
}

// Uploader PUTs a Document to "upload_url".
//
// Parameters: upload_url (required), timeout (default 30s), required
// (default true). A non-200 response is a failed upload.
type Uploader struct {
	uploadURL string
	required  bool
	client    *http.Client
}

// Initialize implements plugin.Initializer.
func (u *Uploader) Initialize(scope plugin.Scope) error {
	cfg := scope.Config

	raw, err := cfg.String("upload_url", "")
	if err != nil {
		return err
	}
	if raw == "" {
		return fmt.Errorf("%s is required", cfg.Path("upload_url"))
	}
	if parsed, err := url.Parse(raw); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s: invalid URL", cfg.Path("upload_url"))
	}

	timeout, err := cfg.Duration("timeout", 30*time.Second)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		return fmt.Errorf("%s: must be positive", cfg.Path("timeout"))
	}
	if u.required, err = cfg.Bool("required", true); err != nil {
		return err
	}

	u.uploadURL = raw
	u.client = &http.Client{Timeout: timeout}
	return nil
}

// PostProcess implements plugin.PostPlanner.
func (u *Uploader) PostProcess(ctx context.Context, path *nav.Path, cost *float64) bool {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	if err := u.upload(ctx, Document{Path: *path, Cost: *cost}); err != nil {
		logger.Warn("Failed to upload path.", "error", err, "required", u.required)
		return !u.required
	}
	logger.Info("Successfully uploaded path", "poses", len(*path))
	return true
}

func (u *Uploader) upload(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.uploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create S3 upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}
	return nil
}

// Close implements io.Closer.
func (u *Uploader) Close() error {
	if u.client != nil {
		u.client.CloseIdleConnections()
	}
	return nil
}
