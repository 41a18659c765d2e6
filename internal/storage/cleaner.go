// Package storage holds the narrow contract to the external object-storage
// collaborator that owns issue images.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ImageCleaner removes remote image assets after their issue is deleted.
// Cleanup failures must never roll back the local deletion; callers log
// the error and move on.
type ImageCleaner interface {
	Cleanup(ctx context.Context, refs []string) error
}

// NoopCleaner is used when no asset service is configured.
type NoopCleaner struct{}

func (NoopCleaner) Cleanup(ctx context.Context, refs []string) error {
	return nil
}

// HTTPCleaner asks the asset service to delete each reference.
type HTTPCleaner struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCleaner builds a cleaner against the asset service base URL.
func NewHTTPCleaner(baseURL string) *HTTPCleaner {
	return &HTTPCleaner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPCleaner) Cleanup(ctx context.Context, refs []string) error {
	var firstErr error
	for _, ref := range refs {
		if err := c.deleteOne(ctx, ref); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *HTTPCleaner) deleteOne(ctx context.Context, ref string) error {
	endpoint := c.baseURL + "/assets?url=" + url.QueryEscape(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("asset service returned %d for %s", resp.StatusCode, ref)
	}
	return nil
}
