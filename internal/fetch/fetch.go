// Package fetch downloads card photos referenced by URL so the scan
// endpoint can accept remote images as well as uploads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
)

// Fetcher downloads card photos over HTTP with bounded retries and a
// size cap matching the upload limit.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

type Option func(*Fetcher)

// WithHTTPClient overrides the transport, for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func NewFetcher(maxBytes int64, opts ...Option) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValidateURL rejects URLs before any network traffic happens: only
// http and https schemes with a host are accepted.
func ValidateURL(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("invalid image URL", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewValidationError("image URL scheme must be http or https", nil)
	}
	if parsed.Host == "" {
		return apperrors.NewValidationError("image URL must have a host", nil)
	}
	return nil
}

// Fetch downloads the image at imageURL and returns its raw bytes.
// Server errors are retried with exponential backoff; client errors
// fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	if err := ValidateURL(imageURL); err != nil {
		return nil, err
	}

	var data []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return backoff.Permanent(apperrors.NewValidationError("invalid image URL", err))
		}
		req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
		req.Header.Set("User-Agent", "kortly-pokemon-api/1.0")

		resp, err := f.client.Do(req)
		if err != nil {
			return apperrors.NewNetworkError("image download failed", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(apperrors.NewValidationError(
				fmt.Sprintf("image URL returned status %d", resp.StatusCode), nil))
		default:
			return apperrors.NewNetworkError(
				fmt.Sprintf("image host returned status %d", resp.StatusCode), nil)
		}

		limited := io.LimitReader(resp.Body, f.maxBytes+1)
		data, err = io.ReadAll(limited)
		if err != nil {
			return apperrors.NewNetworkError("reading image body failed", err)
		}
		if int64(len(data)) > f.maxBytes {
			return backoff.Permanent(apperrors.NewValidationError(
				fmt.Sprintf("image exceeds %d byte limit", f.maxBytes), nil))
		}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return data, nil
}
