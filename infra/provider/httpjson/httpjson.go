// Package httpjson performs the JSON request/response round trips shared by the provider clients.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amirasaad/sendnreceive/pkg/provider"
)

const maxBodyBytes = 1 << 20

// Get sends a GET request to url and decodes a 2xx JSON body into dest.
func Get(ctx context.Context, client *http.Client, url string, header http.Header, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	return Do(client, req, dest)
}

// Post sends body as JSON to url and decodes a 2xx JSON body into dest.
func Post(
	ctx context.Context,
	client *http.Client,
	url string,
	header http.Header,
	body any,
	dest any,
) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return Do(client, req, dest)
}

// Do executes req. Transport failures wrap provider.ErrProviderUnavailable,
// non-2xx answers return a *provider.StatusError and undecodable bodies wrap
// provider.ErrMalformedResponse. A nil dest skips decoding.
func Do(client *http.Client, req *http.Request, dest any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", provider.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(body)
		return &provider.StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}
	return nil
}
