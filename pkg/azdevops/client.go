// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gitcred/gitcred/pkg/logger"
	"github.com/gitcred/gitcred/pkg/networking"
)

// maxResponseSize caps how much of a response body is read. The endpoints
// used here return small JSON documents; anything larger is garbage.
const maxResponseSize = 1024 * 1024 // 1MB

// RequestOptions configures a single outbound request. A fresh value is
// constructed for every call; options are never shared between requests.
type RequestOptions struct {
	// Authorization is attached as the Authorization header.
	Authorization Authorization

	// VerifyTLS requires certificate validation on the connection.
	VerifyTLS bool
}

// Response is the outcome of a completed HTTP exchange: the status code and
// the (bounded) body. A Response is only produced when the server answered;
// transport failures surface as errors instead.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// HTTPClient is the authenticated HTTP capability the authority consumes.
// Implementations must honor the target's proxy and the per-request options.
type HTTPClient interface {
	Get(ctx context.Context, target *TargetUri, options RequestOptions) (*Response, error)
	Post(ctx context.Context, target *TargetUri, body []byte, options RequestOptions) (*Response, error)
}

// apiClient is the production HTTPClient built on pkg/networking.
type apiClient struct {
	caCertPath string
}

// NewHTTPClient creates the default HTTPClient. caCertPath optionally names
// a CA bundle for deployments with private certificate authorities.
func NewHTTPClient(caCertPath string) HTTPClient {
	return &apiClient{caCertPath: caCertPath}
}

// Get issues an authenticated GET against the target.
func (c *apiClient) Get(ctx context.Context, target *TargetUri, options RequestOptions) (*Response, error) {
	return c.do(ctx, http.MethodGet, target, nil, options)
}

// Post issues an authenticated POST with a JSON body against the target.
func (c *apiClient) Post(ctx context.Context, target *TargetUri, body []byte, options RequestOptions) (*Response, error) {
	return c.do(ctx, http.MethodPost, target, body, options)
}

func (c *apiClient) do(
	ctx context.Context, method string, target *TargetUri, body []byte, options RequestOptions,
) (*Response, error) {
	client, err := networking.NewHttpClientBuilder().
		WithCABundle(c.caCertPath).
		WithTLSVerification(options.VerifyTLS).
		WithProxy(target.Proxy()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if options.Authorization != nil {
		req.Header.Set("Authorization", options.Authorization.AuthorizationHeader())
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, target.String(), err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debugf("Failed to close response body: %v", err)
		}
	}()

	limitedReader := io.LimitReader(resp.Body, maxResponseSize)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", target.String(), err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
