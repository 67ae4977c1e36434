// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/gitcred/gitcred/pkg/errors"
	"github.com/gitcred/gitcred/pkg/logger"
)

// Authority is the client for one deployment's authentication surface.
// It holds no per-call state: concurrent use from multiple goroutines is
// safe, every operation builds its own request options and reads its own
// response, and no operation retries.
type Authority struct {
	client      HTTPClient
	rateLimiter *rate.Limiter

	// Injected so displayName and validTo construction are deterministic
	// under test.
	now         func() time.Time
	machineName func() string
}

// NewAuthority creates an authority using the default HTTP client.
// caCertPath optionally names a CA bundle for on-premises deployments.
func NewAuthority(caCertPath string) *Authority {
	return NewAuthorityWithClient(NewHTTPClient(caCertPath))
}

// NewAuthorityWithClient creates an authority over a caller-provided HTTP
// capability. Tests use this to substitute fake transports.
func NewAuthorityWithClient(client HTTPClient) *Authority {
	// 10 requests per second with burst of 20. Credential helpers are
	// invoked once per git operation, so anything above this is a runaway
	// caller, not a legitimate workload.
	limiter := rate.NewLimiter(10, 20)

	return &Authority{
		client:      client,
		rateLimiter: limiter,
		now:         time.Now,
		machineName: localMachineName,
	}
}

func localMachineName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

// locationServiceResponse is the slice of the service-definition document
// this client cares about.
type locationServiceResponse struct {
	Location string `json:"location"`
}

// sessionTokenRequest is the body POSTed to the session-token endpoint.
type sessionTokenRequest struct {
	Scope       string `json:"scope"`
	DisplayName string `json:"displayName"`
	ValidTo     string `json:"validTo,omitempty"`
}

// sessionTokenResponse is the slice of the issuance response this client
// cares about.
type sessionTokenResponse struct {
	Token string `json:"token"`
}

// GeneratePersonalAccessToken mints a personal access token for the target
// deployment, authorized by accessToken. requireCompactToken requests the
// short token representation. A duration above one hour bounds the token's
// validity to now+duration; otherwise the service default applies.
//
// Failure to mint a token is an expected outcome (revoked access,
// insufficient scope, service trouble) and is reported as (nil, nil).
// A non-nil error means caller misuse (InvalidArgument) or that the
// identity service could not be resolved at all (LocationService).
func (a *Authority) GeneratePersonalAccessToken(
	ctx context.Context,
	target *TargetUri,
	accessToken *Token,
	tokenScope TokenScope,
	requireCompactToken bool,
	duration time.Duration,
) (*Token, error) {
	if target == nil {
		return nil, errors.NewInvalidArgumentError("target URI is required", nil)
	}
	if accessToken == nil || accessToken.Value == "" {
		return nil, errors.NewInvalidArgumentError("access token is required", nil)
	}
	if tokenScope == "" {
		return nil, errors.NewInvalidArgumentError("token scope is required", nil)
	}

	identityService, err := a.resolveIdentityServiceUri(ctx, target, accessToken)
	if err != nil {
		return nil, err
	}
	if identityService == nil {
		// Without the identity service there is nowhere to send the
		// issuance request; this is the one fatal outcome.
		return nil, errors.NewLocationServiceError(target.String(), nil)
	}

	requestPath := identityService.BaseURL() + "/" + sessionTokenPath
	if requireCompactToken {
		requestPath += compactTokenQuery
	}
	requestUri, err := NewTargetUri(requestPath)
	if err != nil {
		logger.Debugf("Malformed session token URL %q: %v", requestPath, err)
		return nil, nil
	}
	requestUri = requestUri.WithProxy(target.Proxy())

	request := sessionTokenRequest{
		Scope:       tokenScope.String(),
		DisplayName: fmt.Sprintf("Git: %s on %s", target.BaseURL(), a.machineName()),
	}
	if duration > time.Hour {
		request.ValidTo = a.now().UTC().Add(duration).Format(time.RFC3339)
	}

	payload, err := json.Marshal(request)
	if err != nil {
		logger.Debugf("Failed to marshal session token request: %v", err)
		return nil, nil
	}

	options := RequestOptions{Authorization: accessToken, VerifyTLS: true}
	if err := a.rateLimiter.Wait(ctx); err != nil {
		logger.Debugf("Rate limit wait failed: %v", err)
		return nil, nil
	}

	resp, err := a.client.Post(ctx, requestUri, payload, options)
	if err != nil {
		logger.Debugf("Personal access token request failed: %v", err)
		return nil, nil
	}
	if !resp.Success() {
		logger.Debugf("Personal access token request rejected with status %d", resp.StatusCode)
		return nil, nil
	}

	var record sessionTokenResponse
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		logger.Debugf("Failed to decode session token response: %v", err)
		return nil, nil
	}
	if record.Token == "" {
		logger.Debug("Session token response did not contain a token")
		return nil, nil
	}

	logger.Debugf("Personal access token acquired for %s", target.String())
	return NewToken(record.Token, TokenTypePersonal), nil
}

// resolveIdentityServiceUri asks the location service where the identity
// service for the target deployment lives. A transport failure is fatal
// (LocationService error); a responsive server that does not yield a
// location resolves to (nil, nil).
func (a *Authority) resolveIdentityServiceUri(
	ctx context.Context, target *TargetUri, authorization Authorization,
) (*TargetUri, error) {
	requestUri, err := IdentityServiceRequestUri(target)
	if err != nil {
		return nil, err
	}

	options := RequestOptions{Authorization: authorization, VerifyTLS: true}
	if err := a.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.NewLocationServiceError(target.String(), err)
	}

	resp, err := a.client.Get(ctx, requestUri, options)
	if err != nil {
		return nil, errors.NewLocationServiceError(target.String(), err)
	}
	if !resp.Success() {
		logger.Debugf("Location service lookup for %s returned status %d", target.String(), resp.StatusCode)
		return nil, nil
	}

	var record locationServiceResponse
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		logger.Debugf("Failed to decode location service response: %v", err)
		return nil, nil
	}
	if record.Location == "" {
		logger.Debugf("Location service response for %s did not contain a location", target.String())
		return nil, nil
	}

	resolved, err := NewTargetUri(record.Location)
	if err != nil {
		logger.Debugf("Location service returned malformed URL %q: %v", record.Location, err)
		return nil, nil
	}

	return resolved.WithProxy(target.Proxy()), nil
}
