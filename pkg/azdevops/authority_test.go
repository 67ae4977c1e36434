// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitcred/gitcred/pkg/errors"
)

// httpCall records one request the fake client served.
type httpCall struct {
	method  string
	target  *TargetUri
	body    []byte
	options RequestOptions
}

// fakeHTTPClient implements HTTPClient for tests.
type fakeHTTPClient struct {
	calls    []httpCall
	getFunc  func(target *TargetUri, options RequestOptions) (*Response, error)
	postFunc func(target *TargetUri, body []byte, options RequestOptions) (*Response, error)
}

func (f *fakeHTTPClient) Get(_ context.Context, target *TargetUri, options RequestOptions) (*Response, error) {
	f.calls = append(f.calls, httpCall{method: http.MethodGet, target: target, options: options})
	if f.getFunc == nil {
		return nil, fmt.Errorf("unexpected GET %s", target.String())
	}
	return f.getFunc(target, options)
}

func (f *fakeHTTPClient) Post(_ context.Context, target *TargetUri, body []byte, options RequestOptions) (*Response, error) {
	f.calls = append(f.calls, httpCall{method: http.MethodPost, target: target, body: body, options: options})
	if f.postFunc == nil {
		return nil, fmt.Errorf("unexpected POST %s", target.String())
	}
	return f.postFunc(target, body, options)
}

// newTestAuthority pins the clock and machine name so request bodies are
// deterministic.
func newTestAuthority(client HTTPClient) *Authority {
	authority := NewAuthorityWithClient(client)
	authority.now = func() time.Time {
		return time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	authority.machineName = func() string { return "build-host" }
	return authority
}

func mustTargetUri(t *testing.T, remote string) *TargetUri {
	t.Helper()
	target, err := NewTargetUri(remote)
	require.NoError(t, err)
	return target
}

func jsonResponse(t *testing.T, status int, payload any) *Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return &Response{StatusCode: status, Body: body}
}

func TestGeneratePersonalAccessToken_Success(t *testing.T) {
	t.Parallel()

	accessToken := NewToken("aad-access-token", TokenTypeAccess)
	client := &fakeHTTPClient{
		getFunc: func(target *TargetUri, options RequestOptions) (*Response, error) {
			assert.Equal(t,
				"https://dev.azure.com/org/_apis/ServiceDefinitions/LocationService2/951917AC-A960-4999-8464-E3F0AA25B381?api-version=1.0",
				target.String())
			assert.True(t, options.VerifyTLS)
			assert.Equal(t, "Bearer aad-access-token", options.Authorization.AuthorizationHeader())
			return jsonResponse(t, http.StatusOK, map[string]string{
				"location": "https://vssps.dev.azure.com/org",
			}), nil
		},
		postFunc: func(target *TargetUri, body []byte, options RequestOptions) (*Response, error) {
			assert.Equal(t,
				"https://vssps.dev.azure.com/org/_apis/token/sessiontokens?api-version=1.0",
				target.String())
			assert.True(t, options.VerifyTLS)
			assert.Equal(t, "Bearer aad-access-token", options.Authorization.AuthorizationHeader())

			var request map[string]string
			require.NoError(t, json.Unmarshal(body, &request))
			assert.Equal(t, "vso.code_write", request["scope"])
			assert.Equal(t, "Git: https://dev.azure.com/org on build-host", request["displayName"])
			_, hasValidTo := request["validTo"]
			assert.False(t, hasValidTo)

			return jsonResponse(t, http.StatusOK, map[string]string{"token": "abc123"}), nil
		},
	}
	authority := newTestAuthority(client)

	token, err := authority.GeneratePersonalAccessToken(
		context.Background(), mustTargetUri(t, "https://dev.azure.com/org"),
		accessToken, ScopeCodeWrite, false, 0)

	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "abc123", token.Value)
	assert.Equal(t, TokenTypePersonal, token.Type)
	assert.Len(t, client.calls, 2)
}

func TestGeneratePersonalAccessToken_CompactToken(t *testing.T) {
	t.Parallel()

	client := &fakeHTTPClient{
		getFunc: func(_ *TargetUri, _ RequestOptions) (*Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]string{
				"location": "https://vssps.dev.azure.com/org",
			}), nil
		},
		postFunc: func(target *TargetUri, _ []byte, _ RequestOptions) (*Response, error) {
			assert.Equal(t,
				"https://vssps.dev.azure.com/org/_apis/token/sessiontokens?api-version=1.0&tokentype=compact",
				target.String())
			return jsonResponse(t, http.StatusOK, map[string]string{"token": "compact-pat"}), nil
		},
	}
	authority := newTestAuthority(client)

	token, err := authority.GeneratePersonalAccessToken(
		context.Background(), mustTargetUri(t, "https://dev.azure.com/org"),
		NewToken("aad", TokenTypeAccess), ScopeCodeWrite, true, 0)

	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "compact-pat", token.Value)
}

func TestGeneratePersonalAccessToken_ValidTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		duration    time.Duration
		wantValidTo string
	}{
		{
			name:        "duration above one hour adds validTo",
			duration:    8 * time.Hour,
			wantValidTo: "2025-08-30T20:00:00Z",
		},
		{
			name:     "duration of exactly one hour omits validTo",
			duration: time.Hour,
		},
		{
			name:     "duration below one hour omits validTo",
			duration: 30 * time.Minute,
		},
		{
			name:     "zero duration omits validTo",
			duration: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeHTTPClient{
				getFunc: func(_ *TargetUri, _ RequestOptions) (*Response, error) {
					return jsonResponse(t, http.StatusOK, map[string]string{
						"location": "https://vssps.dev.azure.com/org",
					}), nil
				},
				postFunc: func(_ *TargetUri, body []byte, _ RequestOptions) (*Response, error) {
					var request map[string]string
					require.NoError(t, json.Unmarshal(body, &request))
					validTo, hasValidTo := request["validTo"]
					if tt.wantValidTo == "" {
						assert.False(t, hasValidTo)
					} else {
						assert.Equal(t, tt.wantValidTo, validTo)
					}
					return jsonResponse(t, http.StatusOK, map[string]string{"token": "pat"}), nil
				},
			}
			authority := newTestAuthority(client)

			token, err := authority.GeneratePersonalAccessToken(
				context.Background(), mustTargetUri(t, "https://dev.azure.com/org"),
				NewToken("aad", TokenTypeAccess), ScopeCodeWrite, false, tt.duration)

			require.NoError(t, err)
			require.NotNil(t, token)
		})
	}
}

func TestGeneratePersonalAccessToken_InvalidArguments(t *testing.T) {
	t.Parallel()

	target := mustTargetUri(t, "https://dev.azure.com/org")
	accessToken := NewToken("aad", TokenTypeAccess)

	tests := []struct {
		name        string
		target      *TargetUri
		accessToken *Token
		scope       TokenScope
	}{
		{"nil target", nil, accessToken, ScopeCodeWrite},
		{"nil access token", target, nil, ScopeCodeWrite},
		{"empty access token", target, NewToken("", TokenTypeAccess), ScopeCodeWrite},
		{"empty scope", target, accessToken, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeHTTPClient{}
			authority := newTestAuthority(client)

			token, err := authority.GeneratePersonalAccessToken(
				context.Background(), tt.target, tt.accessToken, tt.scope, false, 0)

			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
			assert.Nil(t, token)
			assert.Empty(t, client.calls, "no network call may happen on caller misuse")
		})
	}
}

func TestGeneratePersonalAccessToken_LocationServiceFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		getFunc func(target *TargetUri, options RequestOptions) (*Response, error)
	}{
		{
			name: "transport error during lookup",
			getFunc: func(_ *TargetUri, _ RequestOptions) (*Response, error) {
				return nil, fmt.Errorf("dial tcp: connection refused")
			},
		},
		{
			name: "lookup rejected with non-success status",
			getFunc: func(_ *TargetUri, _ RequestOptions) (*Response, error) {
				return &Response{StatusCode: http.StatusNotFound, Body: []byte("not here")}, nil
			},
		},
		{
			name: "lookup response missing the location field",
			getFunc: func(_ *TargetUri, _ RequestOptions) (*Response, error) {
				return &Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"LocationService2"}`)}, nil
			},
		},
		{
			name: "lookup response is not JSON",
			getFunc: func(_ *TargetUri, _ RequestOptions) (*Response, error) {
				return &Response{StatusCode: http.StatusOK, Body: []byte("<html>sign in</html>")}, nil
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeHTTPClient{getFunc: tt.getFunc}
			authority := newTestAuthority(client)

			token, err := authority.GeneratePersonalAccessToken(
				context.Background(), mustTargetUri(t, "https://dev.azure.com/org"),
				NewToken("aad", TokenTypeAccess), ScopeCodeWrite, false, 0)

			require.Error(t, err)
			assert.True(t, errors.IsLocationService(err))
			assert.Nil(t, token)
		})
	}
}

func TestGeneratePersonalAccessToken_IssuanceFailuresReturnAbsence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		postFunc func(target *TargetUri, body []byte, options RequestOptions) (*Response, error)
	}{
		{
			name: "transport error during issuance",
			postFunc: func(_ *TargetUri, _ []byte, _ RequestOptions) (*Response, error) {
				return nil, fmt.Errorf("tls: handshake failure")
			},
		},
		{
			name: "issuance rejected with non-success status",
			postFunc: func(_ *TargetUri, _ []byte, _ RequestOptions) (*Response, error) {
				return &Response{StatusCode: http.StatusUnauthorized, Body: []byte("denied")}, nil
			},
		},
		{
			name: "issuance response missing the token field",
			postFunc: func(_ *TargetUri, _ []byte, _ RequestOptions) (*Response, error) {
				return &Response{StatusCode: http.StatusOK, Body: []byte(`{"displayName":"Git"}`)}, nil
			},
		},
		{
			name: "issuance response is not JSON",
			postFunc: func(_ *TargetUri, _ []byte, _ RequestOptions) (*Response, error) {
				return &Response{StatusCode: http.StatusOK, Body: []byte("oops")}, nil
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeHTTPClient{
				getFunc: func(_ *TargetUri, _ RequestOptions) (*Response, error) {
					return jsonResponse(t, http.StatusOK, map[string]string{
						"location": "https://vssps.dev.azure.com/org",
					}), nil
				},
				postFunc: tt.postFunc,
			}
			authority := newTestAuthority(client)

			token, err := authority.GeneratePersonalAccessToken(
				context.Background(), mustTargetUri(t, "https://dev.azure.com/org"),
				NewToken("aad", TokenTypeAccess), ScopeCodeWrite, false, 0)

			assert.NoError(t, err, "issuance failure is an expected outcome, not an error")
			assert.Nil(t, token)
		})
	}
}

func TestResolveIdentityServiceUri_PreservesProxyAndTrailingSlash(t *testing.T) {
	t.Parallel()

	proxy, err := url.Parse("http://proxy.corp.example:8080")
	require.NoError(t, err)

	client := &fakeHTTPClient{
		getFunc: func(target *TargetUri, _ RequestOptions) (*Response, error) {
			// the lookup request itself rides the origin's proxy
			assert.Equal(t, proxy, target.Proxy())
			return jsonResponse(t, http.StatusOK, map[string]string{
				"location": "https://svc.example/",
			}), nil
		},
		postFunc: func(target *TargetUri, _ []byte, _ RequestOptions) (*Response, error) {
			assert.Equal(t, proxy, target.Proxy())
			assert.Equal(t,
				"https://svc.example/_apis/token/sessiontokens?api-version=1.0",
				target.String())
			return jsonResponse(t, http.StatusOK, map[string]string{"token": "pat"}), nil
		},
	}
	authority := newTestAuthority(client)

	target := mustTargetUri(t, "https://dev.azure.com/org").WithProxy(proxy)

	token, err := authority.GeneratePersonalAccessToken(
		context.Background(), target,
		NewToken("aad", TokenTypeAccess), ScopeCodeWrite, false, 0)

	require.NoError(t, err)
	require.NotNil(t, token)
}
