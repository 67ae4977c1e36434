// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"net/url"
	"strings"

	"github.com/gitcred/gitcred/pkg/errors"
)

// TargetUri is an immutable address of a remote Azure DevOps deployment.
// It carries the parsed remote URL, the username embedded in that URL (if
// any), and the proxy to use when talking to it. Every TargetUri derived
// from another one keeps the origin's proxy.
type TargetUri struct {
	actual   *url.URL
	username string
	proxy    *url.URL
}

// NewTargetUri parses remote into a TargetUri. A username embedded in the
// URL (https://alice@dev.azure.com/org) is extracted and kept separately;
// the stored URL never carries userinfo.
func NewTargetUri(remote string) (*TargetUri, error) {
	if strings.TrimSpace(remote) == "" {
		return nil, errors.NewInvalidArgumentError("remote URL is required", nil)
	}

	parsed, err := url.Parse(remote)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("remote URL is malformed", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.NewInvalidArgumentError("remote URL must be absolute", nil)
	}

	username := ""
	if parsed.User != nil {
		username = parsed.User.Username()
		clone := *parsed
		clone.User = nil
		parsed = &clone
	}

	return &TargetUri{actual: parsed, username: username}, nil
}

// WithProxy returns a copy of the target routed through the given proxy.
func (t *TargetUri) WithProxy(proxy *url.URL) *TargetUri {
	return &TargetUri{actual: t.actual, username: t.username, proxy: proxy}
}

// Username returns the username embedded in the original remote URL, or ""
// when none was present.
func (t *TargetUri) Username() string {
	return t.username
}

// Proxy returns the proxy associated with this target, or nil.
func (t *TargetUri) Proxy() *url.URL {
	return t.proxy
}

// URL returns a copy of the underlying URL.
func (t *TargetUri) URL() *url.URL {
	clone := *t.actual
	return &clone
}

// BaseURL returns scheme, host, and path with the query, fragment, and any
// trailing slash removed. This is the prefix every API path is appended to.
func (t *TargetUri) BaseURL() string {
	base := t.actual.Scheme + "://" + t.actual.Host + t.actual.EscapedPath()
	return strings.TrimRight(base, "/")
}

// String returns the target's URL without userinfo.
func (t *TargetUri) String() string {
	return t.actual.String()
}
