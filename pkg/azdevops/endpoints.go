// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"net/url"

	"github.com/gitcred/gitcred/pkg/errors"
)

const (
	// connectionDataPath is a lightweight deployment endpoint used as a
	// reachability and authorization probe.
	connectionDataPath = "_apis/connectiondata"

	// locationServicePath is the versioned service-definition entry that
	// reports where the identity service for the deployment lives. The GUID
	// identifies the LocationService2 definition.
	locationServicePath = "_apis/ServiceDefinitions/LocationService2/951917AC-A960-4999-8464-E3F0AA25B381?api-version=1.0"

	// sessionTokenPath mints personal access tokens on the identity service.
	sessionTokenPath = "_apis/token/sessiontokens?api-version=1.0"

	// compactTokenQuery requests the short token representation.
	compactTokenQuery = "&tokentype=compact"
)

// ConnectionDataUri derives the target's connection-data endpoint. The
// embedded username, when present, becomes a percent-encoded path segment
// ahead of the API path. The derived target keeps the origin's proxy.
func ConnectionDataUri(target *TargetUri) (*TargetUri, error) {
	return deriveAPIUri(target, connectionDataPath)
}

// IdentityServiceRequestUri derives the location-service lookup endpoint
// used to discover the deployment's identity service.
func IdentityServiceRequestUri(target *TargetUri) (*TargetUri, error) {
	return deriveAPIUri(target, locationServicePath)
}

func deriveAPIUri(target *TargetUri, apiPath string) (*TargetUri, error) {
	if target == nil {
		return nil, errors.NewInvalidArgumentError("target URI is required", nil)
	}

	base := target.BaseURL()
	if username := target.Username(); username != "" {
		base += "/" + url.PathEscape(username)
	}

	derived, err := NewTargetUri(base + "/" + apiPath)
	if err != nil {
		return nil, err
	}
	return derived.WithProxy(target.Proxy()), nil
}
