// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/gitcred/gitcred/pkg/errors"
	"github.com/gitcred/gitcred/pkg/logger"
)

// ValidateCredentials probes the connection-data endpoint with the given
// credentials and reports whether they are usable.
//
// Any HTTP response at all counts as valid, including 4xx and 5xx: the
// deployment answered, which proves connectivity and the endpoint's
// existence, and a server-side error says nothing conclusive about the
// credentials. Only a transport failure (unreachable host, TLS failure,
// timeout) reports false. Note that this accepts credentials the server
// rejected with a 4xx; tokens are held to the stricter policy in
// ValidateToken.
//
// The returned error is non-nil only for absent arguments.
func (a *Authority) ValidateCredentials(ctx context.Context, target *TargetUri, credentials *Credential) (bool, error) {
	if target == nil {
		return false, errors.NewInvalidArgumentError("target URI is required", nil)
	}
	if credentials == nil {
		return false, errors.NewInvalidArgumentError("credentials are required", nil)
	}

	resp, err := a.probeConnectionData(ctx, target, credentials)
	if err != nil {
		logger.Debugf("Credential validation for %s failed: %v", target.String(), err)
		return false, nil
	}

	logger.Debugf("Credential validation for %s answered with status %d", target.String(), resp.StatusCode)
	return true, nil
}

// ValidateToken probes the connection-data endpoint with the given token
// and reports whether it is usable.
//
// A personal access token is structurally a credential and is classified
// under the credential policy. For every other token kind a 4xx means the
// token itself was rejected and reports false; statuses outside [400,500)
// report true, since the deployment answered without conclusively rejecting
// the token. Transport failures report false.
//
// The returned error is non-nil only for absent arguments.
func (a *Authority) ValidateToken(ctx context.Context, target *TargetUri, token *Token) (bool, error) {
	if target == nil {
		return false, errors.NewInvalidArgumentError("target URI is required", nil)
	}
	if token == nil || token.Value == "" {
		return false, errors.NewInvalidArgumentError("token is required", nil)
	}

	resp, err := a.probeConnectionData(ctx, target, token)
	if err != nil {
		logger.Debugf("Token validation for %s failed: %v", target.String(), err)
		return false, nil
	}

	if token.Type == TokenTypePersonal {
		logger.Debugf("Personal access token validation for %s answered with status %d", target.String(), resp.StatusCode)
		return true, nil
	}

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		logger.Debugf("Token validation for %s rejected with status %d", target.String(), resp.StatusCode)
		return false, nil
	}

	logger.Debugf("Token validation for %s answered with status %d", target.String(), resp.StatusCode)
	return true, nil
}

// connectionDataResponse is the slice of the connection-data document this
// client cares about.
type connectionDataResponse struct {
	InstanceID string `json:"instanceId"`
}

// PopulateTokenTargetID reads the deployment's instance identifier from the
// connection-data endpoint and stores it in the token's TargetIdentity
// field. It reports whether the identifier was populated; any failure along
// the way (transport, non-success status, missing or unparseable field)
// reports false.
//
// The returned error is non-nil only for absent arguments.
func (a *Authority) PopulateTokenTargetID(ctx context.Context, target *TargetUri, accessToken *Token) (bool, error) {
	if target == nil {
		return false, errors.NewInvalidArgumentError("target URI is required", nil)
	}
	if accessToken == nil || accessToken.Value == "" {
		return false, errors.NewInvalidArgumentError("access token is required", nil)
	}

	resp, err := a.probeConnectionData(ctx, target, accessToken)
	if err != nil {
		logger.Debugf("Connection data request for %s failed: %v", target.String(), err)
		return false, nil
	}
	if !resp.Success() {
		logger.Debugf("Connection data request for %s returned status %d", target.String(), resp.StatusCode)
		return false, nil
	}

	var record connectionDataResponse
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		logger.Debugf("Failed to decode connection data response: %v", err)
		return false, nil
	}

	instanceID, err := uuid.Parse(record.InstanceID)
	if err != nil {
		logger.Debugf("Connection data for %s carries an unparseable instance ID %q", target.String(), record.InstanceID)
		return false, nil
	}

	accessToken.TargetIdentity = instanceID
	return true, nil
}

// probeConnectionData issues the authenticated GET shared by the validators
// and PopulateTokenTargetID.
func (a *Authority) probeConnectionData(
	ctx context.Context, target *TargetUri, authorization Authorization,
) (*Response, error) {
	requestUri, err := ConnectionDataUri(target)
	if err != nil {
		return nil, err
	}

	if err := a.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	options := RequestOptions{Authorization: authorization, VerifyTLS: true}
	return a.client.Get(ctx, requestUri, options)
}
