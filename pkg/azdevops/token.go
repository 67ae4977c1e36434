// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

package azdevops

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// Authorization is anything that can authorize an outbound HTTP request.
// Both Credential and Token satisfy it; the authority does not care which
// one it is handed.
type Authorization interface {
	// AuthorizationHeader returns the value for the Authorization header.
	AuthorizationHeader() string
}

// TokenType tags what kind of token a Token value holds.
type TokenType string

const (
	// TokenTypePersonal is a personal access token minted by the identity
	// service. Structurally it is a credential: the deployment accepts it
	// anywhere a password is accepted.
	TokenTypePersonal TokenType = "personal"

	// TokenTypeAccess is an Azure AD access token used to authorize the
	// minting of personal access tokens.
	TokenTypeAccess TokenType = "access"

	// TokenTypeUnknown is any other token kind.
	TokenTypeUnknown TokenType = "unknown"
)

// Token is opaque authorization material issued by the service.
// TargetIdentity is filled in as a side effect of identity lookups
// (see Authority.PopulateTokenTargetID); it is the only mutable field.
type Token struct {
	Value          string
	Type           TokenType
	TargetIdentity uuid.UUID
}

// NewToken creates a token of the given type.
func NewToken(value string, tokenType TokenType) *Token {
	return &Token{Value: value, Type: tokenType}
}

// AuthorizationHeader returns a Bearer header value for the token.
func (t *Token) AuthorizationHeader() string {
	return "Bearer " + t.Value
}

// Credential is a username/password pair supplied by the user.
type Credential struct {
	Username string
	Password string
}

// NewCredential creates a credential from a username/password pair.
func NewCredential(username, password string) *Credential {
	return &Credential{Username: username, Password: password}
}

// AuthorizationHeader returns a Basic header value for the credential.
func (c *Credential) AuthorizationHeader() string {
	encoded := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	return "Basic " + encoded
}

// TokenScope identifies the permissions requested for a personal access
// token. The value is passed to the service verbatim; this package attaches
// no meaning to it beyond its textual representation.
type TokenScope string

// Well-known scopes used when minting Git credentials.
const (
	// ScopeCodeWrite grants read/write access to source code.
	ScopeCodeWrite TokenScope = "vso.code_write"

	// ScopePackagingRead grants read access to package feeds.
	ScopePackagingRead TokenScope = "vso.packaging"
)

// String returns the textual representation sent in request bodies.
func (s TokenScope) String() string {
	return string(s)
}
