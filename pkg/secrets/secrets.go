// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

// Package secrets stores Git credentials in the operating system keyring.
package secrets

import (
	"encoding/json"
	goerrors "errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/gitcred/gitcred/pkg/azdevops"
	"github.com/gitcred/gitcred/pkg/errors"
)

// ErrNotFound indicates that no credential is stored for the target.
var ErrNotFound = goerrors.New("no credential stored for target")

// baseServiceName is the keyring service name (may be namespaced via env for tests/dev).
const baseServiceName = "gitcred"

// Store describes a type which can persist Git credentials per target.
type Store interface {
	Get(target string) (*azdevops.Credential, error)
	Set(target string, credential *azdevops.Credential) error
	Delete(target string) error
}

// credentialRecord is the JSON document placed in the keyring.
type credentialRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// KeyringStore persists credentials in the OS keyring, one entry per
// target URL.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring-backed store. The keyring service name
// can be overridden with GITCRED_KEYRING_SERVICE, or namespaced with
// GITCRED_KEYRING_NAMESPACE, so tests and development setups stay isolated
// from real credentials.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringServiceName()}
}

func keyringServiceName() string {
	if v := strings.TrimSpace(os.Getenv("GITCRED_KEYRING_SERVICE")); v != "" {
		return v
	}
	if ns := strings.TrimSpace(os.Getenv("GITCRED_KEYRING_NAMESPACE")); ns != "" {
		return baseServiceName + "-" + ns
	}
	return baseServiceName
}

// Get retrieves the credential stored for the target.
func (s *KeyringStore) Get(target string) (*azdevops.Credential, error) {
	if target == "" {
		return nil, errors.NewInvalidArgumentError("target is required", nil)
	}

	value, err := keyring.Get(s.service, target)
	if err != nil {
		if goerrors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.NewSecretStoreError("failed to read credential from keyring", err)
	}

	var record credentialRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, errors.NewSecretStoreError("stored credential is malformed", err)
	}

	return azdevops.NewCredential(record.Username, record.Password), nil
}

// Set stores the credential for the target, replacing any previous entry.
func (s *KeyringStore) Set(target string, credential *azdevops.Credential) error {
	if target == "" {
		return errors.NewInvalidArgumentError("target is required", nil)
	}
	if credential == nil {
		return errors.NewInvalidArgumentError("credential is required", nil)
	}

	value, err := json.Marshal(credentialRecord{
		Username: credential.Username,
		Password: credential.Password,
	})
	if err != nil {
		return errors.NewSecretStoreError("failed to encode credential", err)
	}

	if err := keyring.Set(s.service, target, string(value)); err != nil {
		return errors.NewSecretStoreError("failed to write credential to keyring", err)
	}
	return nil
}

// Delete removes the credential stored for the target. Deleting a target
// with no stored credential returns ErrNotFound.
func (s *KeyringStore) Delete(target string) error {
	if target == "" {
		return errors.NewInvalidArgumentError("target is required", nil)
	}

	if err := keyring.Delete(s.service, target); err != nil {
		if goerrors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return errors.NewSecretStoreError("failed to delete credential from keyring", err)
	}
	return nil
}
