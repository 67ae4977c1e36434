// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

// Package azdevops implements the client side of the Azure DevOps
// authentication protocol: resolving the deployment's identity service
// through the location service, minting personal access tokens, and probing
// whether previously issued credentials or tokens are still usable.
//
// The package is a pure network-protocol adapter. It does not store
// secrets, cache tokens, or manage renewal; those concerns belong to the
// surrounding credential helper.
package azdevops
