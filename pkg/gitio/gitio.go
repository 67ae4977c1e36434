// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

// Package gitio speaks the git credential-helper wire protocol: newline
// separated key=value attributes on stdin/stdout, terminated by a blank
// line. See git-credential(1) for the format.
package gitio

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gitcred/gitcred/pkg/azdevops"
	"github.com/gitcred/gitcred/pkg/errors"
)

// Request is one credential-helper exchange as git describes it.
type Request struct {
	Protocol string
	Host     string
	Path     string
	Username string
	Password string
}

// ParseRequest reads attributes from r until a blank line or EOF.
// Unknown attributes are ignored, matching git's own tolerance for
// helpers from newer or older versions.
func ParseRequest(r io.Reader) (*Request, error) {
	request := &Request{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, errors.NewInvalidArgumentError(fmt.Sprintf("malformed attribute line %q", line), nil)
		}

		switch key {
		case "protocol":
			request.Protocol = value
		case "host":
			request.Host = value
		case "path":
			request.Path = value
		case "username":
			request.Username = value
		case "password":
			request.Password = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credential request: %w", err)
	}

	if request.Protocol == "" || request.Host == "" {
		return nil, errors.NewInvalidArgumentError("credential request requires protocol and host", nil)
	}

	return request, nil
}

// WriteResponse emits the username/password attributes git expects from a
// successful `get`.
func WriteResponse(w io.Writer, username, password string) error {
	if _, err := fmt.Fprintf(w, "username=%s\npassword=%s\n", username, password); err != nil {
		return fmt.Errorf("failed to write credential response: %w", err)
	}
	return nil
}

// TargetUri builds the deployment address the request refers to. The
// username travels embedded in the URL so derived API paths can carry it
// as a path segment.
func (r *Request) TargetUri() (*azdevops.TargetUri, error) {
	var sb strings.Builder
	sb.WriteString(r.Protocol)
	sb.WriteString("://")
	if r.Username != "" {
		sb.WriteString(url.User(r.Username).String())
		sb.WriteString("@")
	}
	sb.WriteString(r.Host)
	if r.Path != "" {
		sb.WriteString("/")
		sb.WriteString(strings.TrimLeft(r.Path, "/"))
	}
	return azdevops.NewTargetUri(sb.String())
}

// StorageKey is the keyring entry name for this request's deployment:
// protocol, host, and path without any userinfo.
func (r *Request) StorageKey() string {
	key := r.Protocol + "://" + r.Host
	if r.Path != "" {
		key += "/" + strings.TrimLeft(r.Path, "/")
	}
	return key
}
