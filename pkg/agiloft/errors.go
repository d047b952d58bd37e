// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agiloft

import (
	"fmt"
	"strings"
)

// UnknownEntityError is returned when an entity key is not in the registry.
type UnknownEntityError struct {
	Key   string
	Valid []string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity %q (valid entities: %s)", e.Key, strings.Join(e.Valid, ", "))
}

// UnsupportedOperationError is returned when an entity does not allow an
// operation. It is a pre-flight failure; no request is sent.
type UnsupportedOperationError struct {
	Entity    string
	Operation Operation
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("entity %q does not support operation %q", e.Entity, e.Operation)
}

// InvalidEntityError is returned by NewRegistry when an entity descriptor is
// internally inconsistent. Registry construction fails fast so a malformed
// entity can never reach dispatch.
type InvalidEntityError struct {
	Key    string
	Reason string
}

func (e *InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid entity %q: %s", e.Key, e.Reason)
}

// InvalidArgumentError is returned for malformed caller input, such as a
// missing upsert match query or an unrecognized delete rule. It is a
// pre-flight failure; no request is sent.
type InvalidArgumentError struct {
	Operation Operation
	Reason    string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument for %s: %s", e.Operation, e.Reason)
}

// AuthenticationError is returned when the login exchange fails, or when the
// backend rejects a request with an authorization failure twice in a row.
type AuthenticationError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// TransportTimeoutError is returned when an outbound call exceeds its
// timeout. Timed-out operations are never retried.
type TransportTimeoutError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportTimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportTimeoutError) Unwrap() error {
	return e.Err
}

// TransportError is returned for non-2xx responses that are not
// authorization failures, and for lower-level connection errors.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed: %s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendError is returned when the backend answers with a transport-level
// success but an embedded failure flag (HTTP 200 with success=false).
// Normalizing it here gives callers a single failure channel.
type BackendError struct {
	Entity    string
	Operation Operation
	RecordID  int64
	Message   string
	Details   []string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	if len(e.Details) > 0 {
		msg += " - " + strings.Join(e.Details, "; ")
	}
	if e.RecordID > 0 {
		return fmt.Sprintf("%s %s failed for record %d: %s", e.Entity, e.Operation, e.RecordID, msg)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s failed: %s", e.Entity, e.Operation, msg)
	}
	return fmt.Sprintf("operation failed: %s", msg)
}
