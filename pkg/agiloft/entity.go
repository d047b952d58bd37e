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

// Package agiloft implements the generic dispatch core for the Agiloft REST
// API: a registry-driven mapping from (entity, operation) pairs to concrete
// REST invocations, an authenticated session manager, and a multi-field
// search fan-out/merge engine.
//
// Entity differences (paths, field metadata, required and linked fields,
// supported operations) live in a flat descriptor table consulted by one
// generic dispatcher. New entities are pure data additions.
package agiloft

import (
	"fmt"
	"slices"
)

// Field describes one entity field for tool schema generation.
type Field struct {
	// Type is the JSON schema type: string, integer, number or array.
	Type string

	// Description is shown to tool-calling clients.
	Description string
}

// Entity describes one Agiloft resource kind. Descriptors are immutable
// after registry construction.
type Entity struct {
	// Key is the internal identifier, e.g. "contract".
	Key string

	// KeyPlural is the plural form used in tool names, e.g. "contracts".
	KeyPlural string

	// Path is the REST resource path, e.g. "/contract".
	Path string

	// DisplayName and DisplayNamePlural are human-readable names.
	DisplayName       string
	DisplayNamePlural string

	// Fields maps field names to schema metadata exposed in tool schemas.
	Fields map[string]Field

	// SearchFields are the free-text search fields, in fan-out order.
	SearchFields []string

	// DefaultFields is the default projection returned by search.
	DefaultFields []string

	// RequiredFields must be present when creating a record.
	RequiredFields []string

	// LinkedFields denote relations to other records. Their values are
	// wire-encoded with a leading ":" marker, and empty values are dropped
	// from outgoing bodies (the backend rejects empty linked values).
	LinkedFields []string

	// Operations lists the operations this entity supports.
	Operations []Operation
}

// Supports reports whether the entity allows the given operation.
func (e *Entity) Supports(op Operation) bool {
	return slices.Contains(e.Operations, op)
}

// IsLinked reports whether the field denotes a relation to another record.
func (e *Entity) IsLinked(field string) bool {
	return slices.Contains(e.LinkedFields, field)
}

// Registry is the immutable entity descriptor table. It is built once at
// startup and is safe for concurrent reads without synchronization.
type Registry struct {
	entities map[string]*Entity
	keys     []string
}

// NewRegistry builds a registry from the given descriptors, validating each
// one. Required, linked and search fields must reference known field
// metadata; a descriptor that does not fails construction with
// *InvalidEntityError so it can never reach runtime dispatch.
func NewRegistry(entities ...*Entity) (*Registry, error) {
	r := &Registry{entities: make(map[string]*Entity, len(entities))}
	for _, e := range entities {
		if err := validateEntity(e); err != nil {
			return nil, err
		}
		if _, exists := r.entities[e.Key]; exists {
			return nil, &InvalidEntityError{Key: e.Key, Reason: "duplicate entity key"}
		}
		r.entities[e.Key] = e
		r.keys = append(r.keys, e.Key)
	}
	return r, nil
}

func validateEntity(e *Entity) error {
	if e.Key == "" {
		return &InvalidEntityError{Key: e.Key, Reason: "entity key cannot be empty"}
	}
	if e.Path == "" {
		return &InvalidEntityError{Key: e.Key, Reason: "resource path cannot be empty"}
	}
	for _, f := range e.RequiredFields {
		if _, ok := e.Fields[f]; !ok {
			return &InvalidEntityError{Key: e.Key, Reason: fmt.Sprintf("required field %q is not in field metadata", f)}
		}
	}
	for _, f := range e.LinkedFields {
		if _, ok := e.Fields[f]; !ok {
			return &InvalidEntityError{Key: e.Key, Reason: fmt.Sprintf("linked field %q is not in field metadata", f)}
		}
	}
	for _, f := range e.SearchFields {
		if _, ok := e.Fields[f]; !ok {
			return &InvalidEntityError{Key: e.Key, Reason: fmt.Sprintf("search field %q is not in field metadata", f)}
		}
	}
	return nil
}

// Lookup returns the descriptor for the given key, or *UnknownEntityError.
func (r *Registry) Lookup(key string) (*Entity, error) {
	e, ok := r.entities[key]
	if !ok {
		return nil, &UnknownEntityError{Key: key, Valid: r.Keys()}
	}
	return e, nil
}

// Supports reports whether the entity exists and allows the operation.
func (r *Registry) Supports(key string, op Operation) bool {
	e, ok := r.entities[key]
	return ok && e.Supports(op)
}

// Keys returns the entity keys in registration order.
func (r *Registry) Keys() []string {
	return slices.Clone(r.keys)
}

// Entities returns the descriptors in registration order.
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.entities[k])
	}
	return out
}
