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
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder observes completed operations, for metrics. The zero value of
// dispatch uses a no-op recorder.
type Recorder interface {
	RecordOperation(entity string, op Operation, duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, Operation, time.Duration, error) {}

// Dispatcher is the single entry point of the core: it resolves an
// (entity, operation) pair against the registry, delegates to the request
// builder or the search engine, and normalizes the backend response.
type Dispatcher struct {
	registry *Registry
	client   *Client
	search   *SearchEngine
	recorder Recorder
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// NewDispatcher creates a dispatcher over the given registry and client.
func NewDispatcher(registry *Registry, client *Client, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		client:   client,
		search:   NewSearchEngine(client),
		recorder: noopRecorder{},
		logger:   slog.Default().With("component", "dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the entity registry the dispatcher was built with.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Execute runs one operation. Registry and capability failures are local
// and fast; nothing goes over the wire for them.
func (d *Dispatcher) Execute(ctx context.Context, entityKey string, op Operation, args Args) (*Result, error) {
	callID := uuid.NewString()
	logger := d.logger.With("call_id", callID, "entity", entityKey, "operation", op)

	entity, err := d.registry.Lookup(entityKey)
	if err != nil {
		return nil, err
	}
	if !entity.Supports(op) {
		return nil, &UnsupportedOperationError{Entity: entityKey, Operation: op}
	}

	start := time.Now()
	result, err := d.execute(ctx, entity, op, args)
	d.recorder.RecordOperation(entityKey, op, time.Since(start), err)
	if err != nil {
		logger.Warn("Operation failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	logger.Debug("Operation completed", "duration", time.Since(start))
	return result, nil
}

func (d *Dispatcher) execute(ctx context.Context, entity *Entity, op Operation, args Args) (*Result, error) {
	result := &Result{Entity: entity.Key, Operation: op, RecordID: args.RecordID}

	if op == OpSearch {
		records, err := d.search.Search(ctx, entity, SearchQuery{
			Query:  args.Query,
			Fields: args.Fields,
			Limit:  args.Limit,
		})
		if err != nil {
			return nil, err
		}
		result.Records = records
		return result, nil
	}

	req, err := BuildRequest(entity, op, args)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpGet:
		record, err := resp.ResultRecord()
		if err != nil {
			return nil, &BackendError{
				Entity:    entity.Key,
				Operation: op,
				RecordID:  args.RecordID,
				Message:   err.Error(),
			}
		}
		// The backend ignores the fields parameter on GET; apply the
		// projection here instead.
		result.Data = maskRecord(record, args.Fields)
	default:
		if payload, ok := resp.Body["result"]; ok {
			result.Data = payload
		} else {
			result.Data = resp.Body
		}
	}
	return result, nil
}

// maskRecord applies a field projection to a single record.
func maskRecord(rec Record, fields []string) Record {
	if len(fields) == 0 {
		return rec
	}
	masked := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			masked[f] = v
		}
	}
	return masked
}
