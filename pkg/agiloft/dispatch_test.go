package agiloft

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, backend *testBackend, opts ...DispatcherOption) *Dispatcher {
	t.Helper()
	reg, err := NewRegistry(testEntity(), searchEntity())
	require.NoError(t, err)
	return NewDispatcher(reg, backend.client(), opts...)
}

func TestDispatcher_UnknownEntity(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("registry failures must not reach the backend")
	})
	d := newTestDispatcher(t, backend)

	_, err := d.Execute(context.Background(), "gizmo", OpSearch, Args{})
	require.Error(t, err)

	var unknown *UnknownEntityError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "gizmo", unknown.Key)
	assert.ElementsMatch(t, []string{"widget", "deal"}, unknown.Valid)
	assert.Equal(t, int64(0), backend.calls.Load())
	assert.Equal(t, int64(0), backend.logins.Load(), "no login for a doomed call")
}

func TestDispatcher_UnsupportedOperation(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("capability failures must not reach the backend")
	})
	d := newTestDispatcher(t, backend)

	// testEntity only declares search, get and create.
	_, err := d.Execute(context.Background(), "widget", OpDelete, Args{RecordID: 1})
	require.Error(t, err)

	var unsupported *UnsupportedOperationError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "widget", unsupported.Entity)
	assert.Equal(t, OpDelete, unsupported.Operation)
	assert.Equal(t, int64(0), backend.calls.Load())
}

func TestDispatcher_SearchEndToEnd(t *testing.T) {
	// "Acme" is free text for the two-field deal entity: two sub-queries,
	// record 7 matches only the second field and comes back exactly once.
	backend := newSearchBackend(t, map[string][]Record{
		"title~='Acme'":   {},
		"company~='Acme'": {{"id": float64(7), "company": "Acme Corp"}},
	}, nil)
	d := newTestDispatcher(t, backend)

	result, err := d.Execute(context.Background(), "deal", OpSearch, Args{Query: "Acme"})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, int64(7), result.Records[0].ID())
	assert.Equal(t, "deal", result.Entity)
	assert.Equal(t, OpSearch, result.Operation)
	assert.Equal(t, int64(2), backend.calls.Load())
}

func TestDispatcher_GetMasksFields(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		// The backend returns the full record regardless of projection.
		writeJSON(w, map[string]any{"success": true, "result": map[string]any{
			"id":    float64(7),
			"name":  "Widget A",
			"owner": "Acme",
		}})
	})
	d := newTestDispatcher(t, backend)

	result, err := d.Execute(context.Background(), "widget", OpGet, Args{
		RecordID: 7,
		Fields:   []string{"id", "name"},
	})
	require.NoError(t, err)

	record, ok := result.Data.(Record)
	require.True(t, ok)
	assert.Equal(t, Record{"id": float64(7), "name": "Widget A"}, record)
}

func TestDispatcher_GetWithoutProjection(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "result": map[string]any{
			"id":   float64(7),
			"name": "Widget A",
		}})
	})
	d := newTestDispatcher(t, backend)

	result, err := d.Execute(context.Background(), "widget", OpGet, Args{RecordID: 7})
	require.NoError(t, err)

	record, ok := result.Data.(Record)
	require.True(t, ok)
	assert.Equal(t, "Widget A", record["name"])
}

func TestDispatcher_CreateReturnsResult(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/widget", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, ":Acme", body["owner"], "the builder applies the relation marker")

		writeJSON(w, map[string]any{"success": true, "result": map[string]any{"id": float64(42)}})
	})
	d := newTestDispatcher(t, backend)

	result, err := d.Execute(context.Background(), "widget", OpCreate, Args{
		Data: map[string]any{"name": "Widget A", "owner": "Acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(42)}, result.Data)
}

func TestDispatcher_InvalidArgumentsStayLocal(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("builder failures must not reach the backend")
	})
	d := newTestDispatcher(t, backend)

	_, err := d.Execute(context.Background(), "widget", OpGet, Args{})
	require.Error(t, err)

	var invalid *InvalidArgumentError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, int64(0), backend.calls.Load())
}

func TestDispatcher_BackendFailurePropagates(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "message": "record is locked"})
	})
	d := newTestDispatcher(t, backend)

	_, err := d.Execute(context.Background(), "widget", OpGet, Args{RecordID: 9})
	require.Error(t, err)

	var backendErr *BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "widget", backendErr.Entity)
	assert.Equal(t, int64(9), backendErr.RecordID)
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []recordedOp
}

type recordedOp struct {
	entity string
	op     Operation
	err    error
}

func (c *captureRecorder) RecordOperation(entity string, op Operation, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, recordedOp{entity: entity, op: op, err: err})
}

func TestDispatcher_RecorderObservesOutcomes(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "result": map[string]any{"id": float64(1)}})
	})
	rec := &captureRecorder{}
	d := newTestDispatcher(t, backend, WithRecorder(rec))

	_, err := d.Execute(context.Background(), "widget", OpGet, Args{RecordID: 1})
	require.NoError(t, err)
	_, err = d.Execute(context.Background(), "widget", OpGet, Args{})
	require.Error(t, err)

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "widget", rec.entries[0].entity)
	assert.Equal(t, OpGet, rec.entries[0].op)
	assert.NoError(t, rec.entries[0].err)
	assert.Error(t, rec.entries[1].err)
}
