package agiloft

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend is an httptest server with a working /login endpoint and a
// configurable data handler, tracking call counts for both.
type testBackend struct {
	srv    *httptest.Server
	logins atomic.Int64
	calls  atomic.Int64
}

func newTestBackend(t *testing.T, data http.HandlerFunc) *testBackend {
	t.Helper()
	b := &testBackend{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			n := b.logins.Add(1)
			writeJSON(w, map[string]any{
				"success": true,
				"result": map[string]any{
					"access_token": tokenName(n),
					"expires_in":   15,
				},
			})
			return
		}
		b.calls.Add(1)
		data(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func tokenName(n int64) string {
	return "token-" + string(rune('0'+n))
}

func (b *testBackend) client(opts ...ClientOption) *Client {
	session := newTestSession(b.srv.URL, nil)
	return NewClient(b.srv.URL, session, opts...)
}

func getRequest(id int64) *Request {
	e := testEntity()
	req, _ := BuildRequest(e, OpGet, Args{RecordID: id})
	return req
}

func TestClient_BearerAndLang(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+tokenName(1), r.Header.Get("Authorization"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		assert.Equal(t, "/widget/7", r.URL.Path)
		writeJSON(w, map[string]any{"success": true, "result": map[string]any{"id": 7}})
	})

	resp, err := backend.client().Execute(context.Background(), getRequest(7))
	require.NoError(t, err)

	record, err := resp.ResultRecord()
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.ID())
}

func TestClient_RetryOnAuthFailure(t *testing.T) {
	var rejected atomic.Bool
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if rejected.CompareAndSwap(false, true) {
			http.Error(w, "token expired", http.StatusUnauthorized)
			return
		}
		// The retry must carry a freshly obtained credential.
		assert.Equal(t, "Bearer "+tokenName(2), r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{"success": true, "result": map[string]any{"id": 1}})
	})

	resp, err := backend.client().Execute(context.Background(), getRequest(1))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), backend.calls.Load(), "original request plus exactly one retry")
	assert.Equal(t, int64(2), backend.logins.Load(), "initial login plus one re-authentication")
}

func TestClient_SecondAuthFailureIsFatal(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := backend.client().Execute(context.Background(), getRequest(1))
	require.Error(t, err)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, int64(2), backend.calls.Load(), "no further retries after the second rejection")
}

func TestClient_EmbeddedFailure(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"success": false,
			"message": "Validation failed",
			"errors": []any{
				map[string]any{"message": "company_name: no matching record"},
			},
		})
	})

	_, err := backend.client().Execute(context.Background(), getRequest(3))
	require.Error(t, err)

	var backendErr *BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "widget", backendErr.Entity)
	assert.Equal(t, OpGet, backendErr.Operation)
	assert.Equal(t, int64(3), backendErr.RecordID)
	assert.Contains(t, backendErr.Error(), "Validation failed")
	assert.Contains(t, backendErr.Error(), "no matching record")
}

func TestClient_TransportError(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := backend.client().Execute(context.Background(), getRequest(1))
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
	assert.Equal(t, int64(1), backend.calls.Load(), "server errors are not retried")
}

func TestClient_Timeout(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, map[string]any{"success": true})
	})

	client := backend.client(WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := client.Execute(context.Background(), getRequest(1))
	require.Error(t, err)

	var timeoutErr *TransportTimeoutError
	assert.True(t, errors.As(err, &timeoutErr))
}

func TestResponse_ResultRecord(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		wantID  int64
		wantErr bool
	}{
		{
			name:   "result_wrapper",
			body:   map[string]any{"result": map[string]any{"id": float64(5)}},
			wantID: 5,
		},
		{
			name:   "record_directly",
			body:   map[string]any{"id": float64(9), "name": "x"},
			wantID: 9,
		},
		{
			name:   "one_element_list",
			body:   map[string]any{"result": []any{map[string]any{"id": float64(4)}}},
			wantID: 4,
		},
		{
			name:    "no_record",
			body:    map[string]any{"message": "gone"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Response{StatusCode: 200, Body: tt.body}
			record, err := resp.ResultRecord()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, record.ID())
		})
	}
}
