package server

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
)

func TestMetrics_RecordOperation(t *testing.T) {
	m := NewMetrics()

	m.RecordOperation("contract", agiloft.OpSearch, 120*time.Millisecond, nil)
	m.RecordOperation("contract", agiloft.OpSearch, 80*time.Millisecond, nil)
	m.RecordOperation("contract", agiloft.OpGet, 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.operations.WithLabelValues("contract", "search", "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.operations.WithLabelValues("contract", "get", "error")))
	assert.Equal(t, float64(0),
		testutil.ToFloat64(m.operations.WithLabelValues("contract", "get", "success")))
}

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.RecordOperation("company", agiloft.OpCreate, 50*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "agiloft_operations_total")
	assert.Contains(t, body, "agiloft_operation_duration_seconds")
	assert.Contains(t, body, `entity="company"`)
}
