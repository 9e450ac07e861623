package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCycleTransition("start")
	m.ObserveCycleTransition("end")
	m.ObserveCycleTransition("end")
	m.ObserveMonthlyData(3)
	m.ObservePayments(2, 1)
	m.ObserveWinners(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycleTransitions.WithLabelValues("start")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycleTransitions.WithLabelValues("end")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.monthlyDataCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.paymentPlaceholder))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.paymentsRecorded.WithLabelValues("paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentsRecorded.WithLabelValues("unpaid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.winnersRecorded))
}

func TestRequestStarted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))

	done("GET", "/api/v1/programs", http.StatusOK, 0.01)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/programs", "200")))
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveWinners(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "gold_ledger_ledger_winners_recorded_total 1"))
}
