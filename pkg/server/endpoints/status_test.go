package endpoints

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHandleStatus(t *testing.T) {
	t.Setenv("GATEWAY_VERSION_DISPLAY", "1.2.3")

	w := httptest.NewRecorder()
	handleStatus()(w, newRequest("GET", "/", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, StatusResponse{Service: "gateway-admin", Version: "1.2.3"}, decodeBody[StatusResponse](t, w))
}

func TestHandleHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		health := &MockHealthStore{}
		health.On("CheckConnectivity", mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		handleHealth(health)(w, newRequest("GET", "/health", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decodeBody[HealthResponse](t, w).Status)
	})

	t.Run("database down", func(t *testing.T) {
		health := &MockHealthStore{}
		health.On("CheckConnectivity", mock.Anything).Return(errors.New("dial tcp: refused"))

		w := httptest.NewRecorder()
		handleHealth(health)(w, newRequest("GET", "/health", ""))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeBody[HealthResponse](t, w)
		assert.Equal(t, "error", resp.Status)
		assert.NotContains(t, resp.Error, "dial tcp")
	})
}

func TestHandleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	w := httptest.NewRecorder()
	handleMetrics(reg).ServeHTTP(w, newRequest("GET", "/metrics", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_total 1")
}

func TestHandleGroupMemberships(t *testing.T) {
	groups := &MockGroupsStore{}
	groups.On("GroupsForUser", mock.Anything, "gw1", "alice@gw1").Return([]string{"admins", "g1"}, nil)

	w := httptest.NewRecorder()
	handleGroupMemberships(groups)(w, newRequest("GET", "/groups/memberships?gatewayId=gw1&userId=alice@gw1", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"admins", "g1"}, decodeBody[MembershipsResponse](t, w).Groups)

	w = httptest.NewRecorder()
	handleGroupMemberships(groups)(w, newRequest("GET", "/groups/memberships?gatewayId=gw1", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
