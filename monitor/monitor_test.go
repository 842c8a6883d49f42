package monitor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wfunc/mafiaserver/lobby"
)

var _ lobby.Metrics = (*Monitor)(nil)

func newTestMonitor() *Monitor {
	reg := prometheus.NewRegistry()
	return NewMonitorWithRegistry("mafia", reg, reg)
}

func TestMonitor_LobbyMetrics(t *testing.T) {
	m := newTestMonitor()

	m.LobbyCreated()
	m.LobbyCreated()
	m.LobbyRemoved()
	m.GameStarted()
	m.PhaseAdvanced(lobby.ReasonTimer)
	m.PhaseAdvanced(lobby.ReasonTimer)
	m.PhaseAdvanced(lobby.ReasonAction)
	m.GameFinished("villagers")

	if got := testutil.ToFloat64(m.Metrics().ActiveLobbies); got != 1 {
		t.Errorf("Expected 1 active lobby, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().GamesInProgress); got != 0 {
		t.Errorf("Expected 0 games in progress, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().PhaseAdvances.WithLabelValues(lobby.ReasonTimer)); got != 2 {
		t.Errorf("Expected 2 timer advances, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().GamesFinished.WithLabelValues("villagers")); got != 1 {
		t.Errorf("Expected 1 villager win, got %v", got)
	}
}

func TestMonitor_Handler(t *testing.T) {
	m := newTestMonitor()
	m.IncMessagesReceived()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mafia_messages_received_total 1") {
		t.Errorf("Expected the message counter in the output, got:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	if !strings.Contains(rec.Body.String(), "uptime") {
		t.Error("Expected expvar output to include uptime")
	}
}
