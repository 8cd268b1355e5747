package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gridbanner/gridbanner/internal/poller"
	"github.com/gridbanner/gridbanner/internal/types"
)

func testServer(reloadErr error, reloads *int) *Server {
	return NewServer("127.0.0.1:0", Deps{
		PollStats: func() poller.Stats {
			return poller.Stats{Running: true, LastResult: "no_alert"}
		},
		Settings: func() *types.GlobalSettings { return &types.GlobalSettings{} },
		Current: func() types.PresentationCommand {
			return types.CommandFor(&types.AlertMessage{Signature: "abc", Level: types.Urgent, Summary: "s"})
		},
		Surfaces: func() int { return 2 },
		Logs:     NewLogBuffer(10),
		Reload: func() error {
			if reloads != nil {
				*reloads++
			}
			return reloadErr
		},
		Gatherer: prometheus.NewRegistry(),
	}, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, testServer(nil, nil), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	rec := do(t, testServer(nil, nil), http.MethodGet, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Poll     poller.Stats `json:"poll"`
		Surfaces int          `json:"surfaces"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !body.Poll.Running {
		t.Error("poll.running = false, want true")
	}
	if body.Surfaces != 2 {
		t.Errorf("surfaces = %d, want 2", body.Surfaces)
	}
}

func TestAlert(t *testing.T) {
	t.Parallel()

	rec := do(t, testServer(nil, nil), http.MethodGet, "/alert")
	var cmd types.PresentationCommand
	if err := json.Unmarshal(rec.Body.Bytes(), &cmd); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !cmd.Visible || cmd.Alert == nil || cmd.Alert.Signature != "abc" {
		t.Errorf("command = %+v, want visible alert abc", cmd)
	}
}

func TestReload(t *testing.T) {
	t.Parallel()

	var reloads int
	s := testServer(nil, &reloads)

	if rec := do(t, s, http.MethodGet, "/api/reload"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET reload status = %d, want 405", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/reload"); rec.Code != http.StatusOK {
		t.Errorf("POST reload status = %d, want 200", rec.Code)
	}
	if reloads != 1 {
		t.Errorf("reloads = %d, want 1", reloads)
	}
}

func TestReloadFailure(t *testing.T) {
	t.Parallel()

	s := testServer(errors.New("bad yaml"), nil)
	if rec := do(t, s, http.MethodPost, "/api/reload"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	if rec := do(t, testServer(nil, nil), http.MethodGet, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestLogs(t *testing.T) {
	t.Parallel()

	s := testServer(nil, nil)
	s.deps.Logs.Write([]byte(`{"level":"warn","message":"one"}` + "\n"))
	s.deps.Logs.Write([]byte(`{"level":"info","message":"two"}` + "\n"))

	rec := do(t, s, http.MethodGet, "/api/logs?limit=1")
	var entries []LogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Message != "two" {
		t.Errorf("message = %q, want newest entry", entries[0].Message)
	}
}
