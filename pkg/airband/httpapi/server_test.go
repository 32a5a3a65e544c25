package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/airbandrx/airband/pkg/airband/activity"
	"github.com/airbandrx/airband/pkg/airband/bus"
	"github.com/airbandrx/airband/pkg/airband/memory"
	"github.com/airbandrx/airband/pkg/airband/recording"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	dir := t.TempDir()

	b := bus.New(bus.State{
		FrequencyHz:        121_500_000,
		GainDB:             30,
		VolumePct:          50,
		SquelchThresholdDB: -60,
	})
	rec := recording.NewManager(dir, 48000, logger)
	act := activity.NewLogger("", logger)
	mem := memory.NewManager(filepath.Join(dir, "memories.json"), logger)
	return NewServer(0, b, rec, act, mem, logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	return w
}

func TestStateEndpoint(t *testing.T) {
	s := testServer(t)
	w := get(t, s, "/api/state")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp stateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.FrequencyHz != 121_500_000 || resp.GainDB != 30 || resp.Volume != 50 {
		t.Fatalf("unexpected state: %+v", resp)
	}
}

func TestRecordingsEndpointEmpty(t *testing.T) {
	s := testServer(t)
	w := get(t, s, "/api/recordings")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var infos []recording.Info
	if err := json.Unmarshal(w.Body.Bytes(), &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected no recordings, got %d", len(infos))
	}
}

func TestActivityEndpoint(t *testing.T) {
	s := testServer(t)
	t0 := time.Now()
	s.activity.Start(121_500_000, -50, t0)
	s.activity.End(t0.Add(2 * time.Second))

	w := get(t, s, "/api/activity")
	var resp struct {
		Stats  activity.Stats    `json:"stats"`
		Recent []activity.Record `json:"recent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stats.Count != 1 || len(resp.Recent) != 1 {
		t.Fatalf("stats = %+v recent = %d", resp.Stats, len(resp.Recent))
	}
}

func TestMemoriesEndpoint(t *testing.T) {
	s := testServer(t)
	w := get(t, s, "/api/memories")
	var entries map[int]memory.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if _, ok := entries[4]; !ok {
		t.Fatal("expected default emergency preset in slot 4")
	}
}

func TestUnknownPath(t *testing.T) {
	s := testServer(t)
	if w := get(t, s, "/api/nope"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
