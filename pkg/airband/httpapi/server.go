package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/airbandrx/airband/pkg/airband/activity"
	"github.com/airbandrx/airband/pkg/airband/bus"
	"github.com/airbandrx/airband/pkg/airband/memory"
	"github.com/airbandrx/airband/pkg/airband/recording"
)

// Server exposes a read-only JSON view of the receiver over HTTP: tuner
// and squelch state, recorded files, transmission activity, and stored
// frequency presets.
type Server struct {
	bus        *bus.Bus
	recordings *recording.Manager
	activity   *activity.Logger
	memories   *memory.Manager
	logger     zerolog.Logger
	srv        *http.Server
}

func NewServer(port int, b *bus.Bus, rec *recording.Manager, act *activity.Logger, mem *memory.Manager, logger zerolog.Logger) *Server {
	s := &Server{
		bus:        b,
		recordings: rec,
		activity:   act,
		memories:   mem,
		logger:     logger.With().Str("component", "httpapi").Logger(),
	}

	handler := httprouter.New()
	handler.GET("/api/state", s.handleState)
	handler.GET("/api/recordings", s.handleRecordings)
	handler.GET("/api/activity", s.handleActivity)
	handler.GET("/api/memories", s.handleMemories)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}
	return s
}

// Run serves until the listener fails or Stop is called.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("status API listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("encoding response")
	}
}

type stateResponse struct {
	FrequencyHz       int       `json:"frequency_hz"`
	GainDB            int       `json:"gain_db"`
	Volume            int       `json:"volume"`
	SquelchThreshold  float64   `json:"squelch_threshold_db"`
	SquelchOpen       bool      `json:"squelch_open"`
	VOXEnabled        bool      `json:"vox_enabled"`
	RSSIdB            float64   `json:"rssi_db"`
	Recording         bool      `json:"recording"`
	TransmissionLive  bool      `json:"transmission_live"`
	Time              time.Time `json:"time"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st := s.bus.Snapshot()
	s.writeJSON(w, stateResponse{
		FrequencyHz:      st.FrequencyHz,
		GainDB:           st.GainDB,
		Volume:           st.VolumePct,
		SquelchThreshold: st.SquelchThresholdDB,
		SquelchOpen:      st.SquelchOpen,
		VOXEnabled:       st.VOXEnabled,
		RSSIdB:           st.RSSIdB,
		Recording:        st.Recording,
		TransmissionLive: s.activity.Active(),
		Time:             time.Now().UTC(),
	})
}

func (s *Server) handleRecordings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	infos, err := s.recordings.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, infos)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.writeJSON(w, struct {
		Stats  activity.Stats    `json:"stats"`
		Recent []activity.Record `json:"recent"`
	}{
		Stats:  s.activity.Statistics(),
		Recent: s.activity.Recent(),
	})
}

func (s *Server) handleMemories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.writeJSON(w, s.memories.Entries())
}
