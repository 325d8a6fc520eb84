package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"etfmon/internal/application/port"
	"etfmon/internal/application/service"
	"etfmon/internal/application/usecase/poller"
	"etfmon/internal/domain"
)

// Coordinator is the part of the poller the API needs.
type Coordinator interface {
	Latest() domain.Snapshot
	Portfolio() *domain.Portfolio
	AddTransaction(ctx context.Context, cmd poller.TransactionCommand) (domain.Transaction, error)
}

// Route binds a handler to a method and path.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

type Server struct {
	coord Coordinator
	hub   *Hub
	srv   *http.Server
}

func NewServer(addr string, coord Coordinator, hub *Hub) *Server {
	s := &Server{coord: coord, hub: hub}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the mux with every route wrapped in the request logger.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	routes := []Route{
		{"Health", http.MethodGet, "/healthz", s.health},
		{"Snapshot", http.MethodGet, "/api/snapshot", s.snapshot},
		{"Positions", http.MethodGet, "/api/positions", s.positions},
		{"Position", http.MethodGet, "/api/positions/{key}", s.position},
		{"AddTransaction", http.MethodPost, "/api/transactions", s.addTransaction},
		{"Stream", http.MethodGet, "/ws", s.stream},
	}
	for _, route := range routes {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(requestLogger(route.HandlerFunc, route.Name))
	}
	return router
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("http api listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.hub != nil {
			_ = s.hub.Close()
		}
		return s.srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Str("route", name).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"instruments": s.coord.Portfolio().Len(),
	})
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Latest())
}

type positionsResponse struct {
	Snapshot      string             `json:"snapshot_id"`
	Positions     []service.Position `json:"positions"`
	PurchaseValue string             `json:"purchase_value"`
	CurrentValue  string             `json:"current_value"`
	Gain          string             `json:"gain"`
}

func (s *Server) positions(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Latest()
	positions := service.Valuate(s.coord.Portfolio(), snap)
	purchase, current, gain := service.Totals(positions)
	writeJSON(w, http.StatusOK, positionsResponse{
		Snapshot:      snap.ID,
		Positions:     positions,
		PurchaseValue: purchase.StringFixed(2),
		CurrentValue:  current.StringFixed(2),
		Gain:          gain.StringFixed(2),
	})
}

func (s *Server) position(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	inst, ok := s.coord.Portfolio().Find(key)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrInstrumentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, service.ValuateInstrument(inst, s.coord.Latest()))
}

func (s *Server) addTransaction(w http.ResponseWriter, r *http.Request) {
	var cmd poller.TransactionCommand
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tx, err := s.coord.AddTransaction(r.Context(), cmd)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, tx)
	case errors.Is(err, domain.ErrInstrumentNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrInvalidCommand):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusNotFound, errors.New("stream disabled"))
		return
	}
	var hello *port.Event
	if snap := s.coord.Latest(); snap.ID != "" {
		evt := port.NewSnapshotEvent(snap)
		hello = &evt
	}
	s.hub.serve(w, r, hello)
}
