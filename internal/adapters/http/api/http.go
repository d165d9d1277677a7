// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/playerhunt/internal/adapters/repository"
	service "github.com/okian/playerhunt/internal/app"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RoomDependencies
	LookupDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	roomsHandler  *RoomsHandler
	lookupHandler *LookupHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		roomsHandler:  NewRoomsHandler(deps),
		lookupHandler: NewLookupHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /rooms", MetricsMiddleware(s.roomsHandler.HandleCreateRoom, "rooms"))
	mux.HandleFunc("GET /rooms/{code}", MetricsMiddleware(s.roomsHandler.HandleGetRoom, "room"))
	mux.HandleFunc("POST /rooms/{code}/athletes", MetricsMiddleware(s.roomsHandler.HandleSubmit, "submit"))
	mux.HandleFunc("GET /rooms/{code}/athletes", MetricsMiddleware(s.roomsHandler.HandleCollection, "collection"))
	mux.HandleFunc("DELETE /rooms/{code}/athletes", MetricsMiddleware(s.roomsHandler.HandleClear, "clear"))
	mux.HandleFunc("GET /rooms/{code}/stats", MetricsMiddleware(s.roomsHandler.HandleRoomStats, "room_stats"))

	mux.HandleFunc("GET /lookup", MetricsMiddleware(s.lookupHandler.HandleLookup, "lookup"))
	mux.HandleFunc("POST /lookup/batch", MetricsMiddleware(s.lookupHandler.HandleBatch, "lookup_batch"))
	mux.HandleFunc("GET /sports", MetricsMiddleware(s.lookupHandler.HandleSports, "sports"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type roomResponse struct {
	Code      string `json:"code"`
	Creator   string `json:"creator"`
	CreatedAt string `json:"created_at"`
}

func newRoomResponse(r repository.Room) roomResponse {
	return roomResponse{Code: r.Code, Creator: r.Creator, CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339)}
}

type entryResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Sport          string  `json:"sport"`
	Country        *string `json:"country"`
	MatchedName    string  `json:"matched_name"`
	AddedBy        string  `json:"added_by"`
	AddedAt        string  `json:"added_at"`
	ChallengeBonus int     `json:"challenge_bonus"`
	Points         int     `json:"points"`
}

func newEntryResponse(e model.CollectionEntry) entryResponse {
	out := entryResponse{
		ID:             e.ID,
		Name:           e.Name,
		Sport:          e.Sport,
		MatchedName:    e.MatchedName,
		AddedBy:        e.AddedBy,
		AddedAt:        e.AddedAt.UTC().Format(time.RFC3339),
		ChallengeBonus: e.ChallengeBonus,
		Points:         e.Points,
	}
	if e.Country != "" {
		out.Country = &e.Country
	}
	return out
}

type collectionResponse struct {
	Room     string          `json:"room"`
	Athletes []entryResponse `json:"athletes"`
}

type lookupResponse struct {
	Input   string         `json:"input"`
	Found   bool           `json:"found"`
	Athlete *types.Athlete `json:"athlete,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps store and service failures to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room_not_found", Wrap(op, err))
	case isInvalid(err):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "timeout", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// invalidInput lists the error kinds the caller can fix by changing the
// request.
var invalidInput = []error{ //nolint:gochecknoglobals // immutable table
	service.ErrInvalidInput,
	repository.ErrInvalidRoom,
	repository.ErrInvalidName,
	ErrBadRequest,
}

func isInvalid(err error) bool {
	for _, kind := range invalidInput {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
