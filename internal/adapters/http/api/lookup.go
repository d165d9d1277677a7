package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/playerhunt/internal/domain/types"
)

// LookupDependencies defines room-independent resolution operations.
type LookupDependencies interface {
	Lookup(ctx context.Context, name string) (types.Athlete, bool)
	LookupBatch(ctx context.Context, names []string) ([]types.LookupResult, error)
	SupportedSports() []string
}

// LookupHandler handles lookup requests.
type LookupHandler struct {
	deps LookupDependencies
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(deps LookupDependencies) *LookupHandler {
	return &LookupHandler{deps: deps}
}

type batchRequest struct {
	Names []string `json:"names"`
}

type batchResponse struct {
	Results []types.LookupResult `json:"results"`
}

type sportsResponse struct {
	Sports []string `json:"sports"`
}

// HandleLookup handles GET /lookup?name= requests.
func (h *LookupHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	const op = "api.lookup"
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing name")))
		return
	}
	resp := lookupResponse{Input: name}
	if a, ok := h.deps.Lookup(r.Context(), name); ok {
		resp.Found = true
		resp.Athlete = &a
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleBatch handles POST /lookup/batch requests.
func (h *LookupHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.lookup_batch"
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Names) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing names")))
		return
	}
	results, err := h.deps.LookupBatch(r.Context(), req.Names)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

// HandleSports handles GET /sports requests.
func (h *LookupHandler) HandleSports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sportsResponse{Sports: h.deps.SupportedSports()})
}
