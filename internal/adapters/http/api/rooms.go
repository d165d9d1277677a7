package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/playerhunt/internal/adapters/repository"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/types"
)

// RoomDependencies defines the room operations used by the handlers.
type RoomDependencies interface {
	CreateRoom(ctx context.Context, creator string) (repository.Room, error)
	JoinRoom(ctx context.Context, code string) (repository.Room, error)
	Submit(ctx context.Context, room, player, name string) (types.Outcome, error)
	Collection(ctx context.Context, room string) ([]model.CollectionEntry, error)
	ClearRoom(ctx context.Context, room string) error
	RoomStats(ctx context.Context, room string) (types.RoomStats, error)
}

// RoomsHandler handles room requests.
type RoomsHandler struct {
	deps RoomDependencies
}

// NewRoomsHandler creates a new rooms handler.
func NewRoomsHandler(deps RoomDependencies) *RoomsHandler {
	return &RoomsHandler{deps: deps}
}

type createRoomRequest struct {
	Creator string `json:"creator"`
}

type submitRequest struct {
	Player string `json:"player"`
	Name   string `json:"name"`
}

func (s submitRequest) validate() error {
	switch {
	case strings.TrimSpace(s.Player) == "":
		return errors.New("missing player")
	case strings.TrimSpace(s.Name) == "":
		return errors.New("missing name")
	}
	return nil
}

// HandleCreateRoom handles POST /rooms requests.
func (h *RoomsHandler) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_room"
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	room, err := h.deps.CreateRoom(r.Context(), req.Creator)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRoomResponse(room))
}

// HandleGetRoom handles GET /rooms/{code} requests.
func (h *RoomsHandler) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_room"
	room, err := h.deps.JoinRoom(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoomResponse(room))
}

// HandleSubmit handles POST /rooms/{code}/athletes requests. A name that
// cannot be resolved is a 200 with status "not_found".
func (h *RoomsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Submit(r.Context(), r.PathValue("code"), req.Player, req.Name)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	status := http.StatusOK
	if out.Status == types.StatusAdded {
		status = http.StatusCreated
	}
	writeJSON(w, status, out)
}

// HandleCollection handles GET /rooms/{code}/athletes requests.
func (h *RoomsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.collection"
	code := r.PathValue("code")
	entries, err := h.deps.Collection(r.Context(), code)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	resp := collectionResponse{Room: repository.NormalizeRoomCode(code), Athletes: make([]entryResponse, len(entries))}
	for i, e := range entries {
		resp.Athletes[i] = newEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleClear handles DELETE /rooms/{code}/athletes requests.
func (h *RoomsHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear"
	if err := h.deps.ClearRoom(r.Context(), r.PathValue("code")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRoomStats handles GET /rooms/{code}/stats requests.
func (h *RoomsHandler) HandleRoomStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.room_stats"
	stats, err := h.deps.RoomStats(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
