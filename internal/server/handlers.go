package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/playlist"
	"github.com/vanshika/pathlight/internal/service"
)

// APIHandlers exposes HTTP handlers for the explorer API.
type APIHandlers struct {
	logger    *slog.Logger
	explorer  *service.Explorer
	heartbeat time.Duration
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, explorer *service.Explorer) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		explorer:  explorer,
		heartbeat: 15 * time.Second,
	}
}

type nodeRequest struct {
	ID string `json:"id"`
}

type spacingRequest struct {
	Spacing int `json:"spacing"`
}

type playlistRequest struct {
	Seed      string `json:"seed"`
	Count     int    `json:"count"`
	Algorithm string `json:"algorithm"`
	Graph     string `json:"graph,omitempty"`
}

type playlistResponse struct {
	State     domain.PlaylistState `json:"state"`
	Algorithm domain.Algorithm     `json:"algorithm,omitempty"`
	Items     []string             `json:"items"`
	Status    string               `json:"status"`
}

type nodesResponse struct {
	Count int      `json:"count"`
	Nodes []string `json:"nodes"`
}

func toPlaylistResponse(res domain.PlaylistResult) playlistResponse {
	items := res.Items
	if items == nil {
		items = []string{}
	}
	return playlistResponse{
		State:     res.State,
		Algorithm: res.Algorithm,
		Items:     items,
		Status:    res.Status,
	}
}

func (h *APIHandlers) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, h.explorer.View())
}

func (h *APIHandlers) handleNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	ids := h.explorer.NodeIDs()
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, nodesResponse{Count: len(ids), Nodes: ids})
}

func (h *APIHandlers) handleSelect(w http.ResponseWriter, r *http.Request) {
	h.nodeAction(w, r, h.explorer.Select)
}

func (h *APIHandlers) handleOrigin(w http.ResponseWriter, r *http.Request) {
	h.nodeAction(w, r, h.explorer.SelectOrigin)
}

func (h *APIHandlers) handleDestination(w http.ResponseWriter, r *http.Request) {
	h.nodeAction(w, r, h.explorer.SelectDestination)
}

func (h *APIHandlers) handleHover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req nodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.explorer.Hover(strings.TrimSpace(req.ID)); err != nil {
		h.writeNodeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.explorer.View())
}

func (h *APIHandlers) nodeAction(w http.ResponseWriter, r *http.Request, action func(string) error) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req nodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := action(id); err != nil {
		h.writeNodeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.explorer.View())
}

func (h *APIHandlers) writeNodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownNode):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotLoaded):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("node action failed", "error", err)
		writeError(w, http.StatusInternalServerError, "node action failed")
	}
}

func (h *APIHandlers) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	h.explorer.Clear()
	respondJSON(w, http.StatusOK, h.explorer.View())
}

func (h *APIHandlers) handleSpacing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var req spacingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	h.explorer.SetSpacing(req.Spacing)
	respondJSON(w, http.StatusOK, h.explorer.View())
}

func (h *APIHandlers) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.explorer.Load(r.Context()); err != nil {
		switch {
		case errors.Is(err, service.ErrLoadSuperseded):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrClosed):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.logger.Error("graph reload failed", "error", err)
			writeError(w, http.StatusBadGateway, domain.Describe(err))
		}
		return
	}
	respondJSON(w, http.StatusOK, h.explorer.View())
}

func (h *APIHandlers) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, toPlaylistResponse(h.explorer.CurrentPlaylist()))
	case http.MethodPost:
		h.createPlaylist(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	alg, err := domain.ParseAlgorithm(req.Algorithm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var graph domain.GraphContext
	if req.Graph != "" {
		if graph, err = domain.ParseGraphContext(req.Graph); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := h.explorer.Playlist(r.Context(), domain.PlaylistRequest{
		Graph:     graph,
		Seed:      req.Seed,
		Count:     req.Count,
		Algorithm: alg,
	})
	if errors.Is(err, playlist.ErrSuperseded) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toPlaylistResponse(result))
}

func (h *APIHandlers) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	ack, err := h.explorer.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, domain.Describe(err))
		return
	}
	if ack == nil {
		ack = map[string]any{}
	}
	respondJSON(w, http.StatusOK, ack)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
