package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/pathlight/internal/service"
)

const eventBuffer = 64

// handleEvents streams explorer events as server-sent events. A slow client
// loses events instead of stalling the explorer.
func (h *APIHandlers) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events := make(chan service.Event, eventBuffer)
	unsubscribe := h.explorer.Subscribe(func(ev service.Event) {
		select {
		case events <- ev:
		default:
			h.logger.Warn("event stream lagging, dropping event", "kind", ev.Kind)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	view := h.explorer.View()
	if err := writeEvent(w, service.EventView, view); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev := <-events:
			if err := writeEvent(w, ev.Kind, eventPayload(ev)); err != nil {
				h.logger.Debug("event stream closed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func eventPayload(ev service.Event) any {
	switch {
	case ev.View != nil:
		return ev.View
	case ev.Layout != nil:
		return ev.Layout
	case ev.Playlist != nil:
		return toPlaylistResponse(*ev.Playlist)
	default:
		return struct{}{}
	}
}

func writeEvent(w http.ResponseWriter, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), kind, data)
	return err
}
