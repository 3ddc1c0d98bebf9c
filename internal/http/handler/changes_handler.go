package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/realtime"
)

const heartbeatInterval = 25 * time.Second

// ChangeSubscriber opens change subscriptions. realtime.Hub satisfies it.
type ChangeSubscriber interface {
	Subscribe(table string) *realtime.Subscription
}

// ChangesHandler streams backend change notifications to clients as
// server-sent events
type ChangesHandler struct {
	hub       ChangeSubscriber
	heartbeat time.Duration
	logger    *zap.Logger
}

func NewChangesHandler(hub ChangeSubscriber, logger *zap.Logger) *ChangesHandler {
	return &ChangesHandler{
		hub:       hub,
		heartbeat: heartbeatInterval,
		logger:    logger,
	}
}

// Stream godoc
// @Summary Live change stream
// @Description Server-sent events, one `change` event per row change with data {"table","op","at"}.
// @Description op RESYNC means changes may have been missed and the table should be refetched.
// @Description EventSource clients may pass the token as access_token.
// @Tags Changes
// @Produce text/event-stream
// @Param tables query string false "Comma separated tables, default all"
// @Success 200 {object} realtime.Event
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /changes [get]
func (h *ChangesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	tables, err := parseTables(r.URL.Query().Get("tables"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.hub.Subscribe("")
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	h.logger.Debug("change stream opened", zap.Strings("tables", tables))

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("change stream closed")
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			if len(tables) > 0 && !slices.Contains(tables, ev.Table) {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("failed to encode change event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// parseTables returns nil for all tables
func parseTables(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tables []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !slices.Contains(domain.Tables, part) {
			return nil, fmt.Errorf("unknown table %q", part)
		}
		tables = append(tables, part)
	}
	return tables, nil
}
