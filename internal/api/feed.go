package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"speechcraft/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS middleware in front of
	// the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const feedWriteTimeout = 10 * time.Second

// feed streams a user's transcription change events over a websocket. The
// current rows are replayed first as insert events, so a client can build
// its snapshot and then fold live events through the same reduction.
func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	userID, err := h.effectiveUser(r, chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, err, "Failed to open change feed")
		return
	}

	// Subscribe before the snapshot read so no change between the two can
	// be missed. Changes that land inside the snapshot also arrive as
	// events; replay through the reducer converges either way.
	sub := h.hub.Subscribe(userID)
	defer sub.Close()

	snapshot, _, err := h.store.List(r.Context(), domain.HistoryFilter{
		UserID: userID,
		Page:   domain.PageRequest{Page: 1, Limit: domain.MaxPageSize},
	})
	if err != nil {
		respondDomainError(w, err, "Failed to open change feed")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close() //nolint:errcheck

	logger := h.logger.With("user_id", userID)
	logger.Info("change feed opened", "snapshot_size", len(snapshot))

	for i := range snapshot {
		job := snapshot[i]
		ev := domain.ChangeEvent{
			Type:      domain.ChangeInsert,
			UserID:    userID,
			JobID:     job.ID,
			Job:       &job,
			Timestamp: time.Now().UTC(),
		}
		if err := writeEvent(conn, ev); err != nil {
			logger.Warn("change feed write failed", "error", err)
			return
		}
	}

	// Reader goroutine: the client never sends data frames, but reading is
	// what surfaces close frames and dead connections.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			logger.Info("change feed closed by client")
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				logger.Warn("change feed write failed", "error", err)
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev domain.ChangeEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}
