package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"

	"github.com/rasterloc/rasterloc/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// BatchRequest starts a batch job over server-side asset paths. Each asset
// needs a detector sidecar next to it.
type BatchRequest struct {
	Assets    []string `json:"assets"`
	OutputDir string   `json:"output_dir"`
}

// BatchProgress is streamed once per asset and once at job completion.
type BatchProgress struct {
	Type      string  `json:"type"` // "progress", "completed", "error"
	JobID     string  `json:"job_id,omitempty"`
	AssetID   string  `json:"asset_id,omitempty"`
	Status    string  `json:"status,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Index     int     `json:"index,omitempty"`
	Total     int     `json:"total,omitempty"`
	Localized int     `json:"localized,omitempty"`
	Failed    int     `json:"failed,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// batchWebSocketHandler streams per-asset progress for a batch job.
func (s *Server) batchWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to websocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("websocket connection established", "remote", getClientIP(r))
	s.handleBatchConnection(r.Context(), conn)
}

// handleBatchConnection processes batch requests from one connection.
func (s *Server) handleBatchConnection(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Keep the connection alive while a long batch runs.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.runBatchJob(ctx, conn, data)
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		}
	}
}

// runBatchJob localizes the requested assets, sending one progress message
// per asset. Per-asset failures are reported and do not abort the job.
func (s *Server) runBatchJob(ctx context.Context, conn *websocket.Conn, data []byte) {
	var req BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendBatchMessage(conn, BatchProgress{Type: "error", Error: fmt.Sprintf("invalid batch request: %v", err)})
		return
	}
	if len(req.Assets) == 0 {
		s.sendBatchMessage(conn, BatchProgress{Type: "error", Error: "no assets provided"})
		return
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = "output/localized"
	}

	loc, err := s.newLocalizer(outDir)
	if err != nil {
		s.sendBatchMessage(conn, BatchProgress{Type: "error", Error: fmt.Sprintf("pipeline init failed: %v", err)})
		return
	}
	defer func() { _ = loc.Close() }()

	jobID := uuid.Must(uuid.NewV4()).String()
	total := len(req.Assets)
	localized, failed := 0, 0

	start := time.Now()
	for i, asset := range req.Assets {
		if err := ctx.Err(); err != nil {
			s.sendBatchMessage(conn, BatchProgress{Type: "error", JobID: jobID, Error: err.Error()})
			return
		}

		msg := BatchProgress{
			Type:     "progress",
			JobID:    jobID,
			Index:    i + 1,
			Total:    total,
			Progress: float64(i+1) / float64(total),
		}

		res, err := loc.ProcessAsset(ctx, asset)
		if err != nil {
			failed++
			localizeRequestsTotal.WithLabelValues("websocket_batch", "error").Inc()
			msg.AssetID = asset
			msg.Status = "failed"
			msg.Error = err.Error()
		} else {
			if res.Status == pipeline.StatusLocalized {
				localized++
			}
			localizeRequestsTotal.WithLabelValues("websocket_batch", "success").Inc()
			regionsLocalized.WithLabelValues("websocket_batch").Observe(float64(res.Strings))
			msg.AssetID = res.AssetID
			msg.Status = string(res.Status)
			msg.Reason = res.Reason
		}
		s.sendBatchMessage(conn, msg)
	}
	localizeDuration.WithLabelValues("websocket_batch").Observe(time.Since(start).Seconds())

	s.sendBatchMessage(conn, BatchProgress{
		Type:      "completed",
		JobID:     jobID,
		Total:     total,
		Localized: localized,
		Failed:    failed,
		Progress:  1.0,
	})
}

// sendBatchMessage sends a progress message over the connection.
func (s *Server) sendBatchMessage(conn *websocket.Conn, msg BatchProgress) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal websocket message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to send websocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
