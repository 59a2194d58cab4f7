package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasterloc/rasterloc/internal/detect"
	"github.com/rasterloc/rasterloc/internal/geometry"
	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/testutil"
)

func dialBatch(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	srv := testServer(t)
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/batch"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, func() {
		_ = conn.Close()
		ts.Close()
	}
}

func readProgress(t *testing.T, conn *websocket.Conn) BatchProgress {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var msg BatchProgress
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBatchWebSocketJob(t *testing.T) {
	dir := t.TempDir()

	cfg := testutil.DefaultTextImageConfig()
	img := testutil.GenerateTextImage(cfg)
	asset := filepath.Join(dir, "toolbar.png")
	testutil.SaveImage(t, img, asset)
	require.NoError(t, region.WriteFile(detect.SidecarPath(asset), []region.TextRegion{{
		Text: "Save all open documents",
		Polygon: []geometry.Point{
			{X: 8, Y: 6}, {X: 150, Y: 6}, {X: 150, Y: 30}, {X: 8, Y: 30},
		},
		Confidence: 0.9,
	}}, 200, 60))

	conn, cleanup := dialBatch(t)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(BatchRequest{
		Assets:    []string{asset},
		OutputDir: filepath.Join(dir, "localized"),
	}))

	progress := readProgress(t, conn)
	require.Equal(t, "progress", progress.Type)
	assert.Equal(t, "toolbar", progress.AssetID)
	assert.Equal(t, "localized", progress.Status)
	assert.Equal(t, 1, progress.Index)
	assert.Equal(t, 1, progress.Total)
	assert.NotEmpty(t, progress.JobID)

	completed := readProgress(t, conn)
	require.Equal(t, "completed", completed.Type)
	assert.Equal(t, 1, completed.Localized)
	assert.Equal(t, 0, completed.Failed)
	assert.FileExists(t, filepath.Join(dir, "localized", "toolbar.png"))
}

func TestBatchWebSocketReportsPerAssetFailure(t *testing.T) {
	dir := t.TempDir()

	img := testutil.GenerateTextImage(testutil.DefaultTextImageConfig())
	orphan := filepath.Join(dir, "orphan.png") // no sidecar
	testutil.SaveImage(t, img, orphan)

	conn, cleanup := dialBatch(t)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(BatchRequest{
		Assets:    []string{orphan},
		OutputDir: filepath.Join(dir, "localized"),
	}))

	progress := readProgress(t, conn)
	require.Equal(t, "progress", progress.Type)
	assert.Equal(t, "failed", progress.Status)
	assert.Contains(t, progress.Error, "no detector output")

	completed := readProgress(t, conn)
	require.Equal(t, "completed", completed.Type)
	assert.Equal(t, 1, completed.Failed)
}

func TestBatchWebSocketRejectsEmptyRequest(t *testing.T) {
	conn, cleanup := dialBatch(t)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(BatchRequest{}))

	msg := readProgress(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "no assets")
}
