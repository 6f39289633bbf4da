package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/sandbox"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *RestServer
	bus    eventbus.EventBus
	pub    *sandbox.Publisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bus := eventbus.NewMemoryBus(64)
	pub := sandbox.NewPublisher(bus, 64)
	session := sandbox.NewSession(block.MustDefaultCatalog(), sandbox.Options{
		Engine:    worldOptions(),
		Publisher: pub,
	})

	reg := prometheus.NewRegistry()
	rs := NewRestServer(Config{
		Session:    session,
		Bus:        bus,
		Registerer: reg,
		Gatherer:   reg,
	})
	t.Cleanup(func() {
		pub.Close()
		_ = bus.Close()
	})
	return &testEnv{server: rs, bus: bus, pub: pub}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const groundClick = `{"down":{"position":{"x":10,"y":10},"hit":{"surface":"ground","point":{"x":0.5,"y":0,"z":0.5},"distance":3}}}`

func TestRestServer_Health(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[HealthReport](t, w)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 0, body.Sandbox.Blocks)
	assert.True(t, body.Sandbox.PublishEnabled)
	assert.NotEmpty(t, body.Uptime)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	require.Equal(t, http.StatusOK, env.do(t, "POST", "/api/pointer/click", groundClick).Code)
	body = decode[HealthReport](t, env.do(t, "GET", "/health", ""))
	assert.Equal(t, 1, body.Sandbox.Blocks)
	assert.Equal(t, interaction.StateIdle, body.Sandbox.State)
	assert.Equal(t, uint64(0), body.Sandbox.EventsDropped)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "42с", formatUptime(42*time.Second))
	assert.Equal(t, "3м 5с", formatUptime(3*time.Minute+5*time.Second))
	assert.Equal(t, "2ч 0м 1с", formatUptime(2*time.Hour+time.Second))
	assert.Equal(t, "1д 1ч 0м 0с", formatUptime(25*time.Hour))
}

func TestRestServer_Variants(t *testing.T) {
	env := newTestEnv(t)

	resp := decode[struct {
		Success bool                  `json:"success"`
		Data    []sandbox.VariantInfo `json:"data"`
	}](t, env.do(t, "GET", "/api/variants", ""))
	require.True(t, resp.Success)
	require.Len(t, resp.Data, len(block.DefaultVariants()))
	assert.Equal(t, block.StoneVariantID, resp.Data[0].ID)
	assert.True(t, resp.Data[0].Selected)

	w := env.do(t, "POST", "/api/variants/select", `{"id":"glass"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "POST", "/api/variants/select", `{"id":"lava"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "POST", "/api/variants/select", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", "/api/variants/sand/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, "POST", "/api/variants/lava/ready", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestServer_ClickPlacesOnce(t *testing.T) {
	env := newTestEnv(t)

	res := decode[ResultResponse](t, env.do(t, "POST", "/api/pointer/click", groundClick))
	assert.Equal(t, "place", res.Outcome.String())
	assert.Equal(t, "PLACED", res.Place)
	require.NotNil(t, res.Target)
	assert.Equal(t, 0, res.Target.X)
	assert.False(t, res.Preview.CanPlace)

	res = decode[ResultResponse](t, env.do(t, "POST", "/api/pointer/click", groundClick))
	assert.Equal(t, "REJECTED_OCCUPIED", res.Place)

	blocks := decode[struct {
		Data BlocksResponse `json:"data"`
	}](t, env.do(t, "GET", "/api/blocks", ""))
	assert.Equal(t, 1, blocks.Data.Total)
	assert.Equal(t, "0,0,0", string(blocks.Data.Blocks[0].Key))
}

func TestRestServer_DragDoesNotPlace(t *testing.T) {
	env := newTestEnv(t)
	hit := `"hit":{"surface":"ground","point":{"x":0.5,"y":0,"z":0.5},"distance":3}`

	w := env.do(t, "POST", "/api/pointer/down", `{"position":{"x":10,"y":10},`+hit+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "none", decode[map[string]any](t, w)["outcome"])

	w = env.do(t, "POST", "/api/pointer/up", `{"position":{"x":16,"y":10}}`)
	res := decode[map[string]any](t, w)
	assert.Equal(t, "drag_discarded", res["outcome"])
	assert.NotContains(t, res, "place")

	blocks := decode[struct {
		Data BlocksResponse `json:"data"`
	}](t, env.do(t, "GET", "/api/blocks", ""))
	assert.Zero(t, blocks.Data.Total)
}

func TestRestServer_MovePreviewRemoveReset(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "POST", "/api/pointer/click", groundClick)

	// Грань +Y блока (0,0,0): подсветка над ним
	w := env.do(t, "POST", "/api/pointer/move",
		`{"position":{"x":1,"y":1},"hit":{"surface":"block","block":{"x":0,"y":0,"z":0},"normal":{"x":0,"y":1,"z":0},"distance":2}}`)
	require.Equal(t, http.StatusOK, w.Code)
	preview := decode[map[string]any](t, w)
	assert.Equal(t, true, preview["has_target"])
	assert.Equal(t, map[string]any{"x": float64(0), "y": float64(1), "z": float64(0)}, preview["target"])

	assert.Equal(t, preview, decode[map[string]any](t, env.do(t, "GET", "/api/preview", "")))

	res := decode[ResultResponse](t, env.do(t, "POST", "/api/pointer/down",
		`{"button":"right","hit":{"surface":"block","block":{"x":0,"y":0,"z":0},"normal":{"x":0,"y":1,"z":0},"distance":2}}`))
	assert.Equal(t, "remove", res.Outcome.String())
	assert.Equal(t, "REMOVED", res.Remove)

	env.do(t, "POST", "/api/pointer/click", groundClick)
	res = decode[ResultResponse](t, env.do(t, "POST", "/api/reset", ""))
	assert.Equal(t, "reset", res.Outcome.String())
	require.NotNil(t, res.Cleared)
	assert.Equal(t, 1, *res.Cleared)
}

func TestRestServer_BadPointerJSON(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/pointer/down", `{"button":"middle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", "/api/pointer/move", `{"hit":{"surface":"water"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestServer_MetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/health", "")

	w := env.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sandbox_api_http_request_duration_seconds")
}

func TestRestServer_SceneStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.server.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?types=BlockPlaced,Reset"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() SceneMessage {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg SceneMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	snap := read()
	assert.Equal(t, MessageTypeSnapshot, snap.Type)
	var blocks BlocksResponse
	require.NoError(t, json.Unmarshal(snap.Payload, &blocks))
	assert.Zero(t, blocks.Total)

	env.do(t, "POST", "/api/pointer/click",
		`{"down":{"hit":{"surface":"ground","point":{"x":3.5,"y":0,"z":0.5},"distance":3}}}`)
	env.do(t, "POST", "/api/pointer/move", `{"hit":{"surface":"ground","point":{"x":8.5,"y":0,"z":8.5}}}`)
	env.do(t, "POST", "/api/reset", "")

	placed := read()
	assert.Equal(t, "BlockPlaced", placed.Type)
	assert.NotEmpty(t, placed.ID)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(placed.Payload, &ev))
	assert.Equal(t, "3,0,0", ev["block"].(map[string]any)["key"])

	// PreviewChanged отфильтрован параметром types
	assert.Equal(t, "Reset", read().Type)
}

func worldOptions() world.EngineOptions {
	return world.EngineOptions{DefaultVariant: block.StoneVariantID}
}
