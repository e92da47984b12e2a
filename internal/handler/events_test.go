package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEvent struct {
	Kind      string `json:"kind"`
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
	At        string `json:"at"`
}

func dialEvents(t *testing.T, a *testAPI) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return a.store.Events().Subscribers() == 1
	}, time.Second, 5*time.Millisecond)
	return srv, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) apiEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev apiEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestStreamEvents(t *testing.T) {
	a := newTestAPI(t)
	srv, conn := dialEvents(t, a)

	post := func(path, body string) {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	post("/api/cart/items", `{"productId":"3"}`)
	post("/api/checkout", "")

	ev := readEvent(t, conn)
	assert.Equal(t, "CartUpdated", ev.Kind)
	assert.Equal(t, "3", ev.ProductID)
	assert.Equal(t, 1, ev.Quantity)
	assert.NotEmpty(t, ev.At)

	ev = readEvent(t, conn)
	assert.Equal(t, "OrderPlaced", ev.Kind)
	assert.Equal(t, "ord_new_1", ev.OrderID)

	ev = readEvent(t, conn)
	assert.Equal(t, "CartCleared", ev.Kind)
}

func TestStreamEvents_UnsubscribeOnClose(t *testing.T) {
	a := newTestAPI(t)
	_, conn := dialEvents(t, a)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return a.store.Events().Subscribers() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestStreamEvents_Shutdown(t *testing.T) {
	a := newTestAPI(t)
	_, conn := dialEvents(t, a)

	a.handler.Shutdown()
	a.handler.Shutdown()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestStreamEvents_OriginCheck(t *testing.T) {
	a := newTestAPI(t)
	a.handler.upgrader.CheckOrigin = checkOrigin([]string{"https://shop.example"})
	srv := httptest.NewServer(a.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEncodeEvent_OmitsEmpty(t *testing.T) {
	var ev map[string]any
	a := newTestAPI(t)
	ch, cancel := a.store.Events().Subscribe(1)
	defer cancel()

	a.do(http.MethodDelete, "/api/cart", "")
	got := <-ch

	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeEvent(e, got) })
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	assert.Equal(t, "CartCleared", ev["kind"])
	assert.NotContains(t, ev, "productId")
	assert.NotContains(t, ev, "quantity")
}
