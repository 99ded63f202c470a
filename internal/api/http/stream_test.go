package http

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.app.Listener(ln) }()
	t.Cleanup(func() { _ = s.app.ShutdownWithTimeout(time.Second) })
	return ln.Addr().String()
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	frame := map[string]any{}
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestStreamDeliversEventChanges(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.signupAndLogin(t, "admin@example.com", "admin")
	addr := srv.listen(t)

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/events/ws?token="+admin, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	hello := readFrame(t, conn)
	assert.Equal(t, "connection", hello["type"])
	assert.Equal(t, "connected", hello["status"])
	user := hello["user"].(map[string]any)
	assert.Equal(t, "admin@example.com", user["email"])
	assert.Equal(t, true, user["is_admin"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, "pong", readFrame(t, conn)["type"])

	res := srv.do(t, http.MethodPost, "/events", eventBody("Live"), admin)
	require.Equal(t, http.StatusCreated, res.status)
	created := readFrame(t, conn)
	assert.Equal(t, "event_created", created["type"])
	assert.Equal(t, res.data()["id"], created["event_id"])
	assert.Equal(t, "Live", created["event"].(map[string]any)["title"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "get_events", "limit": 500}))
	initial := readFrame(t, conn)
	assert.Equal(t, "initial_events", initial["type"])
	assert.Len(t, initial["events"], 1)

	assert.Equal(t, 1, srv.hub.Count())
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return srv.hub.Count() == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestStreamRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)
	addr := srv.listen(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/events/ws?token=forged", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
