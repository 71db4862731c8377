package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"grandmaster/internal/engine"
	"grandmaster/internal/game"
)

func setup(t *testing.T) (*engine.Hub, *httptest.Server) {
	t.Helper()
	log := zaptest.NewLogger(t)
	hub := engine.NewHub(engine.RunnerDeps{Log: log}, 0)
	t.Cleanup(hub.Stop)

	m := NewManager(hub, nil, log)
	srv := httptest.NewServer(http.HandlerFunc(m.ServeWS))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?game=" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt Event
	require.NoError(t, conn.ReadJSON(&evt))
	return evt
}

func readState(t *testing.T, conn *websocket.Conn) engine.Snapshot {
	t.Helper()
	evt := readEvent(t, conn)
	require.Equal(t, EventState, evt.Type)
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(evt.Payload, &snap))
	return snap
}

func send(t *testing.T, conn *websocket.Conn, evtType, traceID string, payload any) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(NewEventStruct(evtType, b, traceID)))
}

func TestClickBroadcastsState(t *testing.T) {
	hub, srv := setup(t)
	table := hub.Create(game.ModeLocal, game.White)

	a := dial(t, srv, table.ID())
	b := dial(t, srv, table.ID())
	require.Equal(t, table.ID(), readState(t, a).GameID)
	readState(t, b)

	send(t, a, EventClick, "t-1", PayloadClick{Square: "e2"})
	require.Equal(t, "e2", readState(t, a).Selected)
	require.Equal(t, "e2", readState(t, b).Selected)

	send(t, b, EventClick, "t-2", PayloadClick{Square: "e4"})
	snap := readState(t, a)
	require.Equal(t, []string{"e4"}, snap.MovesSAN)
	require.Equal(t, game.Black, snap.Status.Turn)
}

func TestErrorsCarryTraceID(t *testing.T) {
	hub, srv := setup(t)
	table := hub.Create(game.ModeLocal, game.White)
	conn := dial(t, srv, table.ID())
	readState(t, conn)

	send(t, conn, EventClick, "bad-square", PayloadClick{Square: "z9"})
	evt := readEvent(t, conn)
	require.Equal(t, EventError, evt.Type)
	require.Equal(t, "bad-square", evt.TraceID)

	send(t, conn, "resign", "unknown", struct{}{})
	evt = readEvent(t, conn)
	require.Equal(t, EventError, evt.Type)
	require.Equal(t, "unknown", evt.TraceID)

	var payload PayloadError
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	require.Equal(t, ErrUnknownEvent.Error(), payload.Message)

	send(t, conn, EventNewGame, "mode", PayloadNewGame{Mode: "online"})
	evt = readEvent(t, conn)
	require.Equal(t, EventError, evt.Type)
	require.Equal(t, "mode", evt.TraceID)
}

func TestNewGameEvent(t *testing.T) {
	hub, srv := setup(t)
	table := hub.Create(game.ModeLocal, game.White)
	conn := dial(t, srv, table.ID())
	readState(t, conn)

	send(t, conn, EventNewGame, "ng", PayloadNewGame{Mode: "remote"})
	snap := readState(t, conn)
	require.Equal(t, game.ModeRemote, snap.Status.Mode)
	require.Len(t, snap.Status.RoomID, 6)

	got, err := hub.ByRoom(snap.Status.RoomID)
	require.NoError(t, err)
	require.Equal(t, table.ID(), got.ID())
}

func TestServeWSUnknownTable(t *testing.T) {
	_, srv := setup(t)

	resp, err := http.Get(srv.URL + "/ws?game=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"https://chess-3d.app"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	require.True(t, check(req))
	req.Header.Set("Origin", "https://chess-3d.app")
	require.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	require.False(t, check(req))
	require.True(t, checkOrigin(nil)(req))
}
