package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"grandmaster/internal/engine"
	"grandmaster/internal/httputil"
)

var ErrUnknownEvent = errors.New("there is no such event type")

type ClientList map[string]*Client

// Manager upgrades connections and routes their events to tables.
type Manager struct {
	sync.RWMutex
	clients  ClientList
	handlers map[string]EventHandler
	hub      *engine.Hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewManager accepts connections from the listed origins. An empty list
// allows any origin.
func NewManager(hub *engine.Hub, allowedOrigins []string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		clients:  make(ClientList),
		handlers: make(map[string]EventHandler),
		hub:      hub,
		log:      log,
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(allowedOrigins),
	}
	m.setupEventHandlers()
	return m
}

func (m *Manager) setupEventHandlers() {
	m.handlers[EventClick] = ClickSquare
	m.handlers[EventNewGame] = NewGame
	m.handlers[EventRetryAI] = RetryAI
}

func (m *Manager) routeEvent(ctx context.Context, evt Event, c *Client) error {
	if handler, ok := m.handlers[evt.Type]; ok {
		return handler(ctx, evt, c)
	}
	return ErrUnknownEvent
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()
	m.clients[client.ID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.clients[client.ID]; ok {
		_ = client.connection.Close()
		delete(m.clients, client.ID)
	}
}

func (m *Manager) ClientCount() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.clients)
}

// ServeWS binds a connection to the table named by the game query param.
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		httputil.SendError(w, http.StatusBadRequest, "game not sent")
		return
	}
	table, err := m.hub.Get(gameID)
	if err != nil {
		httputil.SendError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		m.log.Warn("error upgrading to websocket connection", zap.Error(err))
		return
	}

	client := NewClient(conn, m, table)
	m.addClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			client.log.Debug("error sending close message", zap.Error(err))
		}
		m.removeClient(client)
	}()

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	err = <-client.Err()
	client.log.Debug("client disconnected", zap.Error(err))
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
