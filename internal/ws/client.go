package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"grandmaster/internal/engine"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
	writeWait    = 5 * time.Second
)

// Client is one browser connection bound to a table.
type Client struct {
	ID         string
	connection *websocket.Conn
	manager    *Manager
	table      *engine.Runner
	egress     chan Event
	err        chan error
	log        *zap.Logger
}

func NewClient(conn *websocket.Conn, manager *Manager, table *engine.Runner) *Client {
	id := uuid.NewString()
	return &Client{
		ID:         id,
		connection: conn,
		manager:    manager,
		table:      table,
		egress:     make(chan Event, 16),
		err:        make(chan error, 3),
		log:        manager.log.With(zap.String("client", id), zap.String("table", table.ID())),
	}
}

// Reads incoming messages from the clients websocket connection
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(1024)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}
	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, payload, err := c.connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("error reading message", zap.Error(err))
			}
			c.handleError(err)
			return
		}

		var evt Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			c.pushError("", "malformed event")
			continue
		}

		c.log.Debug("event received", zap.String("type", evt.Type), zap.String("trace_id", evt.TraceID))

		// handler errors go back to the client under the event's trace id
		if err := c.manager.routeEvent(ctx, evt, c); err != nil {
			c.log.Info("event rejected", zap.String("type", evt.Type), zap.Error(err))
			c.pushError(evt.TraceID, err.Error())
		}
	}
}

// writes messages pushed to the client's egress channel, and table
// snapshots whenever the table changes
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	_, updates, unsubscribe := c.table.Broadcaster().Subscribe()
	defer unsubscribe()

	if err := c.write(stateEvent(c.table.Snapshot())); err != nil {
		c.handleError(err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				evt, _ := NewEvent(EventClosed, PayloadError{Message: "table closed"})
				_ = c.write(evt)
				c.handleError(errors.New("table closed"))
				return
			}
			if err := c.write(stateEvent(c.table.Snapshot())); err != nil {
				c.handleError(err)
				return
			}
		case message := <-c.egress:
			if err := c.write(message); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			if err := c.connection.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

func (c *Client) write(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := c.connection.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.connection.WriteMessage(websocket.TextMessage, data)
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// handleError tells ServeWS that a pump stopped. It never blocks.
func (c *Client) handleError(e error) {
	select {
	case c.err <- e:
	default:
	}
}

func (c *Client) Err() <-chan error {
	return c.err
}

// PushToEgress queues an event for delivery. A client that stops reading
// loses events rather than stalling the table.
func (c *Client) PushToEgress(evt Event) {
	select {
	case c.egress <- evt:
	default:
		c.log.Warn("egress full, dropping event", zap.String("type", evt.Type))
	}
}

func (c *Client) pushError(traceID, message string) {
	evt, err := NewErrorEvent(traceID, message)
	if err != nil {
		c.handleError(err)
		return
	}
	c.PushToEgress(evt)
}

func stateEvent(snap engine.Snapshot) Event {
	evt, err := NewEvent(EventState, snap)
	if err != nil {
		return NewEventStruct(EventError, []byte(`{"message":"encode state"}`), "")
	}
	return evt
}
