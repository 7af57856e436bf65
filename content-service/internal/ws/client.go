package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/autocomplete"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/config"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// Client is one live search connection with its own autocomplete controller.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	cfg  config.WebSocketConfig
	ctx  context.Context
	ctrl *autocomplete.Controller
}

func NewClient(ctx context.Context, id string, hub *Hub, conn *websocket.Conn, src autocomplete.Source, cfg config.WebSocketConfig, acCfg autocomplete.Config) *Client {
	size := cfg.SendBuffer
	if size <= 0 {
		size = 16
	}
	c := &Client{
		ID:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, size),
		cfg:  cfg,
		ctx:  ctx,
	}
	c.ctrl = autocomplete.New(ctx, src, acCfg, func(ev autocomplete.Event) {
		c.SendMessage(ev)
	})
	return c
}

// ReadPump feeds client messages to the controller until the connection
// fails or closes.
func (c *Client) ReadPump() {
	defer func() {
		c.ctrl.Close()
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	l := log.Ctx(c.ctx)

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l.Warn().Err(err).Str("client_id", c.ID).Msg("websocket read failed")
			}
			return
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.SendMessage(NewErrorMessage(ErrCodeBadRequest, "invalid message format"))
		return
	}

	switch msg.Type {
	case MsgTypeInput:
		c.ctrl.Input(msg.Value)

	case MsgTypeKey:
		if err := c.ctrl.KeyDown(msg.Key); errors.Is(err, autocomplete.ErrUnknownKey) {
			c.SendMessage(NewErrorMessage(ErrCodeUnknownKey, "unknown key "+msg.Key))
		}

	case MsgTypePing:
		c.SendMessage(&PongMessage{Type: MsgTypePong})

	default:
		c.SendMessage(NewErrorMessage(ErrCodeBadRequest, "unknown message type"))
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues message for the write pump. A full queue drops it.
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		l := log.Ctx(c.ctx)
		l.Error().Err(err).Msg("failed to encode websocket message")
		return
	}

	select {
	case c.send <- data:
	default:
		l := log.Ctx(c.ctx)
		l.Warn().Str("client_id", c.ID).Msg("send queue full, message dropped")
	}
}
