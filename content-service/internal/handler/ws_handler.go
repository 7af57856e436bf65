package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/autocomplete"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/config"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/ws"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler serves live autocomplete over websocket.
type WSHandler struct {
	hub    *ws.Hub
	source autocomplete.Source
	wsCfg  config.WebSocketConfig
	acCfg  autocomplete.Config
}

func NewWSHandler(hub *ws.Hub, source autocomplete.Source, wsCfg config.WebSocketConfig, acCfg autocomplete.Config) *WSHandler {
	return &WSHandler{
		hub:    hub,
		source: source,
		wsCfg:  wsCfg,
		acCfg:  acCfg,
	}
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	id := uuid.New().String()
	clientLogger := l.With().Str("client_id", id).Logger()
	clientCtx := log.WithLogger(context.Background(), clientLogger)

	client := ws.NewClient(clientCtx, id, h.hub, conn, h.source, h.wsCfg, h.acCfg)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/search/live", h.HandleWebSocket)
}
