package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"domino-service/internal/service/game"
	pkgAuth "domino-service/pkg/auth"
	appErr "domino-service/pkg/errors"
	"domino-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	gameSvc *game.Service
}

func NewHandler(gameSvc *game.Service) *Handler {
	return &Handler{gameSvc: gameSvc}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

func (h *Handler) HandleMatchWS(c *gin.Context) {
	matchID := c.Param("id")

	token, err := getTokenFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	claims, err := pkgAuth.ParseSeatToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if claims.MatchID != matchID {
		c.JSON(http.StatusForbidden, gin.H{"error": appErr.ErrMatchAccessDenied.Error()})
		return
	}

	view, err := h.gameSvc.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		if errors.Is(err, appErr.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket connection", zap.String("matchID", matchID))

	client := newClient(conn, matchID, h.gameSvc)
	h.gameSvc.Hub().Send(matchID, client.subID, "state", view)
	client.run()
}

func getTokenFromRequest(c *gin.Context) (string, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token != "" {
		return token, nil
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
			if token != "" {
				return token, nil
			}
		}
	}
	return "", errors.New("missing token")
}

type playPayload struct {
	TileIndex int    `json:"tileIndex"`
	Side      string `json:"side"`
}

type client struct {
	conn      *websocket.Conn
	matchID   string
	svc       *game.Service
	subID     int64
	outbound  <-chan game.OutgoingMessage
	done      chan struct{}
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, matchID string, svc *game.Service) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	subID, ch := svc.Hub().Subscribe(matchID)
	return &client{
		conn:      conn,
		matchID:   matchID,
		svc:       svc,
		subID:     subID,
		outbound:  ch,
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

// readPump never writes to the socket itself; replies go through the hub so
// writePump stays the only writer.
func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.svc.Hub().Unsubscribe(c.matchID, c.subID)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("matchID", c.matchID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.replyError("invalid payload")
			continue
		}
		if incoming.Type == "" {
			continue
		}
		if err := c.handleAction(incoming.Type, incoming.Data); err != nil {
			c.replyError(err.Error())
		}
	}
}

// handleAction applies one socket action. Successful moves reach this client
// through the hub broadcast.
func (c *client) handleAction(action string, data json.RawMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch action {
	case "play":
		var p playPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return errors.New("invalid play payload")
		}
		_, err := c.svc.Play(ctx, c.matchID, p.TileIndex, p.Side)
		return err
	case "pass":
		_, err := c.svc.Pass(ctx, c.matchID)
		return err
	case "state":
		view, err := c.svc.GetMatch(ctx, c.matchID)
		if err != nil {
			return err
		}
		c.svc.Hub().Send(c.matchID, c.subID, "state", view)
		return nil
	default:
		return errors.New("unknown action")
	}
}

func (c *client) replyError(msg string) {
	c.svc.Hub().Send(c.matchID, c.subID, "error", gin.H{"message": msg})
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.outbound:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("matchID", c.matchID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
