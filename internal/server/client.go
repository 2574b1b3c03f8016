package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"geballer-core/internal/engine"
	"geballer-core/internal/network"
	"geballer-core/pkg/api"
	"geballer-core/pkg/logger"

	"github.com/faiface/pixel"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	handshakeWait  = 5 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - наблюдатель за одним агентом. Получает TickUpdate после
// каждого тика и может отправлять агента в точку (MOVE_TO).
type Client struct {
	World   *engine.World
	Hub     *network.Broadcaster
	Conn    *websocket.Conn
	AgentID string

	// Send - всё, что уходит клиенту: TickUpdate или ErrorResponse.
	Send chan interface{}
	done chan struct{}
	log  *logrus.Entry
}

func NewClient(world *engine.World, hub *network.Broadcaster, conn *websocket.Conn, agentID string) *Client {
	return &Client{
		World:   world,
		Hub:     hub,
		Conn:    conn,
		AgentID: agentID,
		Send:    make(chan interface{}, 256),
		done:    make(chan struct{}),
		log:     logger.Log.WithFields(logrus.Fields{"component": "ws", "agent": agentID}),
	}
}

// handleWS обрабатывает подключение по WebSocket. Первое сообщение -
// WATCH с ID агента; без него соединение закрывается.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("Upgrade error")
		return
	}

	// 1. HANDSHAKE (WATCH)
	conn.SetReadDeadline(time.Now().Add(handshakeWait))
	var watch api.ClientCommand
	if err := conn.ReadJSON(&watch); err != nil {
		logger.Log.WithError(err).Warn("Handshake failed")
		conn.Close()
		return
	}
	if watch.Action != api.ActionWatch || watch.Token == "" {
		rejectConn(conn, "first message must be WATCH with an agent token")
		return
	}
	if _, ok := s.World.View(watch.Token); !ok {
		rejectConn(conn, "agent not found")
		return
	}

	// 2. ПОДПИСКА НА ОБНОВЛЕНИЯ
	client := NewClient(s.World, s.Hub, conn, watch.Token)
	updates := s.Hub.Register(client.AgentID)
	client.log.Info("Client watching")

	go client.forward(updates)
	go client.writePump()
	go client.readPump(updates)
}

func rejectConn(conn *websocket.Conn, msg string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteJSON(api.ErrorResponse{Error: msg})
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg))
	conn.Close()
}

// forward пересылает обновления из Hub в writePump. Канал updates
// закрывает Hub при отписке.
func (c *Client) forward(updates chan api.TickUpdate) {
	defer close(c.Send)
	for msg := range updates {
		select {
		case c.Send <- msg:
		case <-c.done:
			// writePump уже умер; дочитываем до отписки
		}
	}
}

// readPump читает команды от клиента
func (c *Client) readPump(updates chan api.TickUpdate) {
	defer func() {
		c.Hub.Unregister(c.AgentID, updates)
		c.Conn.Close()
		c.log.Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Error("WS Error")
			}
			return
		}
		if err := c.handle(cmd); err != nil {
			c.reply(api.ErrorResponse{Error: err.Error()})
		}
	}
}

// handle выполняет команду клиента. Token из команды игнорируется:
// клиент управляет только тем агентом, за которым следит.
func (c *Client) handle(cmd api.ClientCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	switch cmd.Action {
	case api.ActionMoveTo:
		var p api.TargetPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		accepted, err := c.World.MoveTo(c.AgentID, pixel.V(p.X, p.Y))
		if err != nil {
			return err
		}
		c.log.WithFields(logrus.Fields{"x": p.X, "y": p.Y, "accepted": accepted}).Debug("move requested")
		return nil
	case api.ActionWatch:
		return nil
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}

func (c *Client) reply(msg interface{}) {
	select {
	case c.Send <- msg:
	default:
		c.log.Warn("send buffer full, reply dropped")
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
