package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the frontend origin; auth happens at
	// the subscription protocol level, not the handshake.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscribeRequest is the only inbound message shape clients send.
type subscribeRequest struct {
	Action string `json:"action"`
	Ticker string `json:"ticker"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Client is one websocket connection attached to the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	log       zerolog.Logger
}

// ServeWS upgrades an HTTP request to a websocket connection and starts
// the client's read and write pumps.
func ServeWS(hub *Hub, log zerolog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		log:  log.With().Str("component", "ws-client").Logger(),
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		var req subscribeRequest
		if err := json.Unmarshal(message, &req); err != nil {
			c.sendError("invalid message")
			continue
		}

		switch req.Action {
		case "subscribe":
			c.hub.Subscribe(c, req.Ticker)
		case "unsubscribe":
			c.hub.Unsubscribe(c, req.Ticker)
		default:
			c.sendError("unknown action: " + req.Action)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(message string) {
	payload, err := json.Marshal(errorMessage{Type: "error", Message: message})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
