package websocket

import (
	"context"
	"time"

	"encheres/internal/shared/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Hub keeps the registry of live viewers, grouped by the article they watch,
// and fans server messages out to each group.
type Hub struct {
	// Registered clients per article id.
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// InboundMessages is consumed by module-specific handlers.
	InboundMessages chan *ClientMessage
}

// Client is one websocket connection watching one article.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Buffered channel of outbound messages.
	Send chan []byte
	// The article this client is watching.
	ArticleID string
	// Unique identifier for the client.
	ID string
}

type Message struct {
	ArticleID string
	Data      []byte
}

// ClientMessage wraps an inbound frame with the client that sent it.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		broadcast:       make(chan *Message, 64),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		clients:         make(map[string]map[*Client]bool),
		InboundMessages: make(chan *ClientMessage, 64),
	}
}

// Run processes registrations and broadcasts until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("websocket hub shutting down")
			return

		case client := <-h.register:
			if _, ok := h.clients[client.ArticleID]; !ok {
				h.clients[client.ArticleID] = make(map[*Client]bool)
			}
			h.clients[client.ArticleID][client] = true
			log.Info("client registered",
				zap.String("clientID", client.ID),
				zap.String("articleID", client.ArticleID),
			)

		case client := <-h.unregister:
			if clients, ok := h.clients[client.ArticleID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.ArticleID)
					}
					log.Info("client unregistered",
						zap.String("clientID", client.ID),
						zap.String("articleID", client.ArticleID),
					)
				}
			}

		case message := <-h.broadcast:
			for client := range h.clients[message.ArticleID] {
				select {
				case client.Send <- message.Data:
				default:
					// client not draining its queue, drop it
					close(client.Send)
					delete(h.clients[message.ArticleID], client)
				}
			}
		}
	}
}

// RegisterClient queues a client for registration.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("register channel full, closing client",
			zap.String("clientID", client.ID),
			zap.String("articleID", client.ArticleID),
		)
		_ = client.Conn.Close()
	}
}

// UnregisterClient queues a client for removal.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
	}
}

// BroadcastToArticle sends a message to every client watching the article.
func (h *Hub) BroadcastToArticle(articleID string, data []byte) {
	select {
	case h.broadcast <- &Message{ArticleID: articleID, Data: data}:
	default:
		log.Error("broadcast channel full, message dropped", zap.String("articleID", articleID))
	}
}

// ReadPump reads frames from the client and forwards them to the hub's
// inbound channel. Run it in its own goroutine per connection.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("websocket read error",
					zap.String("clientID", c.ID),
					zap.String("articleID", c.ArticleID),
					zap.Error(err),
				)
			}
			break
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("inbound channel full, dropping message",
				zap.String("clientID", c.ID),
				zap.String("articleID", c.ArticleID),
			)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection. It is
// the single writer for its connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// the hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("websocket write error",
					zap.String("clientID", c.ID),
					zap.String("articleID", c.ArticleID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
