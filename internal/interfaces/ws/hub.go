// Package ws difunde por WebSocket los eventos confirmados (stock, ventas, tasa).
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/events"
)

const (
	broadcastBuffer = 64
	clientBuffer    = 16
)

var _ events.Publisher = (*Hub)(nil)

type client struct {
	send chan []byte
	once sync.Once
}

// Hub mantiene los clientes conectados. Publish nunca bloquea: si el hub está
// saturado el evento se descarta, y un cliente lento se desconecta.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	log        zerolog.Logger
}

// NewHub construye el hub. Hay que lanzar Run para que entregue mensajes.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run atiende registros y difusión hasta que ctx termine.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		close(h.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug().Int("clients", len(h.clients)).Msg("ws: cliente conectado")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
					h.log.Warn().Msg("ws: cliente lento desconectado")
				}
			}
		}
	}
}

// Publish serializa ev y lo encola para todos los clientes.
func (h *Hub) Publish(ev events.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", ev.Type).Msg("ws: evento no serializable")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("type", ev.Type).Msg("ws: hub saturado, evento descartado")
	}
}

// Subscribe registra un cliente. El canal se cierra al cancelar, al detenerse
// el hub o si el cliente no consume a tiempo.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	c := &client{send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
		return c.send, func() {}
	}
	cancel := func() {
		c.once.Do(func() {
			select {
			case h.unregister <- c:
			case <-h.done:
			}
		})
	}
	return c.send, cancel
}

// Upgrade rechaza peticiones que no piden WebSocket.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler sirve una conexión: escribe cada evento hasta que el cliente cierre.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		msgs, cancel := h.Subscribe()
		defer cancel()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	})
}
