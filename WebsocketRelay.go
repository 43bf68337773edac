package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const relayWriteTimeout = 5 * time.Second

type RelayEndpointParams struct {
	Channel string `uri:"channel" binding:"required"`
}

// WebsocketRelay lets views in different processes share a broadcast channel. Every frame a
// peer sends is queued to every other peer of the same channel; the sender never gets it back.
type WebsocketRelay struct {
	upgrader  websocket.Upgrader
	queueSize int
	logger    *slog.Logger

	mu       sync.Mutex
	channels map[string]map[*relayPeer]struct{}
}

type relayPeer struct {
	conn      *websocket.Conn
	send      chan []byte
	closing   chan struct{}
	closeOnce sync.Once
}

func NewWebsocketRelay(queueSize int, logger *slog.Logger) *WebsocketRelay {
	return &WebsocketRelay{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		queueSize: queueSize,
		logger:    logger,
		channels:  map[string]map[*relayPeer]struct{}{},
	}
}

func (relay *WebsocketRelay) SyncAction(c *gin.Context) {
	params := RelayEndpointParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := relay.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already answered the request
		relay.logger.Warn("websocket upgrade failed", "channel", params.Channel, "error", err)
		return
	}

	peer := &relayPeer{
		conn:    conn,
		send:    make(chan []byte, relay.queueSize),
		closing: make(chan struct{}),
	}

	relay.join(params.Channel, peer)
	defer relay.leave(params.Channel, peer)

	go relay.runPeerWriter(peer)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				relay.logger.Warn("relay peer read failed", "channel", params.Channel, "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		relay.forward(params.Channel, peer, payload)
	}
}

// Peers reports how many peers are connected to channel
func (relay *WebsocketRelay) Peers(channel string) int {
	relay.mu.Lock()
	defer relay.mu.Unlock()

	return len(relay.channels[channel])
}

// Close disconnects every peer
func (relay *WebsocketRelay) Close() error {
	relay.mu.Lock()
	defer relay.mu.Unlock()

	for _, peers := range relay.channels {
		for peer := range peers {
			peer.close()
		}
	}

	return nil
}

func (relay *WebsocketRelay) join(channel string, peer *relayPeer) {
	relay.mu.Lock()
	defer relay.mu.Unlock()

	if _, ok := relay.channels[channel]; !ok {
		relay.channels[channel] = map[*relayPeer]struct{}{}
	}
	relay.channels[channel][peer] = struct{}{}
}

func (relay *WebsocketRelay) leave(channel string, peer *relayPeer) {
	relay.mu.Lock()
	delete(relay.channels[channel], peer)
	if len(relay.channels[channel]) == 0 {
		delete(relay.channels, channel)
	}
	relay.mu.Unlock()

	peer.close()
}

func (relay *WebsocketRelay) forward(channel string, sender *relayPeer, payload []byte) {
	relay.mu.Lock()
	defer relay.mu.Unlock()

	for peer := range relay.channels[channel] {
		if peer == sender {
			continue
		}

		select {
		case peer.send <- payload:
		default:
			relay.logger.Warn("relay peer queue is full, message dropped", "channel", channel)
		}
	}
}

func (relay *WebsocketRelay) runPeerWriter(peer *relayPeer) {
	defer peer.conn.Close()

	for {
		select {
		case payload := <-peer.send:
			_ = peer.conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout))
			if err := peer.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				relay.logger.Warn("relay peer write failed", "error", err)
				return
			}

		case <-peer.closing:
			_ = peer.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		}
	}
}

func (peer *relayPeer) close() {
	peer.closeOnce.Do(func() {
		close(peer.closing)
	})
}
