package main

import (
	"collabSheet/contracts"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketBroadcastChannel is a view's endpoint on a WebsocketRelay channel
type WebsocketBroadcastChannel struct {
	conn        *websocket.Conn
	subscribers *broadcastSubscribers
	logger      *slog.Logger

	writeMu   sync.Mutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// RelayChannelUrl joins the relay base url, e.g. ws://host:8080/api/v1/sync, with the channel name
func RelayChannelUrl(relayUrl string, channel string) string {
	return strings.TrimRight(relayUrl, "/") + "/" + url.PathEscape(channel)
}

func DialWebsocketBroadcastChannel(ctx context.Context, channelUrl string, logger *slog.Logger) (*WebsocketBroadcastChannel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, channelUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", channelUrl, err)
	}

	channel := &WebsocketBroadcastChannel{
		conn:        conn,
		subscribers: newBroadcastSubscribers(),
		logger:      logger,
		done:        make(chan struct{}),
	}

	go channel.runReader()

	return channel, nil
}

func (ch *WebsocketBroadcastChannel) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()

	if ch.closed {
		return contracts.ChannelClosedError
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(relayWriteTimeout)
	}
	_ = ch.conn.SetWriteDeadline(deadline)

	return ch.conn.WriteMessage(websocket.TextMessage, payload)
}

func (ch *WebsocketBroadcastChannel) Subscribe(handler func(payload []byte)) (unsubscribe func()) {
	return ch.subscribers.add(handler)
}

// Done is closed once the connection to the relay is gone
func (ch *WebsocketBroadcastChannel) Done() <-chan struct{} {
	return ch.done
}

func (ch *WebsocketBroadcastChannel) Close() (err error) {
	ch.closeOnce.Do(func() {
		ch.writeMu.Lock()
		ch.closed = true
		_ = ch.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		ch.writeMu.Unlock()

		err = ch.conn.Close()
	})
	<-ch.done

	return
}

func (ch *WebsocketBroadcastChannel) runReader() {
	defer close(ch.done)

	for {
		_, payload, err := ch.conn.ReadMessage()
		if err != nil {
			ch.writeMu.Lock()
			closed := ch.closed
			ch.closed = true
			ch.writeMu.Unlock()

			if !closed {
				ch.logger.Error("relay connection lost", "error", err)
			}
			return
		}

		ch.subscribers.deliver(payload)
	}
}
