package main

import (
	"collabSheet/contracts"
	"context"
	"log/slog"
	"sync"
)

// LocalBroadcastBus connects views living in the same process. Every joined endpoint has its
// own queue and delivery goroutine, so one slow view never stalls the others.
type LocalBroadcastBus struct {
	mu        sync.Mutex
	channels  map[string]map[*LocalBroadcastEndpoint]struct{}
	queueSize int
	logger    *slog.Logger
}

func NewLocalBroadcastBus(queueSize int, logger *slog.Logger) *LocalBroadcastBus {
	return &LocalBroadcastBus{
		channels:  map[string]map[*LocalBroadcastEndpoint]struct{}{},
		queueSize: queueSize,
		logger:    logger,
	}
}

func (bus *LocalBroadcastBus) Join(channel string) *LocalBroadcastEndpoint {
	endpoint := &LocalBroadcastEndpoint{
		bus:         bus,
		channel:     channel,
		queue:       make(chan []byte, bus.queueSize),
		subscribers: newBroadcastSubscribers(),
		closing:     make(chan struct{}),
		done:        make(chan struct{}),
	}

	bus.mu.Lock()
	if _, ok := bus.channels[channel]; !ok {
		bus.channels[channel] = map[*LocalBroadcastEndpoint]struct{}{}
	}
	bus.channels[channel][endpoint] = struct{}{}
	bus.mu.Unlock()

	go endpoint.runDeliveryWorker()

	return endpoint
}

// Members reports how many endpoints are joined to channel
func (bus *LocalBroadcastBus) Members(channel string) int {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	return len(bus.channels[channel])
}

func (bus *LocalBroadcastBus) publish(sender *LocalBroadcastEndpoint, payload []byte) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for endpoint := range bus.channels[sender.channel] {
		if endpoint == sender {
			continue
		}

		select {
		case endpoint.queue <- payload:
		default:
			bus.logger.Warn("broadcast queue is full, message dropped", "channel", sender.channel)
		}
	}
}

func (bus *LocalBroadcastBus) leave(endpoint *LocalBroadcastEndpoint) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	delete(bus.channels[endpoint.channel], endpoint)
	if len(bus.channels[endpoint.channel]) == 0 {
		delete(bus.channels, endpoint.channel)
	}
}

// LocalBroadcastEndpoint is one view's membership in a LocalBroadcastBus channel
type LocalBroadcastEndpoint struct {
	bus         *LocalBroadcastBus
	channel     string
	queue       chan []byte
	subscribers *broadcastSubscribers
	closing     chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

func (e *LocalBroadcastEndpoint) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-e.closing:
		return contracts.ChannelClosedError
	default:
	}

	e.bus.publish(e, append([]byte(nil), payload...))
	return nil
}

func (e *LocalBroadcastEndpoint) Subscribe(handler func(payload []byte)) (unsubscribe func()) {
	return e.subscribers.add(handler)
}

func (e *LocalBroadcastEndpoint) Close() error {
	e.closeOnce.Do(func() {
		e.bus.leave(e)
		close(e.closing)
	})
	<-e.done

	return nil
}

func (e *LocalBroadcastEndpoint) runDeliveryWorker() {
	defer close(e.done)

	for {
		select {
		case payload := <-e.queue:
			e.subscribers.deliver(payload)
		case <-e.closing:
			return
		}
	}
}
