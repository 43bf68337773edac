package contracts

import (
	"context"
	"errors"
)

var ChannelClosedError = errors.New("broadcast channel closed")

// BroadcastChannel is one view's endpoint on a named publish/subscribe bus.
// Publishers never receive their own payloads.
type BroadcastChannel interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(handler func(payload []byte)) (unsubscribe func())
	Close() error
}
