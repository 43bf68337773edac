package main

import (
	"collabSheet/contracts"
	"context"
	"log/slog"
	"time"
)

const broadcastTimeout = 5 * time.Second

// SyncCoordinator sequences one view: local edits go to the evaluation worker, results are
// committed to the state store and only then broadcast, broadcasts from other views are
// applied as remote updates and never sent again.
type SyncCoordinator struct {
	store      contracts.StateStore
	evaluator  contracts.EvaluationQueue
	channel    contracts.BroadcastChannel
	serializer contracts.CellSerializer
	validator  *MessageValidator
	clock      contracts.Clock
	logger     *slog.Logger
	metrics    *Metrics

	remote      chan []byte
	unsubscribe func()
}

func NewSyncCoordinator(
	store contracts.StateStore, evaluator contracts.EvaluationQueue, channel contracts.BroadcastChannel,
	serializer contracts.CellSerializer, validator *MessageValidator, clock contracts.Clock,
	queueSize int, logger *slog.Logger, metrics *Metrics,
) *SyncCoordinator {
	coordinator := &SyncCoordinator{
		store:      store,
		evaluator:  evaluator,
		channel:    channel,
		serializer: serializer,
		validator:  validator,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		remote:     make(chan []byte, queueSize),
	}

	// subscribed right away, so broadcasts arriving before Run are queued rather than lost
	coordinator.unsubscribe = channel.Subscribe(coordinator.receive)

	return coordinator
}

// Edit hands a local edit to the evaluation worker; the state changes once the result comes back
func (c *SyncCoordinator) Edit(ctx context.Context, cellId string, rawInput string) error {
	return c.evaluator.Submit(ctx, contracts.EvaluationRequest{
		CellId:      cellId,
		RawInput:    rawInput,
		Spreadsheet: c.store.Snapshot(),
	})
}

func (c *SyncCoordinator) Snapshot() contracts.SpreadsheetState {
	return c.store.Snapshot()
}

func (c *SyncCoordinator) Cell(cellId string) (contracts.CellData, bool) {
	return c.store.Cell(cellId)
}

// Run applies evaluation results and remote messages until ctx is done or the evaluation worker stops
func (c *SyncCoordinator) Run(ctx context.Context) error {
	results := c.evaluator.Results()

	for {
		select {
		case result, ok := <-results:
			if !ok {
				return contracts.WorkerClosedError
			}
			c.onEvaluationResult(ctx, result)

		case payload := <-c.remote:
			c.onBroadcast(ctx, payload)

		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops listening to the broadcast channel
func (c *SyncCoordinator) Close() error {
	c.unsubscribe()
	return nil
}

// receive runs on the channel's delivery goroutine; the payload is applied by Run
func (c *SyncCoordinator) receive(payload []byte) {
	select {
	case c.remote <- payload:
	default:
		c.logger.Warn("remote update queue is full, broadcast dropped")
	}
}

func (c *SyncCoordinator) onEvaluationResult(ctx context.Context, result contracts.EvaluationResponse) {
	state, err := c.store.Update(ctx, contracts.UpdateIntent{
		CellId:        result.CellId,
		RawInput:      result.RawInput,
		ComputedValue: result.ComputedValue,
		Source:        contracts.UpdateSourceLocal,
	})
	if err != nil {
		c.logger.Error("failed to commit evaluation result", "cellId", result.CellId, "error", err)
		return
	}

	message := contracts.BroadcastMessage{
		CellId:        result.CellId,
		RawInput:      result.RawInput,
		ComputedValue: result.ComputedValue,
		Timestamp:     c.clock(),
	}
	if committed, ok := state[result.CellId]; ok {
		message.Timestamp = committed.Timestamp
	}

	payload, err := c.serializer.MarshalBroadcast(message)
	if err != nil {
		c.logger.Error("failed to encode broadcast", "cellId", result.CellId, "error", err)
		c.metrics.BroadcastFailures.Inc()
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, broadcastTimeout)
	defer cancel()

	if err = c.channel.Publish(publishCtx, payload); err != nil {
		c.logger.Error("failed to broadcast update", "cellId", result.CellId, "error", err)
		c.metrics.BroadcastFailures.Inc()
	}
}

func (c *SyncCoordinator) onBroadcast(ctx context.Context, payload []byte) {
	message, err := c.validator.ParseBroadcastMessage(payload)
	if err != nil {
		c.logger.Warn("invalid broadcast message dropped", "error", err)
		c.metrics.InvalidMessages.WithLabelValues(BoundaryBroadcast).Inc()
		return
	}

	_, err = c.store.Update(ctx, contracts.UpdateIntent{
		CellId:        message.CellId,
		RawInput:      message.RawInput,
		ComputedValue: message.ComputedValue,
		Timestamp:     message.Timestamp,
		Source:        contracts.UpdateSourceRemote,
	})
	if err != nil {
		c.logger.Error("failed to apply remote update", "cellId", message.CellId, "error", err)
	}
}
