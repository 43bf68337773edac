package main

import (
	"collabSheet/contracts"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var StorageWorkerError = errors.New("storage worker error")

// StorageWorker owns the durable storage of a view. It runs requests one at a time on its own
// goroutine and answers each with a response carrying the same request id.
type StorageWorker struct {
	storage   contracts.StateStorage
	validator *MessageValidator
	logger    *slog.Logger
	metrics   *Metrics

	requests  chan contracts.StorageRequest
	responses chan contracts.StorageResponse
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewStorageWorker(
	storage contracts.StateStorage, validator *MessageValidator, queueSize int,
	logger *slog.Logger, metrics *Metrics,
) *StorageWorker {
	worker := &StorageWorker{
		storage:   storage,
		validator: validator,
		logger:    logger,
		metrics:   metrics,
		requests:  make(chan contracts.StorageRequest, queueSize),
		responses: make(chan contracts.StorageResponse, queueSize),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}

	go worker.run()

	return worker
}

func (w *StorageWorker) Post(ctx context.Context, request contracts.StorageRequest) error {
	select {
	case <-w.closing:
		return contracts.WorkerClosedError
	default:
	}

	select {
	case w.requests <- request:
		return nil
	case <-w.closing:
		return contracts.WorkerClosedError
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Responses is closed once the worker stops
func (w *StorageWorker) Responses() <-chan contracts.StorageResponse {
	return w.responses
}

// Close stops the worker and closes the storage it owns. Queued requests are abandoned.
func (w *StorageWorker) Close() error {
	w.closeOnce.Do(func() {
		close(w.closing)
	})
	<-w.done

	return w.storage.Close()
}

func (w *StorageWorker) run() {
	defer close(w.done)
	defer close(w.responses)

	for {
		select {
		case request := <-w.requests:
			response, ok := w.handle(request)
			if !ok {
				continue
			}

			select {
			case w.responses <- response:
			case <-w.closing:
				return
			}

		case <-w.closing:
			return
		}
	}
}

func (w *StorageWorker) handle(request contracts.StorageRequest) (contracts.StorageResponse, bool) {
	if err := w.validator.ValidateStorageRequest(request); err != nil {
		w.logger.Warn("invalid storage request dropped", "requestId", request.RequestId, "error", err)
		w.metrics.InvalidMessages.WithLabelValues(BoundaryStorage).Inc()

		if request.RequestId == "" {
			return contracts.StorageResponse{}, false
		}

		return contracts.StorageResponse{
			Type:      contracts.StorageResponseError,
			RequestId: request.RequestId,
			Error:     err.Error(),
		}, true
	}

	// requests carry no deadline of their own; the caller stops waiting on its own context
	ctx := context.Background()
	response := contracts.StorageResponse{RequestId: request.RequestId}

	switch request.Type {
	case contracts.StorageRequestLoad:
		state, err := w.storage.Load(ctx)
		if err != nil {
			response.Type = contracts.StorageResponseError
			response.Error = err.Error()
		} else {
			response.Type = contracts.StorageResponseLoaded
			response.Payload = state
		}

	case contracts.StorageRequestSave:
		if err := w.storage.Save(ctx, request.Payload); err != nil {
			response.Type = contracts.StorageResponseError
			response.Error = err.Error()
		} else {
			response.Type = contracts.StorageResponseSaved
		}
	}

	return response, true
}

// StorageWorkerClient is the calling side of a StorageWorker. It correlates responses with
// requests by id, so it can be shared by any number of concurrent callers.
type StorageWorkerClient struct {
	worker *StorageWorker
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]chan contracts.StorageResponse
	closed  bool
	done    chan struct{}
}

func NewStorageWorkerClient(worker *StorageWorker, logger *slog.Logger) *StorageWorkerClient {
	client := &StorageWorkerClient{
		worker:  worker,
		logger:  logger,
		pending: map[string]chan contracts.StorageResponse{},
		done:    make(chan struct{}),
	}

	go client.dispatch()

	return client
}

func (c *StorageWorkerClient) Load(ctx context.Context) (contracts.SpreadsheetState, error) {
	response, err := c.roundTrip(ctx, contracts.StorageRequest{Type: contracts.StorageRequestLoad})
	if err != nil {
		return nil, err
	}

	return response.Payload, nil
}

func (c *StorageWorkerClient) Save(ctx context.Context, state contracts.SpreadsheetState) error {
	if state == nil {
		state = contracts.SpreadsheetState{}
	}

	_, err := c.roundTrip(ctx, contracts.StorageRequest{Type: contracts.StorageRequestSave, Payload: state})
	return err
}

func (c *StorageWorkerClient) Close() error {
	err := c.worker.Close()
	<-c.done

	return err
}

func (c *StorageWorkerClient) roundTrip(ctx context.Context, request contracts.StorageRequest) (contracts.StorageResponse, error) {
	request.RequestId = uuid.NewString()
	wait := make(chan contracts.StorageResponse, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return contracts.StorageResponse{}, contracts.WorkerClosedError
	}
	c.pending[request.RequestId] = wait
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, request.RequestId)
		c.mu.Unlock()
	}()

	if err := c.worker.Post(ctx, request); err != nil {
		return contracts.StorageResponse{}, err
	}

	select {
	case response, ok := <-wait:
		if !ok {
			return contracts.StorageResponse{}, contracts.WorkerClosedError
		}
		if response.Type == contracts.StorageResponseError {
			return response, fmt.Errorf("%w: %s", StorageWorkerError, response.Error)
		}
		return response, nil

	case <-ctx.Done():
		return contracts.StorageResponse{}, ctx.Err()
	}
}

func (c *StorageWorkerClient) dispatch() {
	defer close(c.done)

	for response := range c.worker.Responses() {
		c.mu.Lock()
		wait, ok := c.pending[response.RequestId]
		if ok {
			delete(c.pending, response.RequestId)
		}
		c.mu.Unlock()

		if !ok {
			c.logger.Warn("storage response without a waiting request", "requestId", response.RequestId)
			continue
		}

		wait <- response
	}

	c.mu.Lock()
	c.closed = true
	for requestId, wait := range c.pending {
		close(wait)
		delete(c.pending, requestId)
	}
	c.mu.Unlock()
}
