package main

import (
	"collabSheet/contracts"
	"context"
	"log/slog"
	"sync"
)

// EvaluationWorker is the formula execution context of a view: one goroutine,
// one evaluation at a time, exactly one response per valid request.
type EvaluationWorker struct {
	executor  contracts.ExpressionExecutor
	validator *MessageValidator
	logger    *slog.Logger
	metrics   *Metrics

	requests  chan contracts.EvaluationRequest
	results   chan contracts.EvaluationResponse
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewEvaluationWorker(
	executor contracts.ExpressionExecutor, validator *MessageValidator, queueSize int,
	logger *slog.Logger, metrics *Metrics,
) *EvaluationWorker {
	worker := &EvaluationWorker{
		executor:  executor,
		validator: validator,
		logger:    logger,
		metrics:   metrics,
		requests:  make(chan contracts.EvaluationRequest, queueSize),
		results:   make(chan contracts.EvaluationResponse, queueSize),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}

	go worker.run()

	return worker
}

func (w *EvaluationWorker) Submit(ctx context.Context, request contracts.EvaluationRequest) error {
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

// Results is closed once the worker stops
func (w *EvaluationWorker) Results() <-chan contracts.EvaluationResponse {
	return w.results
}

func (w *EvaluationWorker) Close() error {
	w.closeOnce.Do(func() {
		close(w.closing)
	})
	<-w.done

	return nil
}

func (w *EvaluationWorker) run() {
	defer close(w.done)
	defer close(w.results)

	for {
		select {
		case request := <-w.requests:
			if err := w.validator.ValidateEvaluationRequest(request); err != nil {
				w.logger.Warn("invalid evaluation request dropped", "cellId", request.CellId, "error", err)
				w.metrics.InvalidMessages.WithLabelValues(BoundaryEvaluation).Inc()
				continue
			}

			response := contracts.EvaluationResponse{
				CellId:        request.CellId,
				RawInput:      request.RawInput,
				ComputedValue: w.executor.Evaluate(request.RawInput, request.Spreadsheet),
			}

			select {
			case w.results <- response:
			case <-w.closing:
				return
			}

		case <-w.closing:
			return
		}
	}
}
