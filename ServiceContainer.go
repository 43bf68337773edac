package main

import (
	"collabSheet/contracts"
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServiceContainer holds one fully wired view
type ServiceContainer struct {
	Registry           *prometheus.Registry
	Metrics            *Metrics
	Storage            contracts.StateStorage
	StateStore         *SpreadsheetStateStore
	ExpressionExecutor contracts.ExpressionExecutor
	EvaluationWorker   *EvaluationWorker
	BroadcastChannel   contracts.BroadcastChannel
	Relay              *WebsocketRelay
	Coordinator        *SyncCoordinator
	ApiController      contracts.ApiController
	Router             *gin.Engine
}

func BuildServiceContainer(ctx context.Context, config *Config, logger *slog.Logger) (container *ServiceContainer, err error) {
	container = &ServiceContainer{Registry: prometheus.NewRegistry()}
	container.Registry.MustRegister(collectors.NewGoCollector())
	container.Metrics = NewMetrics(container.Registry)

	serializer := NewCellStateSerializer()
	canonicalizer := NewCanonicalizer()
	validator := NewMessageValidator()
	clock := NewMonotonicClock(SystemClock)

	defer func() {
		if err != nil {
			err = errors.Join(err, container.Close())
		}
	}()

	storage, err := OpenStateStorage(config.Storage, config.DocumentId, serializer)
	if err != nil {
		return container, err
	}

	container.Storage = NewStorageWorkerClient(
		NewStorageWorker(storage, validator, config.Sync.QueueSize, logger.With("component", "storage"), container.Metrics),
		logger,
	)

	container.StateStore = NewSpreadsheetStateStore(
		ctx, config.Grid, container.Storage, clock, config.Storage.Timeout,
		logger.With("component", "state"), container.Metrics,
	)

	container.ExpressionExecutor = NewExpressionExecutor(
		canonicalizer, NewCellReferenceResolver(canonicalizer), config.Evaluator.MaxDepth,
		logger.With("component", "evaluator"), container.Metrics,
	)
	container.EvaluationWorker = NewEvaluationWorker(
		container.ExpressionExecutor, validator, config.Evaluator.QueueSize,
		logger.With("component", "evaluator"), container.Metrics,
	)

	if config.Sync.ServeRelay {
		container.Relay = NewWebsocketRelay(config.Sync.QueueSize, logger.With("component", "relay"))
	}

	if config.Sync.RelayUrl != "" {
		channel, err := DialWebsocketBroadcastChannel(
			ctx, RelayChannelUrl(config.Sync.RelayUrl, config.Sync.Channel), logger.With("component", "broadcast"),
		)
		if err != nil {
			return container, err
		}
		container.BroadcastChannel = channel
	} else {
		bus := NewLocalBroadcastBus(config.Sync.QueueSize, logger.With("component", "broadcast"))
		container.BroadcastChannel = bus.Join(config.Sync.Channel)
	}

	container.Coordinator = NewSyncCoordinator(
		container.StateStore, container.EvaluationWorker, container.BroadcastChannel,
		serializer, validator, clock, config.Sync.QueueSize,
		logger.With("component", "sync"), container.Metrics,
	)

	container.ApiController = NewApiController(container.Coordinator, canonicalizer, config.Grid)
	container.Router = SetupRouter(container.ApiController, container.Relay, container.Registry)

	return container, nil
}

// Close releases everything in reverse build order. The state store flushes its last snapshot
// before the storage worker stops.
func (container *ServiceContainer) Close() error {
	var errs []error

	if container.Coordinator != nil {
		errs = append(errs, container.Coordinator.Close())
	}
	if container.Relay != nil {
		errs = append(errs, container.Relay.Close())
	}
	if container.BroadcastChannel != nil {
		errs = append(errs, container.BroadcastChannel.Close())
	}
	if container.EvaluationWorker != nil {
		errs = append(errs, container.EvaluationWorker.Close())
	}
	if container.StateStore != nil {
		errs = append(errs, container.StateStore.Close())
	}
	if container.Storage != nil {
		errs = append(errs, container.Storage.Close())
	}

	return errors.Join(errs...)
}
