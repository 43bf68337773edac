package main

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildServiceContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	t.Run("local bus with bolt storage", func(t *testing.T) {
		config := DefaultConfig()
		config.Storage.Path = _createTmpDbPath(t)

		serviceContainer, err := BuildServiceContainer(ctx, config, _newTestLogger())
		require.NoError(t, err)
		defer serviceContainer.Close()

		// check storage
		assert.NotNil(t, serviceContainer.Storage)
		assert.IsType(t, &StorageWorkerClient{}, serviceContainer.Storage)

		// check expression executor
		assert.NotNil(t, serviceContainer.ExpressionExecutor)
		assert.IsType(t, &ExpressionExecutor{}, serviceContainer.ExpressionExecutor)

		expressionExecutor := serviceContainer.ExpressionExecutor.(*ExpressionExecutor)
		assert.IsType(t, &Canonicalizer{}, expressionExecutor.canonicalizer)
		assert.Equal(t, DefaultMaxFormulaDepth, expressionExecutor.maxDepth)

		// check state
		assert.NotNil(t, serviceContainer.StateStore)
		assert.Len(t, serviceContainer.StateStore.Snapshot(), DefaultGridColumns*DefaultGridRows)

		// check broadcast channel
		assert.IsType(t, &LocalBroadcastEndpoint{}, serviceContainer.BroadcastChannel)
		assert.Nil(t, serviceContainer.Relay)

		// check coordinator
		assert.NotNil(t, serviceContainer.Coordinator)
		assert.Equal(t, serviceContainer.StateStore, serviceContainer.Coordinator.store)
		assert.Equal(t, serviceContainer.BroadcastChannel, serviceContainer.Coordinator.channel)

		// check api controller
		assert.IsType(t, &ApiController{}, serviceContainer.ApiController)
		apiController := serviceContainer.ApiController.(*ApiController)
		assert.Equal(t, serviceContainer.Coordinator, apiController.Coordinator)
		assert.Equal(t, expressionExecutor.canonicalizer, apiController.canonicalizer)

		// check router: 4 api routes + health check + metrics
		assert.NotNil(t, serviceContainer.Router)
		assert.GreaterOrEqual(t, len(serviceContainer.Router.Routes()), 6)
	})

	t.Run("served relay and memory storage", func(t *testing.T) {
		config := DefaultConfig()
		config.Storage.Driver = StorageDriverMemory
		config.Sync.ServeRelay = true

		serviceContainer, err := BuildServiceContainer(ctx, config, _newTestLogger())
		require.NoError(t, err)
		defer serviceContainer.Close()

		assert.NotNil(t, serviceContainer.Relay)
		assert.GreaterOrEqual(t, len(serviceContainer.Router.Routes()), 7)
	})

	t.Run("relay client", func(t *testing.T) {
		relay, relayUrl := _startRelayServer(t)

		config := DefaultConfig()
		config.Storage.Driver = StorageDriverMemory
		config.Sync.RelayUrl = relayUrl

		serviceContainer, err := BuildServiceContainer(ctx, config, _newTestLogger())
		require.NoError(t, err)
		defer serviceContainer.Close()

		assert.IsType(t, &WebsocketBroadcastChannel{}, serviceContainer.BroadcastChannel)
		assert.Eventually(t, func() bool {
			return relay.Peers(DefaultSyncChannel) == 1
		}, _eventuallyWait, _eventuallyTick)
	})

	t.Run("unreachable relay", func(t *testing.T) {
		config := DefaultConfig()
		config.Storage.Driver = StorageDriverMemory
		config.Sync.RelayUrl = "ws://127.0.0.1:1/api/v1/sync"

		_, err := BuildServiceContainer(ctx, config, _newTestLogger())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "dial relay")
	})

	t.Run("unusable storage", func(t *testing.T) {
		config := DefaultConfig()
		config.Storage.Driver = StorageDriverBadger
		config.Storage.Path = "/dev/null/badger"

		_, err := BuildServiceContainer(ctx, config, _newTestLogger())
		assert.Error(t, err)
	})
}
