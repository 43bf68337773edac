package main

import (
	"collabSheet/contracts"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ApiVersion = "v1"

const syncPath = "sync"

// SetupRouter mounts the cell API. The relay and the metrics endpoint are optional.
func SetupRouter(controller contracts.ApiController, relay *WebsocketRelay, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()

	apiRouterGroup := router.Group("/api/" + ApiVersion)
	apiRouterGroup.POST("/cells/:cell_id", controller.SetCellAction)
	apiRouterGroup.GET("/cells/:cell_id", controller.GetCellAction)
	apiRouterGroup.GET("/sheet", controller.GetSheetAction)
	apiRouterGroup.GET("/state", controller.GetStateAction)

	if relay != nil {
		apiRouterGroup.GET("/"+syncPath+"/:channel", relay.SyncAction)
	}

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// SetupRelayRouter serves only the broadcast relay
func SetupRelayRouter(relay *WebsocketRelay, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()

	router.GET("/api/"+ApiVersion+"/"+syncPath+"/:channel", relay.SyncAction)
	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}
