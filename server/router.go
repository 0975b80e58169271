package server

import (
	"time"

	"playlist-exporter/infrastructure/metrics"
	httpHandler "playlist-exporter/interfaces/http"
	"playlist-exporter/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	exportHandler httpHandler.IExportHandler,
	m *metrics.Metrics,
	allowOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Export-Cache"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	if m != nil {
		router.Use(middleware.RequestMetrics(m))
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.GET("/health", exportHandler.Healthz)

	api := router.Group("api")
	api.GET("/playlists/:playlistId/export", exportHandler.ExportCSV)
	api.GET("/runs", exportHandler.ListRuns)

	return router
}
