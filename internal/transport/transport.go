package transport

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/WB_L3/watermark/internal/transport/middleware"
)

// InitRoutes serves the web form from webDir and forwards the watermark API.
func InitRoutes(h *WatermarkHandler, webDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.POST("/api/watermark", h.ApplyWatermark)
	router.GET("/static/results/:file", h.GetResult)

	if webDir != "" {
		router.Static("/web", webDir)
		router.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(webDir, "index.html"))
		})
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "watermark-form",
		})
	})
	return router
}
