package handlers

import (
	"net/http"

	"thermowatch/internal/logger"
	"thermowatch/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Live stream over HTTP upgrade, same port
	router.GET("/ws", h.wsConnect)

	return router
}

// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

// Reads are public. Every mutating route runs the bearer guard first.
func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		h.registerReadingRoutes(api)
		h.registerThresholdRoutes(api)
		api.GET("/live", h.getLive)
		api.GET("/events", h.authorize, h.getEvents)
	}
}

func (h *Handler) registerReadingRoutes(api *gin.RouterGroup) {
	readings := api.Group("/readings")
	{
		readings.GET("", h.listReadings)
		readings.GET("/latest", h.latestReading)
		// Body example: {"value":31.5,"observed_at":"2025-08-27T15:04:05Z"}
		readings.POST("", h.authorize, h.submitReading)
		readings.DELETE("/clear", h.authorize, h.clearReadings)
		readings.DELETE("/:id", h.authorize, h.removeReading)
	}
}

func (h *Handler) registerThresholdRoutes(api *gin.RouterGroup) {
	thresholds := api.Group("/thresholds")
	{
		thresholds.GET("", h.listThresholds)
		thresholds.GET("/latest", h.latestThreshold)
		// Body example: {"value":30,"note":"summer profile"}
		thresholds.POST("", h.authorize, h.createThreshold)
		thresholds.DELETE("/clear", h.authorize, h.clearThresholds)
		thresholds.DELETE("/:id", h.authorize, h.removeThreshold)
	}
}
