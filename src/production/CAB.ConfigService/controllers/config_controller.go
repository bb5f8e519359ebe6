package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	logger "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Logger"
)

// ConfigController serves the loaded device configuration read-only.
// Secrets only ever leave through config.Summary, which masks them.
type ConfigController struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewConfigController creates a new configuration controller
func NewConfigController(cfg *config.Config, logger *logger.Logger) *ConfigController {
	return &ConfigController{
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterRoutes registers the configuration routes with Gin
func (c *ConfigController) RegisterRoutes(router *gin.Engine) {
	cfg := router.Group("/config")
	{
		cfg.GET("", c.GetConfig)
		cfg.GET("/network", c.GetNetwork)
		cfg.GET("/broker", c.GetBroker)
		cfg.GET("/identity", c.GetIdentity)
		cfg.GET("/topics", c.GetTopics)
		cfg.GET("/pins", c.ListPins)
		cfg.GET("/pins/:role", c.GetPin)
	}
}

func (c *ConfigController) GetConfig(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.cfg.Summary())
}

func (c *ConfigController) GetNetwork(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.cfg.Summary().Network)
}

func (c *ConfigController) GetBroker(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.cfg.Summary().Broker)
}

func (c *ConfigController) GetIdentity(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.cfg.Summary().Identity)
}

func (c *ConfigController) GetTopics(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"topics": c.cfg.Identity().Topics(),
		"wildcards": gin.H{
			"status":    config.WildcardTopic(config.TopicStatus),
			"heartbeat": config.WildcardTopic(config.TopicHeartbeat),
		},
	})
}

func (c *ConfigController) ListPins(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"board": "AI-Thinker ESP32-CAM",
		"pins":  config.PinSummaries(c.cfg.Pins()),
	})
}

func (c *ConfigController) GetPin(ctx *gin.Context) {
	role, err := config.ParsePinRole(ctx.Param("role"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, config.PinSummarize(role, c.cfg.Pin(role)))
}
