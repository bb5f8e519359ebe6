package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	"gitlab.com/smartcabinet/cab.device_config/src/production/CAB.ConfigService/middleware"
	logger "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Logger"
	implementation "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Implementation"
	interfaces "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Interfaces"
	"golang.org/x/time/rate"
)

// RegistryController exposes the fleet registry that keeps cabinet IDs unique
type RegistryController struct {
	repo   interfaces.CabinetRepository
	cfg    *config.Config
	logger *logger.Logger
	now    func() time.Time
}

// NewRegistryController creates a new registry controller
func NewRegistryController(repo interfaces.CabinetRepository, cfg *config.Config, logger *logger.Logger) *RegistryController {
	return &RegistryController{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterRoutes registers the registry routes with Gin
func (c *RegistryController) RegisterRoutes(router *gin.Engine) {
	auth := middleware.RegistryAuthMiddleware(c.cfg.Server().RegistryToken)

	registry := router.Group("/registry", middleware.RateLimiter(rate.Limit(5), 20))
	{
		registry.GET("", c.ListCabinets)
		registry.GET("/:cabinet_id", c.GetCabinet)

		// Writes require the registry token
		registry.POST("/self", auth, c.RegisterSelf)
		registry.DELETE("/:cabinet_id", auth, c.Deregister)
	}
}

// RegisterSelf claims this unit's cabinet ID in the fleet registry
func (c *RegistryController) RegisterSelf(ctx *gin.Context) {
	record := implementation.RecordFromConfig(c.cfg, c.now())

	if err := c.repo.Register(ctx, record); err != nil {
		if errors.Is(err, interfaces.ErrCabinetExists) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.logger.ErrorWithError(err, "Failed to register cabinet")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.logger.WithField("preset", record.Preset).Info("Cabinet registered")
	ctx.JSON(http.StatusCreated, record)
}

func (c *RegistryController) ListCabinets(ctx *gin.Context) {
	records, err := c.repo.ListCabinets(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"cabinets": records,
		"total":    len(records),
	})
}

func (c *RegistryController) GetCabinet(ctx *gin.Context) {
	cabinetID := ctx.Param("cabinet_id")
	if !config.CabinetIDPattern.MatchString(cabinetID) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid cabinet_id"})
		return
	}

	record, err := c.repo.GetCabinet(ctx, cabinetID)
	if err != nil {
		if errors.Is(err, interfaces.ErrCabinetNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "cabinet not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, record)
}

func (c *RegistryController) Deregister(ctx *gin.Context) {
	cabinetID := ctx.Param("cabinet_id")
	if !config.CabinetIDPattern.MatchString(cabinetID) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid cabinet_id"})
		return
	}

	if err := c.repo.Deregister(ctx, cabinetID); err != nil {
		if errors.Is(err, interfaces.ErrCabinetNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "cabinet not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.logger.WithField("deregistered", cabinetID).Info("Cabinet deregistered")
	ctx.Status(http.StatusNoContent)
}
