package health

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// StatusTTL bounds how often readiness probes reach MongoDB
const StatusTTL = 5 * time.Second

const statusKey = "status"

// HealthChecker reports whether the service can answer configuration queries
type HealthChecker struct {
	cfg    *config.Config
	client *mongo.Client
	cache  *cache.Cache
}

// NewHealthChecker creates a new health checker. client may be nil when the
// registry is kept in memory.
func NewHealthChecker(cfg *config.Config, client *mongo.Client) *HealthChecker {
	return &HealthChecker{
		cfg:    cfg,
		client: client,
		cache:  cache.New(StatusTTL, 2*StatusTTL),
	}
}

// PingMongo checks if the registry connection is healthy
func (h *HealthChecker) PingMongo(ctx context.Context) error {
	if h.client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	return h.client.Ping(ctx, readpref.Primary())
}

// GetHealthStatus returns the current health status, reusing a result younger than StatusTTL
func (h *HealthChecker) GetHealthStatus(ctx context.Context) map[string]interface{} {
	if cached, found := h.cache.Get(statusKey); found {
		return cached.(map[string]interface{})
	}

	status := h.check(ctx)
	h.cache.SetDefault(statusKey, status)
	return status
}

func (h *HealthChecker) check(ctx context.Context) map[string]interface{} {
	checks := make(map[string]interface{})
	overall := "ok"

	if h.cfg == nil {
		overall = "error"
		checks["config"] = map[string]interface{}{"status": "error", "error": "configuration not loaded"}
	} else {
		cfgCheck := map[string]interface{}{
			"status":     "ok",
			"cabinet_id": h.cfg.CabinetID(),
			"preset":     h.cfg.Broker().Kind(),
		}
		if placeholders := h.cfg.Placeholders(); len(placeholders) > 0 {
			cfgCheck["status"] = "degraded"
			cfgCheck["placeholders"] = placeholders
			overall = "degraded"
		}
		checks["config"] = cfgCheck
	}

	if h.client == nil {
		checks["registry"] = map[string]interface{}{"status": "ok", "backend": "memory"}
	} else if err := h.PingMongo(ctx); err != nil {
		checks["registry"] = map[string]interface{}{"status": "error", "backend": "mongodb", "error": err.Error()}
		overall = "error"
	} else {
		checks["registry"] = map[string]interface{}{"status": "ok", "backend": "mongodb"}
	}

	return map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    overall,
		"checks":    checks,
	}
}

// Ready is true unless a check failed outright
func Ready(status map[string]interface{}) bool {
	return status["status"] != "error"
}
