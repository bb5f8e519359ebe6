package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	"gitlab.com/smartcabinet/cab.device_config/src/production/CAB.ConfigService/controllers"
	container "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Container"
)

func main() {
	configFile := flag.String("config", "", "YAML device configuration file (defaults to $"+config.ConfigPathEnv+")")
	envFile := flag.String("env", "", "env file to load before reading the environment")
	flag.Parse()

	ctr, err := container.NewContainer(config.LoadOptions{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		for _, cerr := range config.ConfigurationErrors(err) {
			fmt.Fprintln(os.Stderr, cerr)
		}
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger().WithComponent("config-service")
	cfg := ctr.GetConfig()
	logger.WithField("preset", cfg.Broker().Kind()).Info("Starting device configuration service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cabinetRepo, err := ctr.GetCabinetRepository(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to initialize cabinet registry")
	}

	healthChecker, err := ctr.GetHealthChecker(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to initialize health checker")
	}

	server := cfg.Server()
	if server.RegistryToken == "" {
		logger.Warn("REGISTRY_TOKEN not set, registry writes are disabled")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	controllers.NewHealthController(healthChecker, logger).RegisterRoutes(router)
	controllers.NewConfigController(cfg, logger).RegisterRoutes(router)
	controllers.NewRegistryController(cabinetRepo, cfg, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":" + server.Port,
		Handler:      router,
		ReadTimeout:  server.ReadTimeout,
		WriteTimeout: server.WriteTimeout,
		IdleTimeout:  server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting on port " + server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("Configuration service running... press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
