package main

import (
	"context"
	"errors"
	"fmt"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/drivers/database"
	"mobileforms-service/internal/app/drivers/logger"
	"mobileforms-service/internal/app/drivers/messaging"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the operator API and the post-process worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	driverConfig, internalConfig, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewZapLogger(driverConfig, internalConfig)
	defer log.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fs, minioClient := queueStorage(driverConfig, internalConfig)
	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	app, err := bootstrapingTheApp(config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Minio:          minioClient,
		Filesystem:     fs,
		Registry:       registry,
		Logger:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	})
	if err != nil {
		return err
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	if err := app.Worker.Start(workerCtx); err != nil {
		return fmt.Errorf("start post-process worker: %w", err)
	}

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", internalConfig.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	log.Info("Waiting for pending requests and the running pass to finish")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	app.Worker.Stop()

	if err := rabbitMQ.Close(); err != nil {
		log.Warn("Failed to close rabbitMQ connection", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		log.Warn("Failed to close redis client", zap.Error(err))
	}
	if err := mongoDB.Disconnect(shutdownCtx); err != nil {
		log.Warn("Failed to disconnect mongo client", zap.Error(err))
	}

	log.Info("Server exiting")
	return nil
}
