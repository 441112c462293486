package main

import (
	"context"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/drivers/logger"
	"mobileforms-service/internal/pkg/utils"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func passCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass",
		Short: "Run one post-process pass and print its result as JSON",
		Long: `pass runs a single post-process pass over the pending area without starting the
API. It does not take the leader lock, so avoid running it next to a serving instance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPass(cmd)
		},
	}
}

func runPass(cmd *cobra.Command) error {
	driverConfig, internalConfig, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewZapLogger(driverConfig, internalConfig)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs, minioClient := queueStorage(driverConfig, internalConfig)
	_, postProcessUsecase, err := newEngine(ctx, config.Bootstrap{
		Minio:          minioClient,
		Filesystem:     fs,
		Logger:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	result, err := postProcessUsecase.RunPass(utils.WithRequestID(ctx))
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
