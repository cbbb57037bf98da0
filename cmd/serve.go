package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/metrics"
	"github.com/spigell/fitcheck/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fit assessment HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", server.DefaultAddr, "listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the fitcheck server", zap.String("version", version))

	m := metrics.New()
	application, err := newApplication(config, m, logger)
	if err != nil {
		logger.Fatal("initializing", zap.Error(err))
	}
	defer application.Close()

	srv := server.New(config.Server.Addr, server.Deps{
		Assessor: application.assessor,
		Models:   application.registry,
		Recent:   application.recent,
		Metrics:  m,
		Logger:   logger,
	})

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
