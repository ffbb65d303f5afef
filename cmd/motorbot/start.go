package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/motorbot/pkg/log"
	"github.com/sandevgo/motorbot/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the MotorBot services",
	Long:  `Initializes and starts all configured transports (LINE, Telegram, CLI) on top of the query resolution engine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting motorbot")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("motorbot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
