package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bilgisen/picreel/internal/app"
	"github.com/bilgisen/picreel/internal/config"
	"github.com/bilgisen/picreel/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "picreel",
		Short:         "Collect captioned images and turn them into articles and narrated videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newAddCmd(),
		newListCmd(),
		newArticleCmd(),
		newVideoCmd(),
		newPublishCmd(),
	)
	return root
}

// bootstrap loads configuration, initializes logging and opens the app.
func bootstrap(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.LogPretty,
	}); err != nil {
		return nil, err
	}

	return app.New(ctx, cfg)
}

func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		logger.Error().Err(err).Msg("Error closing application")
	}
}
