package main

import (
	"context"

	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/bilgisen/picreel/internal/api"
	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/middleware"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)
			if port != "" {
				a.Config.Port = port
			}

			logger.Info().Str("env", a.Config.Env).Msg("Starting application...")
			log := logger.Get()

			server := api.NewServer(a)
			server.Use(recover.New())
			server.Use(middleware.RequestLogger())
			api.SetupRoutes(server, a)

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", a.Config.Port).Msg("Starting server")
				errCh <- server.Listen(":" + a.Config.Port)
			}()

			// the root context is cancelled on SIGINT and SIGTERM
			select {
			case <-cmd.Context().Done():
			case err := <-errCh:
				return err
			}

			log.Info().Msg("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
			defer cancel()
			if err := server.ShutdownWithContext(ctx); err != nil {
				log.Error().Err(err).Msg("Server forced to shutdown")
			}

			log.Info().Msg("Server exited properly")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}
