package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/database"
	"github.com/Homesapp/HomesappNew-sub000/internal/router"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ServeCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the billing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is required")
			}
			if !skipMigrate {
				if err := database.AutoMigrate(rt.db); err != nil {
					return err
				}
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", rt.cfg.Server.Address, rt.cfg.Server.Port),
				Handler:           router.SetupRouter(rt.cfg, rt.db, rt.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("server listening", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("run server: %w", err)
			case <-ctx.Done():
			}

			rt.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations on start")
	return cmd
}
