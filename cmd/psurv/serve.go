package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rpgo/portfolio-survival/internal/api"
	"github.com/rpgo/portfolio-survival/internal/api/handlers"
	"github.com/spf13/cobra"
)

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func newServeCmd() *cobra.Command {
	var addr, dataDir, origins string
	var maxPathMonths, maxPlans int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation API over HTTP",
		Long: `Serve the simulation API. Plans posted to /api/v1/simulate are run against
the market data files in --data-dir.

Environment: PSURV_ADDR, PSURV_DATA_DIR, PSURV_CORS_ORIGINS, API_ENV=production.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
				return fmt.Errorf("data directory %s not found", dataDir)
			}
			if os.Getenv("API_ENV") == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			logger := newCLILogger(cmd.ErrOrStderr(), verboseFlag(cmd))
			var allowed []string
			for _, o := range strings.Split(origins, ",") {
				if o = strings.TrimSpace(o); o != "" {
					allowed = append(allowed, o)
				}
			}
			router := api.NewRouter(api.Options{
				DataDir:        dataDir,
				AllowedOrigins: allowed,
				Logger:         logger,
				AccessLog:      true,
				MaxPathMonths:  maxPathMonths,
				MaxPlans:       maxPlans,
			})

			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s, market data from %s\n", addr, dataDir)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("PSURV_ADDR", ":8080"), "Listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", envOr("PSURV_DATA_DIR", "./data"), "Directory holding the market data CSV files")
	cmd.Flags().StringVar(&origins, "cors-origins", envOr("PSURV_CORS_ORIGINS", ""), "Comma separated allowed CORS origins (default any)")
	cmd.Flags().IntVar(&maxPathMonths, "max-path-months", handlers.DefaultMaxPathMonths, "Largest simulations × horizon months accepted per plan")
	cmd.Flags().IntVar(&maxPlans, "max-plans", handlers.DefaultMaxPlans, "Largest number of plans accepted by /api/v1/compare")
	return cmd
}
