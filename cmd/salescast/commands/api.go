package commands

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/api"
	"github.com/wonny/salescast/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "HTTP API 서버 실행",
	Long: `모델 정보와 예측을 제공하는 HTTP API 서버를 실행합니다.

Endpoints:
  GET /health
  GET /metrics
  GET /api/model
  GET /api/model/state
  GET /api/forecast?horizon=12

Example:
  go run ./cmd/salescast api`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		m, err := a.manager()
		if err != nil {
			return err
		}

		h := api.Handlers{
			Model:    handlers.NewModelHandler(a.store, m, a.log),
			Forecast: handlers.NewForecastHandler(m, a.store, a.cache(), a.cfg.Forecast.Horizon, a.log),
		}
		limiter := api.NewClientLimiter(a.cfg.Server.RateLimit, a.cfg.Server.RateBurst)
		srv := api.New(a.cfg, a.log, api.NewRouter(h, limiter, a.log))

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info().Msg("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
