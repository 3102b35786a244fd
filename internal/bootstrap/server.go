package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/airtickets/api"
	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/middleware"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/Domenick1991/airtickets/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Services struct {
	Flights flights.FlightUseCase
	Tickets tickets.TicketUseCase
	// Checks are run by /healthz, keyed by dependency name.
	Checks map[string]Check
}

// Run serves HTTP until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info("http server listening", "address", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := time.Duration(cfg.HTTP.ShutdownSeconds) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		logger.Get().Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger())

	r.GET("/healthz", healthz(svc.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.HTTP.SwaggerDir != "" {
		r.Static("/swagger", cfg.HTTP.SwaggerDir)
		r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/tickets.swagger.json"))))
	}

	api.NewFlightHandler(svc.Flights).Register(r.Group("/flights"))

	authed := r.Group("", middleware.Auth(cfg.Auth.JWTSecret))
	api.NewTicketHandler(svc.Tickets).Register(authed.Group("/tickets"))
	api.NewCompanyHandler(svc.Flights).Register(authed.Group("/company", middleware.RequireManager()))

	return r
}

func healthz(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": report})
	}
}
