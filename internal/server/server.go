package server

import (
	"context"
	"net/http"

	"payment-ledger-sync/internal/config"
	"payment-ledger-sync/internal/handler"
	authmw "payment-ledger-sync/internal/middleware"
	"payment-ledger-sync/internal/repository"
	"payment-ledger-sync/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo               *echo.Echo
	log                *zap.Logger
	paymentSyncHandler *handler.PaymentSyncHandler
	auth               echo.MiddlewareFunc
	requireAdmin       echo.MiddlewareFunc
}

func NewServer(syncService service.PaymentSyncService, userRepo repository.UserRepository, authCfg config.Auth, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:               e,
		log:                log,
		paymentSyncHandler: handler.NewPaymentSyncHandler(syncService),
		auth:               authmw.JWTAuth([]byte(authCfg.JWTSecret), authCfg.Issuer),
		requireAdmin:       authmw.RequireAdmin(userRepo),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- admin --------
	admin := api.Group("/admin", s.auth, s.requireAdmin)
	admin.POST("/payments/sync", s.paymentSyncHandler.SyncPayments)
	admin.GET("/payments/sync/status", s.paymentSyncHandler.LastSyncStatus)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
