package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"sigs.k8s.io/external-dns/endpoint"

	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

type Api interface {
	Listen(address string) error
	Shutdown(ctx context.Context) error
	Test(req *http.Request, msTimeout ...int) (resp *http.Response, err error)
}

type api struct {
	logger *zap.Logger
	app    *fiber.App
}

func (a api) Test(req *http.Request, msTimeout ...int) (resp *http.Response, err error) {
	return a.app.Test(req, msTimeout...)
}

// Listen serves the status API until Shutdown is called.
func (a api) Listen(address string) error {
	listenAddress := normalizeAddress(address)
	if listenAddress != address {
		a.logger.Info("Changed listen address",
			zap.String("original", address),
			zap.String("new", listenAddress))
	}

	a.logger.Debug("Starting server", zap.String("address", listenAddress))
	return a.app.Listen(listenAddress)
}

func (a api) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down status server")
	err := a.app.ShutdownWithContext(ctx)
	if err != nil {
		a.logger.Error("error shutting down server", zap.String("error", err.Error()))
	}
	return err
}

// normalizeAddress binds "localhost:port" to all interfaces and turns a bare port into ":port".
func normalizeAddress(address string) string {
	if strings.HasPrefix(address, "localhost:") {
		return ":" + strings.Split(address, ":")[1]
	}
	if !strings.Contains(address, ":") {
		return ":" + address
	}
	return address
}

// StatusProvider exposes the updater state to the API without sharing it.
type StatusProvider interface {
	Status() (Status, error)
	Records(ctx context.Context) ([]*endpoint.Endpoint, error)
	GetDomainFilter() endpoint.DomainFilterInterface
}

func New(logger *zap.Logger, provider StatusProvider) Api {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Error("Unhandled error in request",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()))

			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Get("/healthz", Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Global middleware
	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(pprof.New(pprof.Config{Prefix: "/pprof"}))
	app.Use(fiberrecover.New())
	app.Use(helmet.New())

	statusRoutes := webhook{
		provider: provider,
		logger:   logger,
	}

	apiGroup := app.Group("/")
	apiGroup.Get("/", statusRoutes.GetDomainFilter)
	apiGroup.Get("/status", statusRoutes.Status)
	apiGroup.Get("/records", statusRoutes.Records)

	return &api{
		logger: logger,
		app:    app,
	}
}
