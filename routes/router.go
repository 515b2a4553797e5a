package routes

import (
	"context"
	"errors"
	"time"

	"p2h.app/configs/configslog"
	"p2h.app/pkg/apiresponse"
	"p2h.app/pkg/metrics"
	"p2h.app/pkg/notifier"
	"p2h.app/pkg/sessiontoken"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies is everything the HTTP layer needs from the process.
type Dependencies struct {
	DB       *gorm.DB
	Issuer   *sessiontoken.Issuer
	Notifier notifier.Notifier
	// Location decides what "today" means for fleet and vehicle views.
	Location     *time.Location
	SecureCookie bool
	// AccessLog enables the per-request log line.
	AccessLog bool
}

type serviceSet struct {
	auth      services.IAuthService
	forms     services.IP2HFormService
	checklist services.IChecklistService
	summary   services.ISummaryService
	review    services.IReviewService
	reference services.IReferenceService
}

func newServiceSet(deps Dependencies) *serviceSet {
	return &serviceSet{
		auth:      services.NewAuthService(deps.DB, deps.Issuer),
		forms:     services.NewP2HFormService(deps.DB),
		checklist: services.NewChecklistService(deps.DB),
		summary:   services.NewSummaryService(deps.DB, deps.Location),
		review:    services.NewReviewService(deps.DB, deps.Notifier),
		reference: services.NewReferenceService(deps.DB),
	}
}

// NewApp builds the Fiber application with every route registered.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "p2h",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	SetupRoutes(app, deps)
	return app
}

// SetupRoutes installs the global middleware and all route groups.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Use(recoverMiddleware.New())
	app.Use(requestid.New())
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(metrics.Middleware())

	app.Get("/healthz", healthHandler(deps.DB))
	app.Get("/metrics", metrics.Handler())

	svc := newServiceSet(deps)
	api := app.Group("/api")
	registerAuthRoutes(api, deps, svc)
	registerDriverRoutes(api, deps, svc)
	registerPengawasRoutes(api, deps, svc)
	registerAdminRoutes(api, deps, svc)
	registerSharedRoutes(api, deps, svc)

	app.Use(notFoundHandler)
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			configslog.Log.Warn("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return apiresponse.Error(c, fiber.StatusNotFound, "route not found")
}

// errorHandler renders errors that escape handlers in the API envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		configslog.Log.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	}
	return apiresponse.Error(c, code, message)
}
