package routes

import (
	"log"

	"smartmatch/internal/breaker"
	"smartmatch/internal/config"
	"smartmatch/internal/database"
	"smartmatch/internal/delivery/http/handler"
	"smartmatch/internal/delivery/http/middleware"
	"smartmatch/internal/infrastructure/cache"
	"smartmatch/internal/metrics"
	"smartmatch/internal/pkg/jwt"
	"smartmatch/internal/repository"
	"smartmatch/internal/usecase"
	"smartmatch/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Deps struct {
	Logger       *log.Logger
	Orchestrator usecase.MatchingUsecase
	Breakers     *breaker.Registry
	Cache        *cache.Redis
	DB           database.DB
	History      repository.MatchHistoryRepository
	Metrics      *metrics.Metrics
	Hub          *ws.Hub
	JWT          jwt.Service
}

type Registry struct {
	cfg  config.Config
	deps Deps

	match  *handler.MatchHandler
	health *handler.HealthHandler
	admin  *handler.AdminHandler
	events *ws.Handler
}

func NewRegistry(cfg config.Config, deps Deps) *Registry {
	var dbPinger handler.Pinger
	if deps.DB != nil {
		dbPinger = deps.DB
	}

	return &Registry{
		cfg:  cfg,
		deps: deps,

		match:  handler.NewMatchHandler(deps.Orchestrator, deps.Breakers),
		health: handler.NewHealthHandler(cfg.App.AppName, deps.Cache, dbPinger),
		admin:  handler.NewAdminHandler(deps.Breakers, deps.Cache, deps.History, deps.Logger),
		events: ws.NewHandler(deps.Hub, deps.Logger),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(r.deps.Logger)
	accessMw := middleware.NewAccessLogMiddleware(r.deps.Logger)
	app.Use(errMw.Middleware())
	app.Use(accessMw.Middleware())

	r.health.RegisterRoutes(app)

	if r.deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.deps.Metrics.Handler()))
	}

	app.Get("/ws/events", r.events.HandleEvents)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	r.match.RegisterRoutes(v1)

	authMw := middleware.NewAuthMiddleware(r.deps.JWT)
	adminGroup := v1.Group("/admin", authMw.Middleware(), authMw.RequireAdmin())
	r.admin.RegisterRoutes(adminGroup)
}
