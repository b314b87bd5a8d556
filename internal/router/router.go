package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-blog-service/internal/config"
	"go-blog-service/internal/handler"
	"go-blog-service/internal/metrics"
	"go-blog-service/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	permissionMiddleware *middleware.PermissionMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
	healthHandler *handler.HealthHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Instrument)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
		})

		// Registration is the only unauthenticated write. It seeds the
		// account together with the rule that lets the account manage
		// its own resource path.
		api.Post("/users", userHandler.Create)

		api.Route("/users/{username}", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuth)
			users.Use(permissionMiddleware.RequirePermission)
			users.Get("/", userHandler.Get)
			users.Delete("/", userHandler.Delete)
		})

		api.Route("/posts", func(posts chi.Router) {
			posts.Use(authMiddleware.RequireAuth)
			posts.Get("/", postHandler.List)
			posts.Post("/", postHandler.Create)
			posts.Delete("/", postHandler.BatchDelete)
			posts.Get("/{id}", postHandler.Get)
			posts.Put("/{id}", postHandler.Update)
			posts.Delete("/{id}", postHandler.Delete)
		})
	})

	return r
}
