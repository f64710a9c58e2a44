package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmunozv/crudhub/internal/config"
	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/http/handlers"
	"github.com/dmunozv/crudhub/internal/http/middlewares"
	"github.com/dmunozv/crudhub/internal/observability"
	"github.com/dmunozv/crudhub/internal/repo/postgres"
	"github.com/dmunozv/crudhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("crudhub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	productsRepo := postgres.NewProductsRepo(pool, prom)

	// services and handlers
	usersService := service.NewUsersService(usersRepo)
	productsService := service.NewProductsService(productsRepo, usersRepo)

	usersHandler := handlers.NewUsersHandler(usersService)
	productsHandler := handlers.NewProductsHandler(productsService, usersService)

	auth := middlewares.NewAuthMiddleware(usersRepo)

	publicLimiter := middlewares.NewRateLimiter(20, time.Minute)
	authedLimiter := middlewares.NewRateLimiter(120, time.Minute)

	api := r.Group("/api")

	// open registration endpoint
	api.POST("/users",
		publicLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		usersHandler.CreateUser,
	)

	authed := api.Group("",
		auth.RequireAuth(),
		authedLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
	)

	// /users/me is served by GetUserById; gin cannot mount a static
	// sibling next to :id
	authed.GET("/users", auth.RequireRole(user.RoleAdmin), usersHandler.ListUsers)
	authed.GET("/users/:id", usersHandler.GetUserById)
	authed.PUT("/users/:id", usersHandler.UpdateUser)
	authed.DELETE("/users/:id", usersHandler.DeleteUser)

	// /products/my-products is served by GetProductById, same reason
	authed.GET("/products", auth.RequireRole(user.RoleAdmin), productsHandler.ListProducts)
	authed.POST("/products", productsHandler.CreateProduct)
	authed.GET("/products/:id", productsHandler.GetProductById)
	authed.PUT("/products/:id", productsHandler.UpdateProduct)
	authed.DELETE("/products/:id", productsHandler.DeleteProduct)

	return r
}
