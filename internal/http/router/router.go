package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/ignatzorin/portfolio-backend/internal/config"
	"github.com/ignatzorin/portfolio-backend/internal/http/handlers"
	"github.com/ignatzorin/portfolio-backend/internal/http/middleware"
)

// Handlers собирает хэндлеры всех групп маршрутов.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Public *handlers.PublicHandler
	Admin  *handlers.AdminHandler
	WS     *handlers.WSHandler
	Health *handlers.HealthHandler
	Owners middleware.OwnerResolver
}

// SetupRouter настраивает gin и маршруты API.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())

	if h.Health != nil {
		r.GET("/health", h.Health.Health)
	}
	// Листинг каталогов выключен: по нему можно перечислить файлы владельца.
	r.StaticFS("/media", gin.Dir(cfg.MediaStoragePath, false))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/signup", h.Auth.Signup)
		authGroup.POST("/signin", h.Auth.Signin)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/signout", h.Auth.Signout)
	}

	public := api.Group("/public/:ownerId", middleware.UUIDValidator("ownerId"))
	{
		public.GET("/:entity", h.Public.Section)
		public.POST("/contact", middleware.ContactRateLimit(cfg.ContactRateLimit), h.Public.Contact)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.Owners))
	{
		if h.WS != nil {
			admin.GET("/ws", h.WS.Handle)
		}

		admin.GET("/:entity", h.Admin.List)
		admin.GET("/:entity/schema", h.Admin.Schema)
		admin.DELETE("/:entity/:id", middleware.UUIDValidator("id"), h.Admin.Delete)

		form := admin.Group("/:entity/form")
		form.GET("", h.Admin.Form)
		form.DELETE("", h.Admin.Cancel)
		form.PATCH("", h.Admin.SetFields)
		form.POST("/new", h.Admin.StartNew)
		form.POST("/edit/:id", middleware.UUIDValidator("id"), h.Admin.StartEdit)
		form.POST("/save", h.Admin.Save)

		uploads := admin.Group("/:entity/uploads/:field")
		uploads.POST("", h.Admin.SelectFile)
		uploads.GET("", h.Admin.UploadStatus)
		uploads.DELETE("", h.Admin.RemoveUpload)
		uploads.POST("/commit", h.Admin.CommitUpload)
		uploads.GET("/preview", h.Admin.Preview)
	}

	return r
}

// WithCORS оборачивает движок в CORS-обработчик для разрешённых origins.
func WithCORS(cfg *config.Config, engine http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "X-Requested-With"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler(engine)
}
