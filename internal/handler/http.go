package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"imagibox-server/internal/service"
)

// Handler wires the application services to the HTTP surface.
type Handler struct {
	auth      *service.AuthService
	stories   *service.StoryService
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

// New creates the HTTP handler.
func New(auth *service.AuthService, stories *service.StoryService, analytics *service.AnalyticsService, logger *zap.Logger) *Handler {
	return &Handler{
		auth:      auth,
		stories:   stories,
		analytics: analytics,
		logger:    logger.Named("HTTP"),
	}
}

// RouterConfig carries the router-level settings.
type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	// StaticImageDir, when set, is served under /images for locally
	// stored illustrations.
	StaticImageDir string
	// AuthRateLimit, when set, throttles the public credential endpoints.
	AuthRateLimit gin.HandlerFunc
}

// NewRouter builds the gin engine with logging, CORS, metrics and all
// application routes.
func (h *Handler) NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(ZapLoggingMiddleware(h.logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if cfg.StaticImageDir != "" {
		router.Static("/images", cfg.StaticImageDir)
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.registerRoutes(router, cfg.AuthRateLimit)

	// Prometheus middleware goes last so route names are known.
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	return router
}

func (h *Handler) registerRoutes(router *gin.Engine, authRateLimit gin.HandlerFunc) {
	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		public := auth.Group("")
		if authRateLimit != nil {
			public.Use(authRateLimit)
		}
		public.POST("/register", h.register)
		public.POST("/login", h.login)

		authed := auth.Group("")
		authed.Use(h.AuthMiddleware())
		authed.GET("/me", h.me)
		authed.POST("/kids", h.createKid)
		authed.GET("/kids", h.listKids)
	}

	stories := api.Group("/stories")
	stories.Use(h.AuthMiddleware())
	{
		stories.POST("/generate-one-shot", h.generateOneShot)
		stories.POST("/generate-interactive", h.generateInteractive)
		stories.POST("/:id/chapters/next", h.continueChapter)
		stories.GET("", h.listStories)
		stories.GET("/:id", h.getStory)
		stories.DELETE("/:id", h.deleteStory)
	}

	quota := api.Group("/quota")
	quota.Use(h.AuthMiddleware())
	quota.GET("/remaining", h.remainingQuota)

	analytics := api.Group("/analytics")
	analytics.Use(h.AuthMiddleware())
	{
		analytics.GET("/dashboard", h.dashboard)
		analytics.GET("/mood-distribution", h.moodDistribution)
	}
}
