package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/revision-history/controllers"
	"github.com/yeremiapane/revision-history/middlewares"
	"github.com/yeremiapane/revision-history/revisionable"
	"gorm.io/gorm"
)

type Options struct {
	AllowedOrigin string
	// RequestsPerSec caps requests per client IP; zero disables the limit.
	RequestsPerSec int
	// LoginEvery and LoginBurst configure the per-IP login limiter.
	LoginEvery time.Duration
	LoginBurst int
}

func SetupRouter(db *gorm.DB, resolver *revisionable.Resolver, opts Options) *gin.Engine {
	if opts.LoginEvery == 0 {
		opts.LoginEvery = 12 * time.Second
	}
	if opts.LoginBurst == 0 {
		opts.LoginBurst = 5
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.RequestsPerSec > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RequestsPerSec, time.Second).RateLimit())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	revisionCtrl := controllers.NewRevisionController(db, resolver)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter(opts.LoginEvery, opts.LoginBurst))
	{
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.POST("/users", middlewares.RequireRoles("admin"), userCtrl.CreateUser)

	// REVISIONS (admin, auditor)
	revisions := auth.Group("/revisions")
	revisions.Use(middlewares.RequireRoles("auditor"))
	{
		revisions.GET("", revisionCtrl.GetRevisions)
		revisions.GET("/:revision_id", revisionCtrl.GetRevisionByID)
		revisions.GET("/:revision_id/subject", revisionCtrl.GetRevisionSubject)
	}

	return r
}
