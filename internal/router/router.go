// router.go
package router

import (
	"net/http"
	"time"

	"signn-go/internal/config"
	"signn-go/internal/handlers"
	"signn-go/internal/models"
	"signn-go/internal/services"
	"signn-go/internal/session"
	"signn-go/internal/vision"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again later.")
}

func Setup(log *zap.Logger, manager *session.Manager, tracker *vision.Tracker, quiz *models.Quiz, notifier *services.OpsNotifier) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("signn_session", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(CSRFProtection())
	router.Use(RiderLoaderMiddleware())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	checkHandler := handlers.NewCheckHandler(log, manager, tracker, quiz, notifier)
	quizHandler := handlers.NewQuizHandler(log, quiz)
	adminHandler := handlers.NewAdminHandler(log)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		api.GET("/csrf", CSRFToken)
		api.POST("/auth/login", limiter, authHandler.Login)
		api.POST("/auth/register", limiter, authHandler.Register)
		api.POST("/auth/logout", authHandler.Logout)

		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			authorized.GET("/me", authHandler.Me)
			authorized.GET("/quiz", quizHandler.Questions)

			checkRoutes := authorized.Group("/checks")
			{
				checkRoutes.POST("", checkHandler.Create)
				checkRoutes.GET("/:id", checkHandler.Get)
				checkRoutes.POST("/:id/consent", checkHandler.Consent)
				checkRoutes.POST("/:id/frames", checkHandler.Frame)
				checkRoutes.POST("/:id/vision", checkHandler.Vision)
				checkRoutes.POST("/:id/cognitive", checkHandler.Cognitive)
				checkRoutes.POST("/:id/behavioral", checkHandler.Behavioral)
				checkRoutes.POST("/:id/finalize", checkHandler.Finalize)
			}

			adminRoutes := authorized.Group("/admin")
			{
				adminRoutes.GET("/recent-checks", adminHandler.RecentChecks)
				adminRoutes.GET("/fleet-status", adminHandler.FleetStatusChart)
			}
		}
	}

	return router
}
