package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/accounts"
	"github.com/princinho/streamcatalog/controllers"
	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/metrics"
	"github.com/princinho/streamcatalog/middleware"
	"github.com/princinho/streamcatalog/models"
	"github.com/princinho/streamcatalog/utils"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Accounts       *accounts.Service
	Tokens         *utils.TokenService
	Stores         database.Stores
	Storage        utils.ObjectStorage
	ImageValidator *utils.FileValidator
	Limits         utils.PageLimits
	AuthLimiter    middleware.RateLimiter
	Logger         *logrus.Logger
}

func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	r := gin.New()

	// Every origin is allowed; preflights are answered here before routing.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(metrics.Middleware())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	limited := middleware.RateLimit(d.AuthLimiter)
	r.POST("/signup", limited, controllers.Signup(d.Accounts))
	r.POST("/login", limited, controllers.Login(d.Accounts, d.Tokens))
	r.POST("/refresh-token", limited, controllers.RefreshToken(d.Tokens))

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(d.Tokens, d.Stores.Revocations))
	{
		authed.GET("/check-auth", controllers.CheckAuth(d.Accounts))
		authed.POST("/update-profile", controllers.UpdateProfile(d.Accounts, d.Tokens))
		authed.POST("/change-password", controllers.ChangePassword(d.Accounts))

		authed.GET("/movies", controllers.GetMovies(d.Stores.Movies, d.Limits))
		authed.GET("/movies/:id", controllers.GetMovie(d.Stores.Movies))

		authed.GET("/movie-requests", controllers.GetMovieRequests(d.Stores.Requests))
		authed.POST("/movie-requests", controllers.CreateMovieRequest(d.Stores.Requests))
	}

	admin := authed.Group("/")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/movies", controllers.AddMovie(d.Stores.Movies))
		admin.DELETE("/movies/:id", controllers.DeleteMovie(d.Stores.Movies))

		admin.POST("/movie-requests/:id/approve", controllers.ApproveMovieRequest(d.Stores.Requests))
		admin.POST("/movie-requests/:id/reject", controllers.RejectMovieRequest(d.Stores.Requests))

		admin.GET("/admin/users", controllers.ListUsers(d.Accounts))
		admin.POST("/admin/users/:id/ban", controllers.BanUser(d.Accounts))
		admin.DELETE("/admin/users/:id", controllers.DeleteUser(d.Accounts))
		admin.GET("/admin/stats", controllers.GetStats(d.Accounts, d.Stores.Movies, d.Stores.Requests))
		admin.POST("/admin/uploads/thumbnail", controllers.UploadThumbnail(d.Storage, d.ImageValidator))
	}

	return r
}
