package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/socialfeed/backend/internal/auth"
	"github.com/socialfeed/backend/internal/config"
	"github.com/socialfeed/backend/internal/database"
	"github.com/socialfeed/backend/internal/handlers"
	"github.com/socialfeed/backend/internal/media"
	"github.com/socialfeed/backend/internal/middleware"
)

type Server struct {
	cfg     *config.Config
	db      *database.Service
	tokens  *auth.TokenManager
	handler *handlers.Handler
}

// New wires the components together around the given database handle.
func New(cfg *config.Config, db *database.Service) (*Server, error) {
	files, err := media.NewStore(cfg.UploadDir, cfg.UploadPath)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	return &Server{
		cfg:     cfg,
		db:      db,
		tokens:  tokens,
		handler: handlers.NewHandler(db.DB(), tokens, files),
	}, nil
}

// HTTPServer returns the configured http.Server ready to listen.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// Uploaded media is served straight from the upload directory.
	r.Static(s.cfg.UploadPath, s.cfg.UploadDir)

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)
		api.GET("/posts", s.handler.Post.GetPosts)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(s.tokens, s.db.DB()))
		{
			protected.POST("/logout", s.handler.Auth.Logout)
			protected.GET("/profile", s.handler.User.GetProfile)

			protected.GET("/my-posts", s.handler.Post.GetMyPosts)
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:postId", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:postId", s.handler.Post.DeletePost)

			protected.POST("/posts/:postId/comments", s.handler.Comment.CreateComment)
			protected.GET("/posts/:postId/comments", s.handler.Comment.GetComments)
			protected.POST("/posts/:postId/reaction", s.handler.Reaction.ToggleReaction)
		}
	}

	return r
}
