package http

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/sujalbistaa/postboard/internal/auth"
	"github.com/sujalbistaa/postboard/internal/config"
	"github.com/sujalbistaa/postboard/internal/events"
	"github.com/sujalbistaa/postboard/internal/store"
	"github.com/sujalbistaa/postboard/internal/upload"
)

const sessionName = "postboard_session"

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) error {

	// --- Dependencies ---
	st := store.New(db)
	authManager, err := auth.NewManager(st, cfg.BcryptCost)
	if err != nil {
		return err
	}
	env := &Env{
		Store:          st,
		Auth:           authManager,
		Events:         events.NewLogger(st),
		Uploads:        upload.New(cfg.UploadDir),
		MaxUploadBytes: cfg.MaxUploadMB << 20,
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = env.MaxUploadBytes

	// --- Middleware ---

	// Apply global middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	corsConfig := cors.Config{
		AllowOrigins:  []string{cfg.CORSOrigin},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if cfg.CORSOrigin != "*" {
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, sessionStore))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(cfg.AuthRateRPS), cfg.AuthRateBurst)

	// --- Pages ---

	router.GET("/", env.Index)
	router.GET("/allposts", env.AllPosts)
	router.GET("/posts/:id", env.ShowPost)

	router.GET("/login", env.LoginForm)
	router.POST("/login", RateLimitMiddleware(limiter), env.Login)
	router.GET("/register", env.RegisterForm)
	router.POST("/register", RateLimitMiddleware(limiter), env.Register)
	router.GET("/logout", env.Logout)

	members := router.Group("/", env.RequireLogin())
	{
		members.GET("/profile", env.Profile)
		members.GET("/addpost", env.AddPostForm)
		members.POST("/addpost", env.AddPost)
		members.POST("/posts/:id/comments", env.AddComment)
	}

	// --- Uploaded files and profile images ---
	router.Static("/uploads", env.Uploads.Dir())
	router.Static("/images", cfg.ImageDir)

	return nil
}
