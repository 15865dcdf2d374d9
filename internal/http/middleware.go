package http

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujalbistaa/postboard/internal/auth"
	"github.com/sujalbistaa/postboard/internal/store"
)

const (
	userIDContextKey = "userID"
	sweepInterval    = 10 * time.Minute
)

// SecurityHeadersMiddleware adds basic, sensible security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevents clickjacking
		c.Header("X-Frame-Options", "DENY")
		// Prevents MIME-type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		csp := "default-src 'self';"
		csp += " img-src 'self' data:;"
		csp += " style-src 'self' 'unsafe-inline';"
		csp += " form-action 'self';"
		c.Header("Content-Security-Policy", csp)

		c.Next()
	}
}

// RequireLogin redirects anonymous visitors to the login page. A session
// whose user no longer exists is cleared and sent home. The session user id
// is stored on the context for the handlers behind it.
func (e *Env) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			redirect(c, "/login", flashDanger, "Please log in first.")
			c.Abort()
			return
		}

		if _, err := e.Store.UserByID(c.Request.Context(), userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				auth.ClearSession(c)
				redirect(c, "/", flashDanger, "User not found!")
				c.Abort()
				return
			}
			log.Printf("Error fetching session user %d: %v", userID, err)
			c.String(http.StatusInternalServerError, "Failed to load session")
			c.Abort()
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// sessionUserID reads the id stored by RequireLogin.
func sessionUserID(c *gin.Context) uint {
	return c.GetUint(userIDContextKey)
}

// --- Rate Limiter ---

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	visitors  map[string]*rate.Limiter
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:  make(map[string]*rate.Limiter),
		rps:       r,
		burst:     b,
		lastSweep: time.Now(),
	}
}

func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastSweep) > sweepInterval {
		rl.sweep()
	}

	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

// sweep drops limiters whose bucket has refilled. Callers hold mu.
func (rl *IPRateLimiter) sweep() {
	now := time.Now()
	for ip, l := range rl.visitors {
		if l.TokensAt(now) >= float64(rl.burst) {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			c.String(http.StatusTooManyRequests, "Too many requests. Please wait.")
			c.Abort()
			return
		}
		c.Next()
	}
}
