package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tradie-match-server/logger"
)

const (
	maxRequestBytes = 10 * 1024 * 1024
	limiterIdleTTL  = time.Hour
)

// RateRule is the limit applied to requests whose route starts with Prefix.
type RateRule struct {
	Prefix string
	Method string
	Limit  rate.Limit
	Burst  int
}

// DefaultRateRules relax the stream and calendar endpoints and keep the
// rest at 10 requests per minute with a burst of 20.
var DefaultRateRules = []RateRule{
	{Prefix: "/api/v1/ws", Limit: rate.Every(time.Second), Burst: 5},
	{Prefix: "/api/v1/profiles/me/location", Limit: rate.Every(2 * time.Second), Burst: 2},
	{Prefix: "/api/v1/discovery", Method: http.MethodGet, Limit: rate.Every(time.Second), Burst: 5},
	{Prefix: "/api/v1/jobs", Method: http.MethodGet, Limit: rate.Every(time.Second), Burst: 5},
	{Prefix: "/api/v1/calendar", Limit: rate.Every(time.Second), Burst: 10},
}

var defaultRule = RateRule{Limit: rate.Every(time.Minute / 10), Burst: 20}

// RateLimiter stores a limiter per route and client IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	mutex    sync.Mutex
	rules    []RateRule
	fallback RateRule
	now      func() time.Time
}

func NewRateLimiter(rules []RateRule) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rules:    rules,
		fallback: defaultRule,
		now:      time.Now,
	}
}

// GetLimiterWithConfig returns the limiter for key, creating it with limit
// and burst on first use.
func (rl *RateLimiter) GetLimiterWithConfig(key string, limit rate.Limit, burst int) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		rl.limiters[key] = limiter
	}
	rl.lastSeen[key] = rl.now()
	return limiter
}

// Cleanup removes limiters idle for longer than an hour.
func (rl *RateLimiter) Cleanup() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	removed := 0
	now := rl.now()
	for key, t := range rl.lastSeen {
		if now.Sub(t) > limiterIdleTTL {
			delete(rl.limiters, key)
			delete(rl.lastSeen, key)
			removed++
		}
	}
	return removed
}

// Len is the number of live limiters.
func (rl *RateLimiter) Len() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) ruleFor(method, path string) RateRule {
	for _, r := range rl.rules {
		if strings.HasPrefix(path, r.Prefix) && (r.Method == "" || r.Method == method) {
			return r
		}
	}
	return rl.fallback
}

// Middleware rejects requests over the route's limit with 429.
func (rl *RateLimiter) Middleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		clientIP := c.ClientIP()
		rule := rl.ruleFor(c.Request.Method, path)

		key := c.Request.Method + " " + path + "|" + clientIP
		if !rl.GetLimiterWithConfig(key, rule.Limit, rule.Burst).Allow() {
			log.Warn("🚫 Rate limit exceeded",
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.String("ip", clientIP))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests. Please try again later.",
				"retry_after": 60,
			})
			return
		}
		c.Next()
	}
}

// AuthRateLimiter is the stricter limit for sign-in, sign-up and password
// reset: 5 requests per minute per IP.
func AuthRateLimiter() *RateLimiter {
	rl := NewRateLimiter(nil)
	rl.fallback = RateRule{Limit: rate.Every(time.Minute / 5), Burst: 5}
	return rl
}

// SecurityHeadersMiddleware adds security headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' data: https:; connect-src 'self' ws: wss:;")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		c.Header("Server", "")
		c.Next()
	}
}

// CORSMiddleware allows the configured front-end origins. With none
// configured any origin is allowed, without credentials.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "User-Agent", "X-Requested-With"},
		ExposeHeaders:   []string{"Content-Length", "Content-Type"},
		AllowWebSockets: true,
		MaxAge:          24 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// InputValidationMiddleware bounds the body size and checks the content type
// of writes.
func InputValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxRequestBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "Request too large",
				"message": "Request body exceeds maximum size limit",
			})
			return
		}

		method := c.Request.Method
		if (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) && c.Request.ContentLength != 0 {
			contentType := c.GetHeader("Content-Type")
			if !strings.Contains(contentType, "application/json") &&
				!strings.Contains(contentType, "multipart/form-data") &&
				!strings.Contains(contentType, "application/x-www-form-urlencoded") {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error":   "Invalid content type",
					"message": "Content-Type must be application/json, multipart/form-data, or application/x-www-form-urlencoded",
				})
				return
			}
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
		c.Next()
	}
}

// RequestLogger logs every request once it has been served.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := AccountID(c); id != "" {
			fields = append(fields, zap.String("account_id", id))
		}
		switch {
		case status >= 500:
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			log.Error("❌ Request failed", err, fields...)
		case status >= 400:
			log.Warn("⚠️ Request rejected", fields...)
		default:
			log.Debug("✅ Request served", fields...)
		}
	}
}

// Recovery turns a panic into a 500 and logs it.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("💥 Panic recovered", nil,
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"message": "An internal server error occurred",
		})
	})
}
