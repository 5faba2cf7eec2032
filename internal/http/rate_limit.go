package http

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig define la cuota por usuario para escrituras de respuestas.
type RateLimiterConfig struct {
	Rate    rate.Limit
	Burst   int
	// IdleTTL controla cuando se descarta el limiter de un usuario inactivo.
	IdleTTL time.Duration
}

// PerMinute arma la configuracion a partir de requests por minuto.
func PerMinute(perMinute, burst int) RateLimiterConfig {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return RateLimiterConfig{
		Rate:    rate.Limit(float64(perMinute) / 60.0),
		Burst:   burst,
		IdleTTL: 10 * time.Minute,
	}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter mantiene un token bucket por usuario autenticado. Los limiters
// inactivos se barren durante los accesos, sin goroutine de fondo.
type RateLimiter struct {
	logger *zap.Logger
	config RateLimiterConfig

	mu        sync.Mutex
	limiters  map[string]*userLimiter
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(logger *zap.Logger, config RateLimiterConfig) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		logger:   logger,
		config:   config,
		limiters: make(map[string]*userLimiter),
		now:      time.Now,
	}
}

// Middleware debe ir despues de JWTAuthMiddleware.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !rl.allow(claims.UserID) {
			rl.logger.Warn("rate limit exceeded", zap.String("user_id", claims.UserID))
			c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// Len devuelve la cantidad de usuarios con limiter activo.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.config.IdleTTL {
		for id, ul := range rl.limiters {
			if now.Sub(ul.lastAccess) > rl.config.IdleTTL {
				delete(rl.limiters, id)
			}
		}
		rl.lastSweep = now
	}

	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst)}
		rl.limiters[userID] = ul
	}
	ul.lastAccess = now
	return ul.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.config.Rate <= 0 {
		return 60
	}
	secs := int(math.Ceil(1.0 / float64(rl.config.Rate)))
	if secs < 1 {
		secs = 1
	}
	return secs
}
