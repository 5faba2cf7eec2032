package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"memory-assistant/internal/metrics"
	"memory-assistant/internal/service"
)

// RouterOptions agrupa las dependencias transversales del router.
type RouterOptions struct {
	JWT            *service.JWTService
	Recorder       metrics.Recorder
	Gatherer       prometheus.Gatherer
	AnswerLimiter  *RateLimiter
	RequestTimeout time.Duration
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	userH *UserHandler,
	questionH *QuestionHandler,
	interviewH *InterviewHandler,
	healthH *HealthHandler,
) *gin.Engine {
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop()
	}
	r := gin.New()

	r.Use(
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		statusMetricsMiddleware(opts.Recorder),
		requestTimeoutMiddleware(opts.RequestTimeout),
		jsonContentTypeMiddleware(),
	)

	r.GET("/healthz", healthH.Health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))
	}

	r.POST("/users", userH.CreateUser)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	questions := r.Group("/questions")
	questions.GET("", questionH.List)
	questions.GET("/random", questionH.Random)
	questions.GET("/:id", questionH.Get)
	questions.GET("/:id/next", questionH.Next)
	r.GET("/categories", questionH.Categories)

	protected := r.Group("")
	protected.Use(JWTAuthMiddleware(opts.JWT))
	protected.POST("/sessions/open", interviewH.OpenSession)
	protected.GET("/sessions/:id", interviewH.GetSession)
	protected.POST("/sessions/:id/complete", interviewH.CompleteSession)
	protected.GET("/memories", interviewH.ListMemories)
	if opts.AnswerLimiter != nil {
		protected.POST("/memories", opts.AnswerLimiter.Middleware(), interviewH.RecordAnswer)
	} else {
		protected.POST("/memories", interviewH.RecordAnswer)
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func statusMetricsMiddleware(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		recorder.RecordHTTPStatus(c.Writer.Status())
	}
}

// requestTimeoutMiddleware acota el contexto de cada request. Las llamadas al
// store que lo superen fallan con error de almacenamiento.
func requestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
