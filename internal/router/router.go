package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appointmenth "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/appointment"
	assisth "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/assist"
	audith "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/audit"
	authh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/auth"
	billingh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/billing"
	chath "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/chat"
	doctorh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/doctor"
	healthh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/health"
	patienth "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/patient"
	permissionh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/permission"
	presenceh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/presence"
	settingsh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/settings"
	userh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/user"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/middleware"
)

type Handlers struct {
	Health      *healthh.Handler
	Auth        *authh.Handler
	User        *userh.Handler
	Patient     *patienth.Handler
	Doctor      *doctorh.Handler
	Appointment *appointmenth.Handler
	Billing     *billingh.Handler
	Audit       *audith.Handler
	Permission  *permissionh.Handler
	Presence    *presenceh.Handler
	Chat        *chath.Handler
	Settings    *settingsh.Handler
	Assist      *assisth.Handler
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
}

func DefaultConfig() Config {
	return Config{
		RateLimitRPS:   50,
		RateLimitBurst: 100,
		RequestTimeout: 30 * time.Second,
		CORS:           middleware.DefaultCORSConfig(),
	}
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	authz    *middleware.AuthzMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(auth *middleware.AuthMiddleware, authz *middleware.AuthzMiddleware, handlers Handlers, log *zerolog.Logger, cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		authz:    authz,
		handlers: handlers,
		metrics:  newRouterMetrics("sehatech_http"),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.RequestTimeout}),
		middleware.CORS(cfg.CORS),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	engine.Use(limiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	// Public routes
	r.handlers.Auth.RegisterRoutes(api)

	// Everything else requires a valid token; individual routes add
	// capability gates on top.
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	gate := r.authz.RequireCapability

	r.handlers.User.RegisterRoutes(protected, gate)
	r.handlers.Patient.RegisterRoutes(protected, gate)
	r.handlers.Doctor.RegisterRoutes(protected, gate)
	r.handlers.Appointment.RegisterRoutes(protected, gate)
	r.handlers.Billing.RegisterRoutes(protected, gate)
	r.handlers.Audit.RegisterRoutes(protected, gate)
	r.handlers.Permission.RegisterRoutes(protected, gate)
	r.handlers.Presence.RegisterRoutes(protected)
	r.handlers.Chat.RegisterRoutes(protected, gate)
	r.handlers.Settings.RegisterRoutes(protected, gate)
	r.handlers.Assist.RegisterRoutes(protected, gate)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
