package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/motoyard/motoyard-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimit     rate.Limit
	RateBurst     int
	Timeout       time.Duration
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	metrics *routerMetrics

	healthH    Handler
	authH      Handler
	webhookH   Handler
	dispatchH  Handler
	dealerH    Handler
	contactH   Handler
	templateH  Handler
	contentH   Handler
	vehicleH   Handler
	convH      Handler
	broadcastH Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH Handler,
	authH Handler,
	webhookH Handler,
	dispatchH Handler,
	dealerH Handler,
	contactH Handler,
	templateH Handler,
	contentH Handler,
	vehicleH Handler,
	convH Handler,
	broadcastH Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	if config.Timeout == 0 {
		config.Timeout = middleware.DefaultTimeout
	}

	r := &Router{
		engine:     engine,
		auth:       auth,
		metrics:    initRouterMetrics(config.MetricsPrefix),
		healthH:    healthH,
		authH:      authH,
		webhookH:   webhookH,
		dispatchH:  dispatchH,
		dealerH:    dealerH,
		contactH:   contactH,
		templateH:  templateH,
		contentH:   contentH,
		vehicleH:   vehicleH,
		convH:      convH,
		broadcastH: broadcastH,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(config.Timeout),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimit > 0 {
		engine.Use(middleware.RateLimit(config.RateLimit, config.RateBurst))
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Public routes: health, auth, the Meta webhook (verified by its own
	// token handshake) and the cron trigger (guarded by its own secret).
	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)
	r.webhookH.RegisterRoutes(api)
	r.dispatchH.RegisterRoutes(api)

	// Everything under /dealers/:dealerID requires a token for that dealer.
	protected := api.Group("/dealers/:dealerID")
	protected.Use(
		r.auth.Authenticate(),
		r.auth.RequireDealer(),
	)
	r.dealerH.RegisterRoutes(protected)
	r.contactH.RegisterRoutes(protected)
	r.templateH.RegisterRoutes(protected)
	r.contentH.RegisterRoutes(protected)
	r.vehicleH.RegisterRoutes(protected)
	r.convH.RegisterRoutes(protected)
	r.broadcastH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
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
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
