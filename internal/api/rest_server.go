package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/middleware"
	"github.com/annel0/voxel-sandbox/internal/sandbox"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет REST API песочницы для внешнего рендера
type RestServer struct {
	router   *gin.Engine
	srv      *http.Server
	session  *sandbox.Session
	bus      eventbus.EventBus
	port     string
	health   *healthProbe
	log      *logging.Logger
	upgrader websocket.Upgrader
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port    string            // порт для запуска сервера
	Session *sandbox.Session  // сессия песочницы
	Bus     eventbus.EventBus // источник событий для /ws; nil: маршрут не регистрируется
	Tracing bool              // otelgin middleware

	// Registerer для HTTP-метрик; nil: дефолтный регистр
	Registerer prometheus.Registerer
	// Gatherer для /metrics; nil: маршрут не регистрируется
	Gatherer prometheus.Gatherer
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	log := logging.GetAPILogger()

	// === Observability middleware ===
	// otelgin первым, чтобы RequestLogger взял trace-id из спана
	if config.Tracing {
		router.Use(otelgin.Middleware("sandbox_api"))
	}

	loggerMw := middleware.NewRequestLogger(log, "/api/pointer/move", "/api/preview")
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware("sandbox_api", config.Registerer)
	router.Use(promMw.Handler())
	if config.Gatherer != nil {
		promMw.RegisterMetricsEndpoint(router, config.Gatherer)
	}

	server := &RestServer{
		router:  router,
		session: config.Session,
		bus:     config.Bus,
		port:    config.Port,
		health:  newHealthProbe(config.Session),
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // рендер обычно на другом origin
		},
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(corsMiddleware())

	api := rs.router.Group("/api")
	{
		api.GET("/variants", rs.handleVariants)
		api.POST("/variants/select", rs.handleSelectVariant)
		api.POST("/variants/:id/ready", rs.handleVariantReady)

		api.GET("/blocks", rs.handleBlocks)
		api.GET("/preview", rs.handlePreview)

		pointer := api.Group("/pointer")
		pointer.POST("/move", rs.handlePointerMove)
		pointer.POST("/down", rs.handlePointerDown)
		pointer.POST("/up", rs.handlePointerUp)
		pointer.POST("/click", rs.handlePointerClick)

		api.POST("/reset", rs.handleReset)
	}

	if rs.bus != nil {
		rs.router.GET("/ws", rs.handleSceneStream)
	}

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера (для тестов и внешнего http.Server)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// handleHealth возвращает состояние сервера и сцены
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, rs.health.report())
}

// Start запускает REST сервер; возвращает nil после Stop
func (rs *RestServer) Start() error {
	rs.srv = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.log.Info("🌐 REST API слушает %s", rs.port)
	if err := rs.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает REST сервер, дожидаясь завершения активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.srv == nil {
		return nil
	}
	return rs.srv.Shutdown(ctx)
}
