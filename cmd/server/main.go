package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-sandbox/internal/api"
	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/observability"
	"github.com/annel0/voxel-sandbox/internal/sandbox"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $SANDBOX_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	if err := initLogging(cfg.Logging); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🧱 Запуск voxel sandbox...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Трассировка ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("Остановка OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === Шина событий сцены ===
	bus, err := newEventBus(cfg.EventBus)
	if err != nil {
		logging.Error("❌ Ошибка создания шины событий: %v", err)
		os.Exit(1)
	}
	if _, err := sandbox.StartSceneLogger(bus); err != nil {
		logging.Warn("Журнал событий сцены: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	busMetrics := eventbus.NewMetricsExporter(bus, reg)
	busMetrics.Start()

	// === Песочница ===
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}

	publisher := sandbox.NewPublisher(bus, cfg.EventBus.Buffer)
	session := sandbox.NewSession(catalog, sandbox.Options{
		Engine: world.EngineOptions{
			CellSize:       cfg.Grid.CellSize,
			FloorY:         cfg.Grid.FloorY,
			StrictNormals:  cfg.Grid.StrictNormals,
			DefaultVariant: block.VariantID(cfg.Catalog.DefaultVariant),
		},
		Interaction: interaction.Options{
			DragThreshold:    cfg.Interaction.DragThresholdPx,
			DevicePixelRatio: cfg.Interaction.DevicePixelRatio,
			GateRemoval:      cfg.Interaction.GateRemoval,
		},
		Publisher: publisher,
		Metrics:   sandbox.NewMetrics(reg),
	})
	logging.Info("📦 Каталог: %d вариантов, выбран %q", catalog.Len(), cfg.Catalog.DefaultVariant)

	// === REST API ===
	gin.SetMode(gin.ReleaseMode)

	restPort := cfg.Server.GetRESTPort()
	metricsPort := cfg.Server.GetMetricsPort()

	apiConfig := api.Config{
		Port:       fmt.Sprintf(":%d", restPort),
		Session:    session,
		Bus:        bus,
		Tracing:    cfg.Telemetry.Enabled,
		Registerer: reg,
	}
	if metricsPort == 0 {
		apiConfig.Gatherer = reg
	}
	restServer := api.NewRestServer(apiConfig)

	errCh := make(chan error, 2)
	go func() { errCh <- restServer.Start() }()

	var metricsServer *http.Server
	if metricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: fmt.Sprintf(":%d", metricsPort), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	logging.Info("✅ Все сервисы запущены и готовы принимать соединения")
	logging.Info("   🌐 REST API: http://localhost:%d/api", restPort)
	logging.Info("   🔌 Поток сцены: ws://localhost:%d/ws", restPort)
	if metricsPort != 0 {
		logging.Info("   📈 Метрики: http://localhost:%d/metrics", metricsPort)
	} else {
		logging.Info("   📈 Метрики: http://localhost:%d/metrics", restPort)
	}
	logging.Info("   ❤️  Health check: http://localhost:%d/health", restPort)

	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, остановка...")
	case err := <-errCh:
		if err != nil {
			logging.Error("❌ Ошибка HTTP сервера: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logging.Debug("Остановка REST API...")
	if err := restServer.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	publisher.Close()
	busMetrics.Stop()
	if err := bus.Close(); err != nil {
		logging.Warn("Закрытие шины событий: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

// initLogging настраивает логгер по умолчанию и каталог компонентных логов
func initLogging(cfg config.LoggingConfig) error {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	if cfg.Dir != "" {
		l, err := logging.New(logging.Options{
			Component:       "server",
			Dir:             cfg.Dir,
			MinConsoleLevel: level,
			MinFileLevel:    logging.DEBUG,
		})
		if err != nil {
			return err
		}
		logging.SetDefaultLogger(l)
		logging.GetLoggerManager().SetLogDir(cfg.Dir)
	} else {
		logging.SetLevel(level, level)
	}
	return nil
}

// newEventBus выбирает JetStream, если задан URL, иначе in-memory шину
func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("🚌 Шина событий: in-memory (буфер %d)", cfg.Buffer)
		return eventbus.NewMemoryBus(cfg.Buffer), nil
	}

	retention := time.Duration(cfg.Retention) * time.Hour
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, retention)
	if err != nil {
		return nil, err
	}
	logging.Info("🚌 Шина событий: NATS JetStream %s, stream=%s", cfg.URL, cfg.Stream)
	return bus, nil
}
