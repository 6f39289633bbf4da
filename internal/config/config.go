package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/voxel-sandbox/internal/world/block"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации песочницы.
// Нулевые значения заменяются значениями по умолчанию через геттеры.
type Config struct {
	Grid        GridConfig        `yaml:"grid"`
	Interaction InteractionConfig `yaml:"interaction"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	EventBus    EventBusConfig    `yaml:"eventbus"`
	Server      ServerConfig      `yaml:"server"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type GridConfig struct {
	CellSize      float64 `yaml:"cell_size"`
	FloorY        int     `yaml:"floor_y"`
	StrictNormals bool    `yaml:"strict_normals"`
}

type InteractionConfig struct {
	DragThresholdPx  float64 `yaml:"drag_threshold_px"`
	DevicePixelRatio float64 `yaml:"device_pixel_ratio"`
	GateRemoval      bool    `yaml:"gate_removal"`
}

type CatalogConfig struct {
	Variants       []block.Variant `yaml:"variants"`
	DefaultVariant string          `yaml:"default_variant"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто: in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"` // host:port OTLP HTTP
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // пусто: только консоль
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Grid:        GridConfig{CellSize: 1},
		Interaction: InteractionConfig{DragThresholdPx: 5, DevicePixelRatio: 1},
		Catalog: CatalogConfig{
			Variants:       block.DefaultVariants(),
			DefaultVariant: string(block.StoneVariantID),
		},
		EventBus:  EventBusConfig{Stream: "SCENE", Retention: 24, Buffer: 1024},
		Telemetry: TelemetryConfig{ServiceName: "voxel-sandbox"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// BuildCatalog строит каталог вариантов; пустой список: стандартный каталог
func (c *Config) BuildCatalog() (*block.Catalog, error) {
	variants := c.Catalog.Variants
	if len(variants) == 0 {
		variants = block.DefaultVariants()
	}
	cat, err := block.NewCatalog(variants)
	if err != nil {
		return nil, fmt.Errorf("каталог вариантов: %w", err)
	}

	def := block.VariantID(c.Catalog.DefaultVariant)
	if def != "" && !cat.Has(def) {
		return nil, fmt.Errorf("вариант по умолчанию %q: %w", def, block.ErrUnknownVariant)
	}
	return cat, nil
}

// Validate проверяет значения, которые нельзя молча заменить на дефолт
func (c *Config) Validate() error {
	if c.Grid.CellSize < 0 {
		return fmt.Errorf("grid.cell_size должен быть положительным: %g", c.Grid.CellSize)
	}
	if c.Interaction.DragThresholdPx < 0 {
		return fmt.Errorf("interaction.drag_threshold_px не может быть отрицательным: %g", c.Interaction.DragThresholdPx)
	}
	if c.Interaction.DevicePixelRatio < 0 {
		return fmt.Errorf("interaction.device_pixel_ratio не может быть отрицательным: %g", c.Interaction.DevicePixelRatio)
	}
	_, err := c.BuildCatalog()
	return err
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "SANDBOX_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений.
// 0 после fallback означает «отдавать /metrics на REST порту».
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "SANDBOX_METRICS_PORT", 0)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV SANDBOX_CONFIG, иначе возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SANDBOX_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан: использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
