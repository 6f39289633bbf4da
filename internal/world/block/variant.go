package block

import "errors"

// VariantID идентификатор варианта блока в каталоге
type VariantID string

var (
	// ErrUnknownVariant вариант отсутствует в каталоге
	ErrUnknownVariant = errors.New("неизвестный вариант блока")
	// ErrDuplicateVariant вариант с таким ID уже есть в каталоге
	ErrDuplicateVariant = errors.New("дублирующийся вариант блока")
	// ErrEmptyVariantID у варианта не задан ID
	ErrEmptyVariantID = errors.New("пустой ID варианта блока")
)

// Variant описывает выбираемый тип блока и его атрибуты отрисовки.
// Движок атрибуты не интерпретирует, только передаёт их рендеру.
type Variant struct {
	ID          VariantID `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Color       string    `yaml:"color,omitempty" json:"color,omitempty"` // "#RRGGBB"
	Model       string    `yaml:"model,omitempty" json:"model,omitempty"` // ссылка на модель, загружаемую рендером
	Transparent bool      `yaml:"transparent,omitempty" json:"transparent,omitempty"`
	Opacity     float64   `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

// NeedsAsset сообщает, что вариант нельзя ставить, пока рендер не загрузил модель.
func (v Variant) NeedsAsset() bool {
	return v.Model != ""
}

// Стандартные варианты
const (
	StoneVariantID VariantID = "stone"
	GrassVariantID VariantID = "grass"
	DirtVariantID  VariantID = "dirt"
	SandVariantID  VariantID = "sand"
	WaterVariantID VariantID = "water"
	GlassVariantID VariantID = "glass"
)

// DefaultVariants каталог по умолчанию, если конфиг его не задаёт
func DefaultVariants() []Variant {
	return []Variant{
		{ID: StoneVariantID, Name: "Камень", Color: "#808080"},
		{ID: GrassVariantID, Name: "Трава", Color: "#4caf50"},
		{ID: DirtVariantID, Name: "Земля", Color: "#8b5a2b"},
		{ID: SandVariantID, Name: "Песок", Color: "#e6d690"},
		{ID: WaterVariantID, Name: "Вода", Color: "#2196f3", Transparent: true, Opacity: 0.6},
		{ID: GlassVariantID, Name: "Стекло", Color: "#ffffff", Transparent: true, Opacity: 0.3},
	}
}
