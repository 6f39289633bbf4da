package interaction

import (
	"fmt"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// Button кнопка указателя
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// MarshalText сериализует кнопку
func (b Button) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText разбирает кнопку ("primary"/"left", "secondary"/"right")
func (b *Button) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "primary", "left":
		*b = ButtonPrimary
	case "secondary", "right":
		*b = ButtonSecondary
	default:
		return fmt.Errorf("неизвестная кнопка указателя: %q", string(text))
	}
	return nil
}

// PointerEvent событие указателя от внешнего контроллера ввода
type PointerEvent struct {
	Button     Button        `json:"button"`
	Position   vec.Vec2Float `json:"position"`              // в физических пикселях
	PixelRatio float64       `json:"pixel_ratio,omitempty"` // 0: из Options
	OverUI     bool          `json:"over_ui,omitempty"`     // событие пришло с элемента интерфейса, не со сцены
	Hit        *world.RayHit `json:"hit,omitempty"`         // ближайшее попадание луча или nil
}

// Outcome итог обработки события контроллером
type Outcome uint8

const (
	OutcomeNone          Outcome = iota // ничего не произошло
	OutcomePlace                        // вызван Place, см. Result.Place
	OutcomeRemove                       // вызван Remove, см. Result.Remove
	OutcomeDragDiscarded                // жест оказался перетаскиванием камеры
	OutcomeNoTarget                     // клик, но целевой ячейки нет
	OutcomeIgnored                      // жест начался над интерфейсом
	OutcomeReset                        // сцена очищена
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePlace:
		return "place"
	case OutcomeRemove:
		return "remove"
	case OutcomeDragDiscarded:
		return "drag_discarded"
	case OutcomeNoTarget:
		return "no_target"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// MarshalText сериализует итог
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText разбирает итог из строки
func (o *Outcome) UnmarshalText(text []byte) error {
	for v := OutcomeNone; v <= OutcomeReset; v++ {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("неизвестный итог: %q", string(text))
}

// Result итог события вместе с результатом вызова движка.
// Place имеет смысл только при OutcomePlace, а Remove только при OutcomeRemove.
type Result struct {
	Outcome Outcome
	Target  vec.Vec3
	Place   world.PlaceResult
	Remove  world.RemoveResult
	Cleared int
}
