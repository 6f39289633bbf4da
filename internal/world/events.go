package world

import "fmt"

// EventType определяет тип события сцены
type EventType uint8

const (
	EventTypeBlockPlaced  EventType = iota // Установка блока
	EventTypeBlockRemoved                  // Удаление блока
	EventTypeReset                         // Полная очистка карты
)

func (t EventType) String() string {
	switch t {
	case EventTypeBlockPlaced:
		return "BlockPlaced"
	case EventTypeBlockRemoved:
		return "BlockRemoved"
	case EventTypeReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// MarshalText сериализует тип события
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText разбирает тип события
func (t *EventType) UnmarshalText(text []byte) error {
	for v := EventTypeBlockPlaced; v <= EventTypeReset; v++ {
		if v.String() == string(text) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("неизвестный тип события: %q", string(text))
}

// BlockEvent уведомление для слоя отрисовки: добавить или убрать ровно один
// экземпляр, либо очистить сцену.
type BlockEvent struct {
	EventType EventType   `json:"type"`
	Block     PlacedBlock `json:"block"`
	Cleared   int         `json:"cleared,omitempty"` // для EventTypeReset
}

// GetType возвращает тип события
func (e BlockEvent) GetType() EventType {
	return e.EventType
}

// SceneListener получает события сцены синхронно, в порядке операций
type SceneListener interface {
	OnSceneEvent(ev BlockEvent)
}

// SceneListenerFunc адаптер функции к SceneListener
type SceneListenerFunc func(ev BlockEvent)

// OnSceneEvent вызывает f(ev)
func (f SceneListenerFunc) OnSceneEvent(ev BlockEvent) { f(ev) }
