package sandbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// StartSceneLogger подписывается на все конверты шины и пишет события сцены
// в лог движка. Функция неблокирующая.
func StartSceneLogger(bus eventbus.EventBus) (eventbus.Subscription, error) {
	log := logging.GetEngineLogger()
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		log.Debug("[Scene] %s", describeEnvelope(ev))
	})
	if err != nil {
		return nil, err
	}
	log.Info("🪵 Журнал событий сцены подключён к шине")
	return sub, nil
}

// describeEnvelope строка для лога: координата и вариант для блоков,
// число удалённых для сброса, цель для подсветки.
func describeEnvelope(ev *eventbus.Envelope) string {
	if ev.EventType == EventTypePreview {
		var p world.Preview
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Sprintf("%s: некорректная нагрузка: %v", ev.EventType, err)
		}
		if !p.HasTarget {
			return "PreviewChanged: нет цели"
		}
		return fmt.Sprintf("PreviewChanged: %v can_place=%t", p.Target, p.CanPlace)
	}

	var be world.BlockEvent
	if err := json.Unmarshal(ev.Payload, &be); err != nil {
		return fmt.Sprintf("%s id=%s src=%s: некорректная нагрузка: %v", ev.EventType, ev.ID, ev.Source, err)
	}
	switch be.EventType {
	case world.EventTypeReset:
		return fmt.Sprintf("Reset: очищено %d", be.Cleared)
	default:
		return fmt.Sprintf("%s %s variant=%s", be.EventType, be.Block.Key, be.Block.Variant.ID)
	}
}
