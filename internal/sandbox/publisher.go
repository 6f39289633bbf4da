package sandbox

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/google/uuid"
)

// Source имя источника в конвертах событий сцены
const Source = "voxel-sandbox"

// EventTypePreview тип конверта для изменения подсветки курсора
const EventTypePreview = "PreviewChanged"

// Приоритеты конвертов: подсветку можно потерять, изменения карты нет
const (
	priorityPreview = 1
	priorityBlock   = 5
	priorityReset   = 9
)

// Publisher переносит события сцены в шину событий.
//
// OnSceneEvent вызывается движком под блокировкой сессии, поэтому публикация
// вынесена в отдельную горутину: вызов только кладёт конверт в очередь.
// Единственный воркер сохраняет порядок событий. При переполнении очереди
// конверт отбрасывается; рендер восстанавливает зеркало через GET /api/blocks.
type Publisher struct {
	bus     eventbus.EventBus
	timeout time.Duration
	log     *logging.Logger

	mu     sync.Mutex
	closed bool
	queue  chan *eventbus.Envelope
	done   chan struct{}

	dropped atomic.Uint64
}

// NewPublisher создаёт издателя с очередью на capacity конвертов и запускает воркер
func NewPublisher(bus eventbus.EventBus, capacity int) *Publisher {
	if capacity <= 0 {
		capacity = 256
	}
	p := &Publisher{
		bus:     bus,
		timeout: 2 * time.Second,
		log:     logging.GetEngineLogger(),
		queue:   make(chan *eventbus.Envelope, capacity),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

// OnSceneEvent реализует world.SceneListener
func (p *Publisher) OnSceneEvent(ev world.BlockEvent) {
	prio := priorityBlock
	if ev.EventType == world.EventTypeReset {
		prio = priorityReset
	}
	p.enqueue(ev.EventType.String(), prio, ev)
}

// OnPreview публикует изменение подсветки
func (p *Publisher) OnPreview(pr world.Preview) {
	p.enqueue(EventTypePreview, priorityPreview, pr)
}

// Dropped число конвертов, потерянных из-за переполнения очереди или ошибок шины
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close дожидается отправки уже принятых конвертов. Повторный вызов безопасен.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
}

func (p *Publisher) enqueue(eventType string, priority int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("Сериализация %s: %v", eventType, err)
		return
	}

	env := &eventbus.Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    Source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Payload:   data,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.dropped.Add(1)
		return
	}

	select {
	case p.queue <- env:
	default:
		p.dropped.Add(1)
		p.log.Warn("⚠️ Очередь событий сцены заполнена, %s отброшено", eventType)
	}
}

func (p *Publisher) loop() {
	defer close(p.done)
	for env := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.bus.Publish(ctx, env); err != nil {
			p.dropped.Add(1)
			p.log.Warn("Публикация %s %s: %v", env.EventType, env.ID, err)
		}
		cancel()
	}
}
