package sandbox

import (
	"fmt"
	"sync"

	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Options параметры сессии
type Options struct {
	Engine      world.EngineOptions
	Interaction interaction.Options
	Publisher   *Publisher // nil: события сцены никуда не публикуются
	Metrics     *Metrics   // nil: без метрик
}

// Session хост-адаптер одной песочницы: движок и контроллер однопоточны,
// поэтому каждый вызов проходит через один мьютекс. Слушатели сцены
// получают события синхронно, пока мьютекс удерживается.
type Session struct {
	mu      sync.Mutex
	engine  *world.Engine
	ctrl    *interaction.Controller
	pub     *Publisher
	metrics *Metrics
}

// Stats счётчики сессии для /health
type Stats struct {
	Blocks         int                   `json:"blocks"`
	State          interaction.StateName `json:"state"`
	Selected       block.VariantID       `json:"selected,omitempty"`
	EventsDropped  uint64                `json:"events_dropped"`
	PublishEnabled bool                  `json:"publish_enabled"`
}

// VariantInfo вариант каталога вместе с его состоянием в сессии
type VariantInfo struct {
	block.Variant
	Ready    bool `json:"ready"`
	Selected bool `json:"selected"`
}

// NewSession создаёт сессию над каталогом cat
func NewSession(cat *block.Catalog, opts Options) *Session {
	engine := world.NewEngine(cat, opts.Engine)

	ictl := opts.Interaction
	if opts.Publisher != nil {
		engine.AddListener(opts.Publisher)
		onPreview := ictl.OnPreview
		ictl.OnPreview = func(p world.Preview) {
			opts.Publisher.OnPreview(p)
			if onPreview != nil {
				onPreview(p)
			}
		}
	}

	s := &Session{
		engine:  engine,
		ctrl:    interaction.NewController(engine, ictl),
		pub:     opts.Publisher,
		metrics: opts.Metrics,
	}
	return s
}

// AddListener подписывает слушателя на события сцены
func (s *Session) AddListener(l world.SceneListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.AddListener(l)
}

// Move передаёт перемещение указателя контроллеру
func (s *Session) Move(ev interaction.PointerEvent) world.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Move(ev)
}

// Down передаёт нажатие кнопки контроллеру
func (s *Session) Down(ev interaction.PointerEvent) interaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.ctrl.Down(ev)
	s.metrics.observe(res, s.engine.Len())
	return res
}

// Up передаёт отпускание кнопки контроллеру
func (s *Session) Up(ev interaction.PointerEvent) interaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.ctrl.Up(ev)
	s.metrics.observe(res, s.engine.Len())
	return res
}

// Click выполняет нажатие и отпускание одним вызовом, без чужих событий
// между ними. Нужен клиентам, которые не передают жест по частям.
func (s *Session) Click(down, up interaction.PointerEvent) interaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res := s.ctrl.Down(down); res.Outcome != interaction.OutcomeNone {
		s.metrics.observe(res, s.engine.Len())
		return res
	}
	res := s.ctrl.Up(up)
	s.metrics.observe(res, s.engine.Len())
	return res
}

// Reset очищает сцену
func (s *Session) Reset() interaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.ctrl.Reset()
	s.metrics.observe(res, 0)
	return res
}

// Preview текущая подсветка
func (s *Session) Preview() world.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Preview()
}

// State имя текущего состояния жеста
func (s *Session) State() interaction.StateName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.State()
}

// Blocks снимок карты занятости
func (s *Session) Blocks() []world.PlacedBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Blocks()
}

// Len количество установленных блоков
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Len()
}

// Stats снимок счётчиков сессии
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Blocks: s.engine.Len(), State: s.ctrl.State()}
	if v, ok := s.engine.Selected(); ok {
		st.Selected = v.ID
	}
	if s.pub != nil {
		st.PublishEnabled = true
		st.EventsDropped = s.pub.Dropped()
	}
	return st
}

// Variants каталог в порядке объявления
func (s *Session) Variants() []VariantInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected, hasSelected := s.engine.Selected()
	list := s.engine.Catalog().List()
	out := make([]VariantInfo, 0, len(list))
	for _, v := range list {
		out = append(out, VariantInfo{
			Variant:  v,
			Ready:    s.engine.IsVariantReady(v.ID),
			Selected: hasSelected && selected.ID == v.ID,
		})
	}
	return out
}

// SelectVariant меняет выбранный вариант
func (s *Session) SelectVariant(id block.VariantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.SelectVariant(id) {
		return fmt.Errorf("выбор варианта %q: %w", id, block.ErrUnknownVariant)
	}
	return nil
}

// MarkVariantReady помечает модель варианта загруженной
func (s *Session) MarkVariantReady(id block.VariantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.MarkVariantReady(id) {
		return fmt.Errorf("готовность варианта %q: %w", id, block.ErrUnknownVariant)
	}
	return nil
}
