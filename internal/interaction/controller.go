package interaction

import (
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// DefaultDragThreshold порог перетаскивания в логических (CSS) пикселях
const DefaultDragThreshold = 5.0

// Engine операции движка, которые нужны контроллеру
type Engine interface {
	Preview(hit *world.RayHit) world.Preview
	PlaceSelected(g vec.Vec3) world.PlaceResult
	RemoveHit(hit *world.RayHit) world.RemoveResult
	ResetAll() int
}

// Options параметры контроллера
type Options struct {
	// DragThreshold в логических пикселях; 0: DefaultDragThreshold
	DragThreshold float64
	// DevicePixelRatio делитель для позиций в физических пикселях; 0: 1
	DevicePixelRatio float64
	// GateRemoval применяет к удалению тот же запрет жестов с интерфейса
	GateRemoval bool
	// OnPreview вызывается при каждом изменении подсветки
	OnPreview func(p world.Preview)
}

// Controller автомат жестов указателя поверх движка размещения.
// Как и движок, однопоточный.
type Controller struct {
	engine Engine
	opts   Options
	log    *logging.Logger

	state   State
	lastHit *world.RayHit
	preview world.Preview
}

// NewController создаёт контроллер в состоянии Idle
func NewController(engine Engine, opts Options) *Controller {
	if opts.DragThreshold <= 0 {
		opts.DragThreshold = DefaultDragThreshold
	}
	if opts.DevicePixelRatio <= 0 {
		opts.DevicePixelRatio = 1
	}

	c := &Controller{
		engine: engine,
		opts:   opts,
		log:    logging.GetInteractionLogger(),
	}
	c.SetState(&IdleState{})
	return c
}

// SetState устанавливает новое состояние
func (c *Controller) SetState(state State) {
	if c.state != nil {
		c.state.Exit(c)
	}

	c.state = state

	if c.state != nil {
		c.state.Enter(c)
	}
}

func (c *Controller) transition(next State) {
	if next != c.state {
		c.log.Trace("Жест: %s -> %s", c.state.Name(), next.Name())
		c.SetState(next)
	}
}

// State возвращает имя текущего состояния
func (c *Controller) State() StateName {
	return c.state.Name()
}

// Preview возвращает текущую подсветку
func (c *Controller) Preview() world.Preview {
	return c.preview
}

// DragThreshold возвращает порог перетаскивания в логических пикселях
func (c *Controller) DragThreshold() float64 {
	return c.opts.DragThreshold
}

func (c *Controller) ratio(ev PointerEvent) float64 {
	if ev.PixelRatio > 0 {
		return ev.PixelRatio
	}
	return c.opts.DevicePixelRatio
}

// exceedsThreshold сравнивает смещение в логических пикселях с порогом
func (c *Controller) exceedsThreshold(from, to vec.Vec2Float, ratio float64) bool {
	return from.DistanceTo(to)/ratio > c.opts.DragThreshold
}

// refreshPreview пересчитывает подсветку по попаданию; состояние движка не меняется
func (c *Controller) refreshPreview(hit *world.RayHit) {
	if hit != nil {
		h := *hit
		c.lastHit = &h
	} else {
		c.lastHit = nil
	}

	p := c.engine.Preview(c.lastHit)
	if p != c.preview {
		c.preview = p
		if c.opts.OnPreview != nil {
			c.opts.OnPreview(p)
		}
	}
}

// Move обрабатывает перемещение указателя
func (c *Controller) Move(ev PointerEvent) world.Preview {
	c.refreshPreview(ev.Hit)
	c.transition(c.state.Move(c, ev.Position, c.ratio(ev)))
	return c.preview
}

// Down обрабатывает нажатие кнопки
func (c *Controller) Down(ev PointerEvent) Result {
	if ev.Button == ButtonSecondary {
		return c.removeAt(ev)
	}

	if ev.OverUI {
		// Жест с панели интерфейса не должен ставить блок на отпускании
		c.transition(&IdleState{})
		return Result{Outcome: OutcomeIgnored}
	}

	if ev.Hit != nil {
		c.refreshPreview(ev.Hit)
	}
	c.transition(NewPointerDownState(ev.Position))
	return Result{Outcome: OutcomeNone}
}

// Up обрабатывает отпускание кнопки
func (c *Controller) Up(ev PointerEvent) Result {
	if ev.Button == ButtonSecondary {
		return Result{Outcome: OutcomeNone}
	}

	next, outcome := c.state.Up(c, ev.Position, c.ratio(ev))
	c.transition(next)

	if outcome != OutcomePlace {
		if outcome == OutcomeDragDiscarded {
			c.log.Debug("Отпускание после перетаскивания: установка отменена")
		}
		return Result{Outcome: outcome}
	}

	if ev.Hit != nil {
		c.refreshPreview(ev.Hit)
	}
	if !c.preview.HasTarget {
		return Result{Outcome: OutcomeNoTarget}
	}

	target := c.preview.Target
	res := c.engine.PlaceSelected(target)
	c.refreshPreview(c.lastHit)

	return Result{Outcome: OutcomePlace, Target: target, Place: res}
}

// removeAt удаляет блок сразу на нажатии, без порога перетаскивания
func (c *Controller) removeAt(ev PointerEvent) Result {
	if c.opts.GateRemoval && ev.OverUI {
		return Result{Outcome: OutcomeIgnored}
	}
	if ev.Hit == nil || ev.Hit.Surface != world.SurfaceBlock {
		return Result{Outcome: OutcomeNoTarget}
	}

	target := ev.Hit.Block
	res := c.engine.RemoveHit(ev.Hit)
	c.refreshPreview(c.lastHit)

	return Result{Outcome: OutcomeRemove, Target: target, Remove: res}
}

// Reset очищает сцену
func (c *Controller) Reset() Result {
	n := c.engine.ResetAll()
	c.refreshPreview(c.lastHit)
	return Result{Outcome: OutcomeReset, Cleared: n}
}
