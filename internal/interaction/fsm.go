package interaction

import (
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// StateName имя состояния жеста
type StateName string

const (
	StateIdle        StateName = "Idle"
	StatePointerDown StateName = "PointerDown"
	StateDragging    StateName = "Dragging"
)

// State представляет состояние конечного автомата жеста основной кнопки
type State interface {
	Name() StateName
	Enter(c *Controller)
	Move(c *Controller, pos vec.Vec2Float, ratio float64) State
	Up(c *Controller, pos vec.Vec2Float, ratio float64) (State, Outcome)
	Exit(c *Controller)
}

// === Конкретные состояния ===

// IdleState - кнопка не нажата
type IdleState struct{}

func (s *IdleState) Name() StateName { return StateIdle }

func (s *IdleState) Enter(c *Controller) {}

func (s *IdleState) Move(c *Controller, pos vec.Vec2Float, ratio float64) State {
	return s
}

// Up без нажатия: либо жест начался над интерфейсом, либо down потерялся
func (s *IdleState) Up(c *Controller, pos vec.Vec2Float, ratio float64) (State, Outcome) {
	return s, OutcomeIgnored
}

func (s *IdleState) Exit(c *Controller) {}

// PointerDownState - кнопка нажата, порог перетаскивания ещё не превышен
type PointerDownState struct {
	Start vec.Vec2Float
}

// NewPointerDownState создаёт состояние нажатия в точке start
func NewPointerDownState(start vec.Vec2Float) *PointerDownState {
	return &PointerDownState{Start: start}
}

func (s *PointerDownState) Name() StateName { return StatePointerDown }

func (s *PointerDownState) Enter(c *Controller) {}

func (s *PointerDownState) Move(c *Controller, pos vec.Vec2Float, ratio float64) State {
	if c.exceedsThreshold(s.Start, pos, ratio) {
		return NewDraggingState(s.Start)
	}
	return s
}

func (s *PointerDownState) Up(c *Controller, pos vec.Vec2Float, ratio float64) (State, Outcome) {
	// Перемещение могло прийти только вместе с up, без промежуточных move
	if c.exceedsThreshold(s.Start, pos, ratio) {
		return &IdleState{}, OutcomeDragDiscarded
	}
	return &IdleState{}, OutcomePlace
}

func (s *PointerDownState) Exit(c *Controller) {}

// DraggingState - порог превышен, жест считается вращением камеры
type DraggingState struct {
	Start vec.Vec2Float
}

// NewDraggingState создаёт состояние перетаскивания
func NewDraggingState(start vec.Vec2Float) *DraggingState {
	return &DraggingState{Start: start}
}

func (s *DraggingState) Name() StateName { return StateDragging }

func (s *DraggingState) Enter(c *Controller) {
	c.log.Trace("Жест от (%.1f,%.1f) стал перетаскиванием", s.Start.X, s.Start.Y)
}

// Move в перетаскивании ничего не меняет: назад в PointerDown не возвращаемся
func (s *DraggingState) Move(c *Controller, pos vec.Vec2Float, ratio float64) State {
	return s
}

func (s *DraggingState) Up(c *Controller, pos vec.Vec2Float, ratio float64) (State, Outcome) {
	return &IdleState{}, OutcomeDragDiscarded
}

func (s *DraggingState) Exit(c *Controller) {}
