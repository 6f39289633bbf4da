package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

// DefaultCellSize размер ребра ячейки в мировых единицах по умолчанию
const DefaultCellSize = 1.0

var (
	// ErrInvalidNormal возвращается, если нормаль не совпадает ни с одной
	// из шести осевых единичных нормалей.
	ErrInvalidNormal = errors.New("нормаль не выровнена по оси")
	// ErrMalformedKey возвращается при разборе некорректного ключа ячейки.
	ErrMalformedKey = errors.New("некорректный ключ ячейки")
)

// Нормали граней куба
var (
	NormalPosX = vec.Vec3Float{X: 1}
	NormalNegX = vec.Vec3Float{X: -1}
	NormalPosY = vec.Vec3Float{Y: 1}
	NormalNegY = vec.Vec3Float{Y: -1}
	NormalPosZ = vec.Vec3Float{Z: 1}
	NormalNegZ = vec.Vec3Float{Z: -1}
)

// Mapper переводит мировые координаты в координаты сетки и обратно.
// Ячейка g занимает полуинтервал [g*CellSize, (g+1)*CellSize) по каждой оси,
// её мировая позиция: центр ячейки.
type Mapper struct {
	CellSize float64
}

// NewMapper создаёт маппер с указанным размером ячейки.
// Неположительный размер заменяется на DefaultCellSize.
func NewMapper(cellSize float64) Mapper {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	return Mapper{CellSize: cellSize}
}

func (m Mapper) size() float64 {
	if m.CellSize <= 0 {
		return DefaultCellSize
	}
	return m.CellSize
}

// WorldToGrid возвращает ячейку, содержащую точку (floor по каждой оси).
func (m Mapper) WorldToGrid(p vec.Vec3Float) vec.Vec3 {
	s := m.size()
	return vec.Vec3{
		X: int(math.Floor(p.X / s)),
		Y: int(math.Floor(p.Y / s)),
		Z: int(math.Floor(p.Z / s)),
	}
}

// maxCoord граница, за которой float64 уже не переводится в int без переполнения
const maxCoord = float64(math.MaxInt64)

// CellOf как WorldToGrid, но сообщает false для точек, ячейка которых
// не представима в int (NaN, бесконечность, выход за диапазон).
func (m Mapper) CellOf(p vec.Vec3Float) (vec.Vec3, bool) {
	if !p.IsFinite() {
		return vec.Vec3{}, false
	}
	s := m.size()
	for _, c := range [...]float64{p.X, p.Y, p.Z} {
		f := math.Floor(c / s)
		if f >= maxCoord || f < -maxCoord {
			return vec.Vec3{}, false
		}
	}
	return m.WorldToGrid(p), true
}

// GridToWorld возвращает центр ячейки в мировых координатах.
func (m Mapper) GridToWorld(g vec.Vec3) vec.Vec3Float {
	s := m.size()
	return vec.Vec3Float{
		X: (float64(g.X) + 0.5) * s,
		Y: (float64(g.Y) + 0.5) * s,
		Z: (float64(g.Z) + 0.5) * s,
	}
}

// SnapToGrid возвращает ячейку с ближайшим к точке центром.
// Только для превью: решение о размещении всегда принимается через WorldToGrid.
func (m Mapper) SnapToGrid(p vec.Vec3Float) vec.Vec3 {
	s := m.size()
	return vec.Vec3{
		X: int(math.Round(p.X/s - 0.5)),
		Y: int(math.Round(p.Y/s - 0.5)),
		Z: int(math.Round(p.Z/s - 0.5)),
	}
}

// AdjacentCell возвращает соседнюю ячейку в направлении нормали грани.
// Нормаль должна быть заранее приведена к одной из шести осевых (см. SnapNormal).
func AdjacentCell(g vec.Vec3, n vec.Vec3Float) (vec.Vec3, error) {
	step, ok := axisStep(n)
	if !ok {
		return g, fmt.Errorf("%w: (%g,%g,%g)", ErrInvalidNormal, n.X, n.Y, n.Z)
	}
	return g.Add(step), nil
}

// IsAxisNormal сообщает, является ли n одной из шести осевых единичных нормалей.
func IsAxisNormal(n vec.Vec3Float) bool {
	_, ok := axisStep(n)
	return ok
}

func axisStep(n vec.Vec3Float) (vec.Vec3, bool) {
	switch n {
	case NormalPosX:
		return vec.Vec3{X: 1}, true
	case NormalNegX:
		return vec.Vec3{X: -1}, true
	case NormalPosY:
		return vec.Vec3{Y: 1}, true
	case NormalNegY:
		return vec.Vec3{Y: -1}, true
	case NormalPosZ:
		return vec.Vec3{Z: 1}, true
	case NormalNegZ:
		return vec.Vec3{Z: -1}, true
	}
	return vec.Vec3{}, false
}

// SnapNormal приводит произвольную нормаль (например, после поворота меша)
// к осевой по доминирующей компоненте. Используется на стороне рендера
// до передачи попадания в движок.
func SnapNormal(n vec.Vec3Float) (vec.Vec3Float, error) {
	if !n.IsFinite() || n.Length() == 0 {
		return vec.Vec3Float{}, fmt.Errorf("%w: (%g,%g,%g)", ErrInvalidNormal, n.X, n.Y, n.Z)
	}

	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return vec.Vec3Float{X: math.Copysign(1, n.X)}, nil
	case ay >= az:
		return vec.Vec3Float{Y: math.Copysign(1, n.Y)}, nil
	default:
		return vec.Vec3Float{Z: math.Copysign(1, n.Z)}, nil
	}
}
