package world

import (
	"fmt"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

// SurfaceKind тип поверхности, в которую попал луч
type SurfaceKind uint8

const (
	SurfaceNone SurfaceKind = iota
	SurfaceGround
	SurfaceBlock
)

func (s SurfaceKind) String() string {
	switch s {
	case SurfaceGround:
		return "ground"
	case SurfaceBlock:
		return "block"
	default:
		return "none"
	}
}

// MarshalText сериализует тип поверхности
func (s SurfaceKind) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText разбирает тип поверхности из строки
func (s *SurfaceKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ground":
		*s = SurfaceGround
	case "block":
		*s = SurfaceBlock
	case "", "none":
		*s = SurfaceNone
	default:
		return fmt.Errorf("неизвестный тип поверхности: %q", string(text))
	}
	return nil
}

// RayHit результат пересечения луча указателя со сценой.
// Для попадания в блок Block берётся из метаданных отрисованного экземпляра,
// а Normal уже приведена к осевой.
type RayHit struct {
	Point    vec.Vec3Float `json:"point"`
	Surface  SurfaceKind   `json:"surface"`
	Block    vec.Vec3      `json:"block"`
	Normal   vec.Vec3Float `json:"normal"`
	Distance float64       `json:"distance"` // параметр луча
}

// NearestHit выбирает ближайшее попадание по параметру луча.
// При равных расстояниях побеждает первое во входном порядке.
func NearestHit(hits []RayHit) (RayHit, bool) {
	best := -1
	for i := range hits {
		if hits[i].Surface == SurfaceNone {
			continue
		}
		if best < 0 || hits[i].Distance < hits[best].Distance {
			best = i
		}
	}
	if best < 0 {
		return RayHit{}, false
	}
	return hits[best], true
}
