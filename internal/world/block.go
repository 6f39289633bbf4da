package world

import (
	"github.com/annel0/voxel-sandbox/internal/grid"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// PlacedBlock запись об установленном блоке в карте занятости
type PlacedBlock struct {
	Key     grid.Key      `json:"key"`
	Coord   vec.Vec3      `json:"coord"`
	Variant block.Variant `json:"variant"`
}

// PlaceResult результат попытки установки блока
type PlaceResult uint8

const (
	PlaceResultPlaced PlaceResult = iota
	PlaceResultRejectedOccupied
	PlaceResultRejectedNoVariant
)

func (r PlaceResult) String() string {
	switch r {
	case PlaceResultPlaced:
		return "PLACED"
	case PlaceResultRejectedOccupied:
		return "REJECTED_OCCUPIED"
	case PlaceResultRejectedNoVariant:
		return "REJECTED_NO_VARIANT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText сериализует результат в строку
func (r PlaceResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RemoveResult результат попытки удаления блока
type RemoveResult uint8

const (
	RemoveResultRemoved RemoveResult = iota
	RemoveResultRejectedEmpty
)

func (r RemoveResult) String() string {
	switch r {
	case RemoveResultRemoved:
		return "REMOVED"
	case RemoveResultRejectedEmpty:
		return "REJECTED_EMPTY"
	default:
		return "UNKNOWN"
	}
}

// MarshalText сериализует результат в строку
func (r RemoveResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Preview целевая ячейка для подсветки курсора. Никогда не меняет состояние.
type Preview struct {
	Target    vec.Vec3 `json:"target"`
	HasTarget bool     `json:"has_target"`
	CanPlace  bool     `json:"can_place"`
}
