package api

import (
	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SelectVariantRequest запрос выбора варианта
type SelectVariantRequest struct {
	ID string `json:"id" binding:"required"`
}

// ClickRequest клик одним запросом. Если up не задан, отпускание
// приходит в той же точке, что и нажатие.
type ClickRequest struct {
	Down interaction.PointerEvent  `json:"down"`
	Up   *interaction.PointerEvent `json:"up,omitempty"`
}

// Events возвращает пару событий нажатия и отпускания
func (r ClickRequest) Events() (down, up interaction.PointerEvent) {
	down = r.Down
	if r.Up != nil {
		return down, *r.Up
	}
	return down, interaction.PointerEvent{
		Button:     down.Button,
		Position:   down.Position,
		PixelRatio: down.PixelRatio,
	}
}

// BlocksResponse зеркало карты занятости
type BlocksResponse struct {
	Blocks []world.PlacedBlock `json:"blocks"`
	Total  int                 `json:"total"`
}

// ResultResponse итог события указателя.
// place/remove заполняются только для соответствующего итога.
type ResultResponse struct {
	Outcome interaction.Outcome `json:"outcome"`
	Target  *vec.Vec3           `json:"target,omitempty"`
	Place   string              `json:"place,omitempty"`
	Remove  string              `json:"remove,omitempty"`
	Cleared *int                `json:"cleared,omitempty"`
	Preview world.Preview       `json:"preview"`
}

// NewResultResponse переводит interaction.Result в ответ API
func NewResultResponse(res interaction.Result, preview world.Preview) ResultResponse {
	out := ResultResponse{Outcome: res.Outcome, Preview: preview}
	switch res.Outcome {
	case interaction.OutcomePlace:
		target := res.Target
		out.Target = &target
		out.Place = res.Place.String()
	case interaction.OutcomeRemove:
		target := res.Target
		out.Target = &target
		out.Remove = res.Remove.String()
	case interaction.OutcomeReset:
		cleared := res.Cleared
		out.Cleared = &cleared
	}
	return out
}
