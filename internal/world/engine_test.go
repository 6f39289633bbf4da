package world

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/annel0/voxel-sandbox/internal/grid"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	events []BlockEvent
}

func (r *recordingListener) OnSceneEvent(ev BlockEvent) {
	r.events = append(r.events, ev)
}

func newTestEngine(t *testing.T) (*Engine, *recordingListener) {
	t.Helper()
	e := NewEngine(block.MustDefaultCatalog(), EngineOptions{DefaultVariant: block.StoneVariantID})
	rec := &recordingListener{}
	e.AddListener(rec)
	return e, rec
}

func TestEngine_PlaceTwice(t *testing.T) {
	e, rec := newTestEngine(t)
	g := vec.Vec3{X: 2, Y: 0, Z: -3}

	assert.Equal(t, PlaceResultPlaced, e.PlaceSelected(g))
	assert.Equal(t, PlaceResultRejectedOccupied, e.PlaceSelected(g), "Повторная установка в ту же ячейку должна отклоняться")
	assert.Equal(t, 1, e.Len(), "В карте должна остаться ровно одна запись")

	b, ok := e.Get(g)
	require.True(t, ok)
	assert.Equal(t, grid.KeyOf(g), b.Key)
	assert.Equal(t, block.StoneVariantID, b.Variant.ID)

	require.Len(t, rec.events, 1, "Отклонённая установка не должна порождать событие")
	assert.Equal(t, EventTypeBlockPlaced, rec.events[0].EventType)
	assert.Equal(t, g, rec.events[0].Block.Coord)
}

func TestEngine_RemoveSymmetry(t *testing.T) {
	e, rec := newTestEngine(t)
	g := vec.Vec3{X: 1, Y: 1, Z: 1}

	assert.Equal(t, RemoveResultRejectedEmpty, e.Remove(g), "Удаление из пустой карты должно отклоняться")
	assert.Empty(t, rec.events)

	require.Equal(t, PlaceResultPlaced, e.PlaceSelected(g))
	assert.Equal(t, RemoveResultRemoved, e.Remove(g))
	assert.Equal(t, 0, e.Len())
	assert.False(t, e.IsOccupied(g))
	assert.True(t, e.CanPlace(g))

	require.Len(t, rec.events, 2)
	assert.Equal(t, EventTypeBlockRemoved, rec.events[1].EventType)
	assert.Equal(t, block.StoneVariantID, rec.events[1].Block.Variant.ID, "Событие удаления несёт удалённую запись")
}

func TestEngine_NoVariant(t *testing.T) {
	e := NewEngine(block.MustDefaultCatalog(), EngineOptions{})
	g := vec.Vec3{}

	_, selected := e.Selected()
	assert.False(t, selected)
	assert.Equal(t, PlaceResultRejectedNoVariant, e.PlaceSelected(g))
	assert.Equal(t, PlaceResultRejectedNoVariant, e.Place(g, "unknown"))
	assert.Equal(t, 0, e.Len())
}

func TestEngine_UnloadedModelVariant(t *testing.T) {
	cat, err := block.NewCatalog([]block.Variant{
		{ID: "tree", Model: "models/tree.glb"},
		{ID: "stone", Color: "#808080"},
	})
	require.NoError(t, err)

	e := NewEngine(cat, EngineOptions{DefaultVariant: "tree"})
	g := vec.Vec3{X: 4}

	assert.False(t, e.IsVariantReady("tree"))
	assert.True(t, e.IsVariantReady("stone"))
	assert.Equal(t, PlaceResultRejectedNoVariant, e.PlaceSelected(g), "Вариант с незагруженной моделью ставить нельзя")

	assert.True(t, e.MarkVariantReady("tree"))
	assert.False(t, e.MarkVariantReady("missing"))
	assert.Equal(t, PlaceResultPlaced, e.PlaceSelected(g))
}

func TestEngine_SelectVariant(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.True(t, e.SelectVariant(block.GlassVariantID))
	v, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, block.GlassVariantID, v.ID)

	assert.False(t, e.SelectVariant("obsidian"), "Выбор отсутствующего варианта должен отклоняться")
	v, _ = e.Selected()
	assert.Equal(t, block.GlassVariantID, v.ID, "Неудачный выбор не меняет текущий вариант")
}

func TestEngine_ResolveTargetCell_Ground(t *testing.T) {
	e := NewEngine(nil, EngineOptions{FloorY: 0})

	for _, y := range []float64{0, -0.0001, 0.3, -7.5, 12} {
		hit := &RayHit{Surface: SurfaceGround, Point: vec.Vec3Float{X: 3.7, Y: y, Z: -1.2}}
		g, ok, err := e.ResolveTargetCell(hit)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, vec.Vec3{X: 3, Y: 0, Z: -2}, g, "Попадание в землю всегда закрепляет Y на слое земли (y=%g)", y)
	}

	raised := NewEngine(nil, EngineOptions{FloorY: 5})
	g, ok, err := raised.ResolveTargetCell(&RayHit{Surface: SurfaceGround, Point: vec.Vec3Float{X: 0.5, Y: 0, Z: 0.5}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, g.Y)
}

func TestEngine_ResolveTargetCell_BlockFace(t *testing.T) {
	e, _ := newTestEngine(t)
	require.Equal(t, PlaceResultPlaced, e.PlaceSelected(vec.Vec3{}))

	top := &RayHit{Surface: SurfaceBlock, Block: vec.Vec3{}, Normal: grid.NormalPosY, Point: vec.Vec3Float{X: 0.5, Y: 1, Z: 0.5}}
	g, ok, err := e.ResolveTargetCell(top)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{Y: 1}, g)

	side := &RayHit{Surface: SurfaceBlock, Block: vec.Vec3{}, Normal: grid.NormalPosX, Point: vec.Vec3Float{X: 1, Y: 0.5, Z: 0.5}}
	g, ok, err = e.ResolveTargetCell(side)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 1}, g)

	// Точка попадания лежит на границе с соседом, но решает нормаль и владелец грани
	skewed := &RayHit{Surface: SurfaceBlock, Block: vec.Vec3{}, Normal: grid.NormalNegZ, Point: vec.Vec3Float{X: 0.99, Y: 0.99, Z: 0}}
	g, ok, err = e.ResolveTargetCell(skewed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{Z: -1}, g)
}

func TestEngine_ResolveTargetCell_NoTarget(t *testing.T) {
	e, _ := newTestEngine(t)

	_, ok, err := e.ResolveTargetCell(nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.ResolveTargetCell(&RayHit{Surface: SurfaceNone})
	assert.NoError(t, err)
	assert.False(t, ok)

	// Нижняя грань блока на земле указывает под землю
	_, ok, err = e.ResolveTargetCell(&RayHit{Surface: SurfaceBlock, Block: vec.Vec3{}, Normal: grid.NormalNegY})
	assert.NoError(t, err)
	assert.False(t, ok, "Цель ниже слоя земли недопустима")
}

func TestEngine_ResolveTargetCell_FarGroundHit(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, p := range []vec.Vec3Float{{X: 1e20, Z: -1e20}, {X: math.Inf(1)}, {Z: math.NaN()}} {
		hit := &RayHit{Surface: SurfaceGround, Point: p}
		_, ok, err := e.ResolveTargetCell(hit)
		assert.NoError(t, err)
		assert.False(t, ok, "Точка %+v вне диапазона сетки", p)
		assert.False(t, e.Preview(hit).HasTarget)
	}
	assert.Equal(t, 0, e.Len())
}

func TestEngine_ResolveTargetCell_InvalidNormal(t *testing.T) {
	e, _ := newTestEngine(t)
	hit := &RayHit{Surface: SurfaceBlock, Block: vec.Vec3{}, Normal: vec.Vec3Float{X: 0.7, Y: 0.7}}

	_, ok, err := e.ResolveTargetCell(hit)
	assert.False(t, ok)
	assert.ErrorIs(t, err, grid.ErrInvalidNormal)
	assert.Equal(t, Preview{}, e.Preview(hit))

	strict := NewEngine(nil, EngineOptions{StrictNormals: true})
	assert.Panics(t, func() { _, _, _ = strict.ResolveTargetCell(hit) }, "В строгом режиме неосевая нормаль считается ошибкой интеграции")
}

func TestEngine_PreviewDoesNotMutate(t *testing.T) {
	e, rec := newTestEngine(t)
	require.Equal(t, PlaceResultPlaced, e.PlaceSelected(vec.Vec3{X: 1}))
	rec.events = nil

	free := e.Preview(&RayHit{Surface: SurfaceGround, Point: vec.Vec3Float{X: 0.2, Z: 0.2}})
	assert.Equal(t, Preview{Target: vec.Vec3{}, HasTarget: true, CanPlace: true}, free)

	busy := e.Preview(&RayHit{Surface: SurfaceGround, Point: vec.Vec3Float{X: 1.5, Z: 0.5}})
	assert.Equal(t, Preview{Target: vec.Vec3{X: 1}, HasTarget: true, CanPlace: false}, busy)

	assert.Equal(t, busy, e.Preview(&RayHit{Surface: SurfaceGround, Point: vec.Vec3Float{X: 1.5, Z: 0.5}}), "Превью идемпотентно")
	assert.Equal(t, 1, e.Len())
	assert.Empty(t, rec.events)
}

func TestEngine_RemoveHit(t *testing.T) {
	e, _ := newTestEngine(t)
	g := vec.Vec3{X: -2, Y: 3, Z: 1}
	require.Equal(t, PlaceResultPlaced, e.PlaceSelected(g))

	assert.Equal(t, RemoveResultRejectedEmpty, e.RemoveHit(nil))
	assert.Equal(t, RemoveResultRejectedEmpty, e.RemoveHit(&RayHit{Surface: SurfaceGround, Point: vec.Vec3Float{X: -1.5, Y: 3.5, Z: 1.5}}),
		"Попадание в землю ничего не удаляет")

	// Точка попадания на грани может округлиться в соседа; используется владелец
	hit := &RayHit{Surface: SurfaceBlock, Block: g, Normal: grid.NormalPosX, Point: vec.Vec3Float{X: -1, Y: 3.5, Z: 1.5}}
	assert.Equal(t, RemoveResultRemoved, e.RemoveHit(hit))
	assert.Equal(t, 0, e.Len())
}

func TestEngine_ResetKeepsCatalogAndSelection(t *testing.T) {
	e, rec := newTestEngine(t)
	require.True(t, e.SelectVariant(block.SandVariantID))
	for x := 0; x < 5; x++ {
		require.Equal(t, PlaceResultPlaced, e.PlaceSelected(vec.Vec3{X: x}))
	}

	assert.Equal(t, 5, e.ResetAll())
	assert.Equal(t, 0, e.Len())
	assert.Equal(t, len(block.DefaultVariants()), e.Catalog().Len())

	v, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, block.SandVariantID, v.ID, "Сброс не должен менять выбранный вариант")

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventTypeReset, last.EventType)
	assert.Equal(t, 5, last.Cleared)
}

func TestEngine_BlocksOrdered(t *testing.T) {
	e, _ := newTestEngine(t)
	coords := []vec.Vec3{{X: 1, Y: 1}, {X: 2}, {X: -1}, {Z: -1}, {X: 0, Y: 1}}
	for _, g := range coords {
		require.Equal(t, PlaceResultPlaced, e.PlaceSelected(g))
	}

	var got []vec.Vec3
	for _, b := range e.Blocks() {
		got = append(got, b.Coord)
	}
	assert.Equal(t, []vec.Vec3{{Z: -1}, {X: -1}, {X: 2}, {X: 0, Y: 1}, {X: 1, Y: 1}}, got)
}

func TestEngine_Scenario(t *testing.T) {
	e, _ := newTestEngine(t)
	origin := vec.Vec3{}

	assert.Equal(t, PlaceResultPlaced, e.PlaceSelected(origin))
	assert.Equal(t, 1, e.Len())

	assert.Equal(t, PlaceResultRejectedOccupied, e.PlaceSelected(origin))
	assert.Equal(t, 1, e.Len())

	target, ok, err := e.ResolveTargetCell(&RayHit{Surface: SurfaceBlock, Block: origin, Normal: grid.NormalPosX})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, vec.Vec3{X: 1}, target)
	assert.Equal(t, PlaceResultPlaced, e.PlaceSelected(target))
	assert.Equal(t, 2, e.Len())

	assert.Equal(t, RemoveResultRemoved, e.Remove(origin))
	assert.Equal(t, 1, e.Len())
	assert.True(t, e.IsOccupied(vec.Vec3{X: 1}))

	e.ResetAll()
	assert.Equal(t, 0, e.Len())
}

func TestNearestHit(t *testing.T) {
	_, ok := NearestHit(nil)
	assert.False(t, ok)

	hits := []RayHit{
		{Surface: SurfaceGround, Distance: 9},
		{Surface: SurfaceBlock, Block: vec.Vec3{X: 1}, Distance: 3},
		{Surface: SurfaceBlock, Block: vec.Vec3{X: 2}, Distance: 3},
		{Surface: SurfaceNone, Distance: 0},
	}
	h, ok := NearestHit(hits)
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 1}, h.Block, "При равных расстояниях выигрывает первое попадание")
}

func TestResultStrings(t *testing.T) {
	assert.Equal(t, "PLACED", PlaceResultPlaced.String())
	assert.Equal(t, "REJECTED_OCCUPIED", PlaceResultRejectedOccupied.String())
	assert.Equal(t, "REJECTED_NO_VARIANT", PlaceResultRejectedNoVariant.String())
	assert.Equal(t, "REMOVED", RemoveResultRemoved.String())
	assert.Equal(t, "REJECTED_EMPTY", RemoveResultRejectedEmpty.String())

	var s SurfaceKind
	require.NoError(t, s.UnmarshalText([]byte("block")))
	assert.Equal(t, SurfaceBlock, s)
	assert.Error(t, s.UnmarshalText([]byte("water")))
}

func TestBlockEvent_JSON(t *testing.T) {
	e, rec := newTestEngine(t)
	require.Equal(t, PlaceResultPlaced, e.Place(vec.Vec3{X: -2, Y: 1, Z: 7}, block.GrassVariantID))
	require.Len(t, rec.events, 1)

	data, err := json.Marshal(rec.events[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"BlockPlaced"`)
	assert.Contains(t, string(data), `"key":"-2,1,7"`)

	var back BlockEvent
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec.events[0], back)

	var et EventType
	assert.Error(t, et.UnmarshalText([]byte("Exploded")))
}
