package world

import (
	"sort"

	"github.com/annel0/voxel-sandbox/internal/grid"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// EngineOptions параметры движка размещения
type EngineOptions struct {
	CellSize       float64         // размер ячейки, 0: grid.DefaultCellSize
	FloorY         int             // Y-координата слоя земли
	StrictNormals  bool            // паниковать на неосевой нормали (режим разработки)
	DefaultVariant block.VariantID // выбранный вариант при старте; пусто: ничего не выбрано
}

// Engine владеет картой занятости, каталогом вариантов и текущим выбором.
// Не потокобезопасен: все вызовы должны идти из одного потока (см. sandbox.Session).
type Engine struct {
	mapper        grid.Mapper
	floorY        int
	strictNormals bool

	catalog  *block.Catalog
	ready    map[block.VariantID]bool
	selected block.VariantID

	blocks    map[grid.Key]PlacedBlock
	listeners []SceneListener
}

// NewEngine создаёт движок над каталогом. nil каталог заменяется стандартным.
func NewEngine(catalog *block.Catalog, opts EngineOptions) *Engine {
	if catalog == nil {
		catalog = block.MustDefaultCatalog()
	}

	e := &Engine{
		mapper:        grid.NewMapper(opts.CellSize),
		floorY:        opts.FloorY,
		strictNormals: opts.StrictNormals,
		catalog:       catalog,
		ready:         make(map[block.VariantID]bool, catalog.Len()),
		blocks:        make(map[grid.Key]PlacedBlock),
	}

	// Варианты без модели готовы сразу
	for _, v := range catalog.List() {
		if !v.NeedsAsset() {
			e.ready[v.ID] = true
		}
	}

	if opts.DefaultVariant != "" && !e.SelectVariant(opts.DefaultVariant) {
		logging.Warn("⚠️ Вариант по умолчанию %q отсутствует в каталоге", opts.DefaultVariant)
	}

	return e
}

// AddListener подписывает слушателя на события сцены
func (e *Engine) AddListener(l SceneListener) {
	if l != nil {
		e.listeners = append(e.listeners, l)
	}
}

func (e *Engine) emit(ev BlockEvent) {
	for _, l := range e.listeners {
		l.OnSceneEvent(ev)
	}
}

// Mapper возвращает маппер координат движка
func (e *Engine) Mapper() grid.Mapper { return e.mapper }

// FloorY возвращает Y слоя земли
func (e *Engine) FloorY() int { return e.floorY }

// Catalog возвращает каталог вариантов
func (e *Engine) Catalog() *block.Catalog { return e.catalog }

// IsOccupied проверяет занятость ячейки
func (e *Engine) IsOccupied(g vec.Vec3) bool {
	_, ok := e.blocks[grid.KeyOf(g)]
	return ok
}

// CanPlace сообщает, свободна ли ячейка
func (e *Engine) CanPlace(g vec.Vec3) bool {
	return !e.IsOccupied(g)
}

// Get возвращает запись о блоке в ячейке
func (e *Engine) Get(g vec.Vec3) (PlacedBlock, bool) {
	b, ok := e.blocks[grid.KeyOf(g)]
	return b, ok
}

// Len количество установленных блоков
func (e *Engine) Len() int { return len(e.blocks) }

// Blocks возвращает снимок карты занятости, упорядоченный по (Y, Z, X)
func (e *Engine) Blocks() []PlacedBlock {
	out := make([]PlacedBlock, 0, len(e.blocks))
	for _, b := range e.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Coord, out[j].Coord
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return out
}

// ResolveTargetCell вычисляет ячейку для установки по попаданию луча.
// false без ошибки означает, что цели нет (луч ни во что не попал или
// соседняя ячейка оказалась ниже земли).
func (e *Engine) ResolveTargetCell(hit *RayHit) (vec.Vec3, bool, error) {
	if hit == nil {
		return vec.Vec3{}, false, nil
	}

	switch hit.Surface {
	case SurfaceGround:
		g, ok := e.mapper.CellOf(hit.Point)
		if !ok {
			return vec.Vec3{}, false, nil
		}
		g.Y = e.floorY
		return g, true, nil

	case SurfaceBlock:
		g, err := grid.AdjacentCell(hit.Block, hit.Normal)
		if err != nil {
			logging.Error("❌ Попадание в блок %v с некорректной нормалью: %v", hit.Block, err)
			if e.strictNormals {
				panic(err)
			}
			return vec.Vec3{}, false, err
		}
		if g.Y < e.floorY {
			return vec.Vec3{}, false, nil
		}
		return g, true, nil
	}

	return vec.Vec3{}, false, nil
}

// Preview вычисляет подсветку для попадания без изменения состояния
func (e *Engine) Preview(hit *RayHit) Preview {
	g, ok, err := e.ResolveTargetCell(hit)
	if err != nil || !ok {
		return Preview{}
	}
	return Preview{Target: g, HasTarget: true, CanPlace: e.CanPlace(g)}
}

// Place ставит блок варианта id в ячейку g.
// Сначала проверяется вариант, затем занятость; при отказе состояние не меняется.
func (e *Engine) Place(g vec.Vec3, id block.VariantID) PlaceResult {
	variant, ok := e.catalog.Get(id)
	if !ok || !e.ready[id] {
		logging.Debug("Установка в %v отклонена: вариант %q не выбран или не загружен", g, id)
		return PlaceResultRejectedNoVariant
	}

	key := grid.KeyOf(g)
	if _, occupied := e.blocks[key]; occupied {
		return PlaceResultRejectedOccupied
	}

	rec := PlacedBlock{Key: key, Coord: g, Variant: variant}
	e.blocks[key] = rec
	logging.LogBlockPlaced(g.X, g.Y, g.Z, string(id))

	e.emit(BlockEvent{EventType: EventTypeBlockPlaced, Block: rec})
	return PlaceResultPlaced
}

// PlaceSelected ставит блок текущего выбранного варианта
func (e *Engine) PlaceSelected(g vec.Vec3) PlaceResult {
	return e.Place(g, e.selected)
}

// Remove удаляет блок из ячейки g
func (e *Engine) Remove(g vec.Vec3) RemoveResult {
	key := grid.KeyOf(g)
	rec, ok := e.blocks[key]
	if !ok {
		return RemoveResultRejectedEmpty
	}

	delete(e.blocks, key)
	logging.LogBlockRemoved(g.X, g.Y, g.Z)

	e.emit(BlockEvent{EventType: EventTypeBlockRemoved, Block: rec})
	return RemoveResultRemoved
}

// RemoveHit удаляет блок, в который попал луч. Координата берётся из
// метаданных экземпляра (hit.Block), а не из точки попадания.
func (e *Engine) RemoveHit(hit *RayHit) RemoveResult {
	if hit == nil || hit.Surface != SurfaceBlock {
		return RemoveResultRejectedEmpty
	}
	return e.Remove(hit.Block)
}

// SelectVariant меняет выбранный вариант, если он есть в каталоге
func (e *Engine) SelectVariant(id block.VariantID) bool {
	if !e.catalog.Has(id) {
		return false
	}
	e.selected = id
	return true
}

// Selected возвращает выбранный вариант
func (e *Engine) Selected() (block.Variant, bool) {
	if e.selected == "" {
		return block.Variant{}, false
	}
	return e.catalog.Get(e.selected)
}

// MarkVariantReady отмечает, что рендер загрузил модель варианта
func (e *Engine) MarkVariantReady(id block.VariantID) bool {
	if !e.catalog.Has(id) {
		return false
	}
	e.ready[id] = true
	return true
}

// IsVariantReady сообщает, можно ли ставить блоки варианта
func (e *Engine) IsVariantReady(id block.VariantID) bool {
	return e.ready[id]
}

// ResetAll очищает карту занятости. Каталог и выбор не меняются.
func (e *Engine) ResetAll() int {
	n := len(e.blocks)
	e.blocks = make(map[grid.Key]PlacedBlock)

	logging.Info("🧹 Сцена очищена, удалено блоков: %d", n)
	e.emit(BlockEvent{EventType: EventTypeReset, Cleared: n})
	return n
}
