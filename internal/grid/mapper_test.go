package grid

import (
	"math"
	"testing"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_WorldToGridFloors(t *testing.T) {
	m := NewMapper(1)

	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 0}, m.WorldToGrid(vec.Vec3Float{X: 0.99, Y: 0.01, Z: 0.5}))
	assert.Equal(t, vec.Vec3{X: -1, Y: -1, Z: -1}, m.WorldToGrid(vec.Vec3Float{X: -0.01, Y: -0.5, Z: -0.99}),
		"Отрицательные координаты должны округляться вниз, а не к нулю")
	assert.Equal(t, vec.Vec3{X: 3, Y: 0, Z: -4}, m.WorldToGrid(vec.Vec3Float{X: 3, Y: 0, Z: -4}))
}

func TestMapper_CellOfRejectsUnrepresentable(t *testing.T) {
	m := NewMapper(1)

	g, ok := m.CellOf(vec.Vec3Float{X: -2.5, Y: 0.5, Z: 7})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: -3, Y: 0, Z: 7}, g)

	for _, p := range []vec.Vec3Float{
		{X: 1e20},
		{Z: -1e20},
		{Y: math.MaxFloat64},
		{X: math.NaN()},
		{Z: math.Inf(-1)},
	} {
		_, ok := m.CellOf(p)
		assert.False(t, ok, "точка %+v не должна давать ячейку", p)
	}
}

func TestMapper_GridToWorldIsCellCenter(t *testing.T) {
	m := NewMapper(2)
	assert.Equal(t, vec.Vec3Float{X: 1, Y: 3, Z: -3}, m.GridToWorld(vec.Vec3{X: 0, Y: 1, Z: -2}))
}

func TestMapper_NonPositiveCellSizeFallsBack(t *testing.T) {
	assert.Equal(t, DefaultCellSize, NewMapper(0).CellSize)
	assert.Equal(t, DefaultCellSize, NewMapper(-3).CellSize)
	assert.Equal(t, DefaultCellSize, NewMapper(math.NaN()).CellSize)

	var zero Mapper
	assert.Equal(t, vec.Vec3{X: 2}, zero.WorldToGrid(vec.Vec3Float{X: 2.5}), "Нулевой Mapper должен вести себя как ячейка 1.0")
}

func TestMapper_Containment(t *testing.T) {
	for _, size := range []float64{1, 0.5, 2.5} {
		m := NewMapper(size)
		half := size / 2
		offsets := []float64{0, half * 0.999, -half * 0.999, half * 0.25, -half * 0.75}

		for x := -3; x <= 3; x++ {
			for y := -2; y <= 2; y++ {
				for z := -3; z <= 3; z += 3 {
					g := vec.Vec3{X: x, Y: y, Z: z}
					center := m.GridToWorld(g)
					for _, ex := range offsets {
						for _, ey := range offsets {
							p := center.Add(vec.Vec3Float{X: ex, Y: ey, Z: -ex})
							require.Equal(t, g, m.WorldToGrid(p), "size=%g g=%v eps=(%g,%g)", size, g, ex, ey)
						}
					}
				}
			}
		}
	}
}

func TestMapper_SnapToGridNearestCenter(t *testing.T) {
	m := NewMapper(1)
	assert.Equal(t, vec.Vec3{X: 1, Y: 0, Z: -1}, m.SnapToGrid(vec.Vec3Float{X: 1.4, Y: 0.6, Z: -0.6}))
	assert.Equal(t, vec.Vec3{X: 2}, m.SnapToGrid(vec.Vec3Float{X: 2.9}), "2.9 ближе к центру 2.5, чем к 3.5")
}

func TestAdjacentCell(t *testing.T) {
	origin := vec.Vec3{}
	cases := []struct {
		normal vec.Vec3Float
		want   vec.Vec3
	}{
		{NormalPosX, vec.Vec3{X: 1}},
		{NormalNegX, vec.Vec3{X: -1}},
		{NormalPosY, vec.Vec3{Y: 1}},
		{NormalNegY, vec.Vec3{Y: -1}},
		{NormalPosZ, vec.Vec3{Z: 1}},
		{NormalNegZ, vec.Vec3{Z: -1}},
	}
	for _, tc := range cases {
		got, err := AdjacentCell(origin, tc.normal)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	got, err := AdjacentCell(vec.Vec3{X: 5, Y: 2, Z: -7}, NormalPosY)
	require.NoError(t, err)
	assert.Equal(t, vec.Vec3{X: 5, Y: 3, Z: -7}, got)
}

func TestAdjacentCell_RejectsNonAxisNormals(t *testing.T) {
	bad := []vec.Vec3Float{
		{},
		{X: 0.7071, Y: 0.7071},
		{X: 2},
		{Y: 0.999},
		{X: math.NaN()},
	}
	for _, n := range bad {
		g := vec.Vec3{X: 1, Y: 1, Z: 1}
		got, err := AdjacentCell(g, n)
		assert.ErrorIs(t, err, ErrInvalidNormal, "нормаль %v должна быть отклонена", n)
		assert.Equal(t, g, got, "При ошибке координата не должна меняться")
		assert.False(t, IsAxisNormal(n))
	}
}

func TestSnapNormal(t *testing.T) {
	n, err := SnapNormal(vec.Vec3Float{X: 0.1, Y: 0.98, Z: -0.05})
	require.NoError(t, err)
	assert.Equal(t, NormalPosY, n)

	n, err = SnapNormal(vec.Vec3Float{X: -0.6, Y: 0.3, Z: 0.5})
	require.NoError(t, err)
	assert.Equal(t, NormalNegX, n)

	n, err = SnapNormal(vec.Vec3Float{Z: -3})
	require.NoError(t, err)
	assert.Equal(t, NormalNegZ, n)

	_, err = SnapNormal(vec.Vec3Float{})
	assert.ErrorIs(t, err, ErrInvalidNormal)
	_, err = SnapNormal(vec.Vec3Float{Y: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidNormal)
}
