package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_Basics(t *testing.T) {
	a := Vec3{X: 1, Y: -2, Z: 3}
	b := Vec3{X: -1, Y: 2, Z: 0}

	assert.Equal(t, Vec3{X: 0, Y: 0, Z: 3}, a.Add(b), "Сумма векторов должна считаться покомпонентно")
	assert.True(t, a.Equals(Vec3{X: 1, Y: -2, Z: 3}))
	assert.False(t, a.Equals(b))
	assert.Equal(t, "(1,-2,3)", a.String())
	assert.Equal(t, Vec3Float{X: 1, Y: -2, Z: 3}, a.ToFloat())
}

func TestVec3Float_IsFinite(t *testing.T) {
	assert.True(t, Vec3Float{X: 1, Y: 2, Z: 3}.IsFinite())
	assert.False(t, Vec3Float{X: math.NaN()}.IsFinite(), "NaN не является конечным значением")
	assert.False(t, Vec3Float{Z: math.Inf(-1)}.IsFinite())
}

func TestVec2Float_DistanceTo(t *testing.T) {
	a := Vec2Float{X: 10, Y: 10}
	b := Vec2Float{X: 13, Y: 14}
	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-9, "Расстояние должно быть евклидовым")
	assert.InDelta(t, 5.0, b.Sub(a).Length(), 1e-9)
}
