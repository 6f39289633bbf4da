package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

// Key канонический ключ ячейки вида "x,y,z"
type Key string

// KeyOf формирует ключ ячейки
func KeyOf(g vec.Vec3) Key {
	var b strings.Builder
	b.Grow(24)
	b.WriteString(strconv.Itoa(g.X))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(g.Y))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(g.Z))
	return Key(b.String())
}

// CoordOf разбирает ключ обратно в координату.
// Принимается только каноническая форма, которую выдаёт KeyOf.
func CoordOf(k Key) (vec.Vec3, error) {
	parts := strings.Split(string(k), ",")
	if len(parts) != 3 {
		return vec.Vec3{}, fmt.Errorf("%w: %q", ErrMalformedKey, string(k))
	}

	var xyz [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || strconv.Itoa(n) != p {
			return vec.Vec3{}, fmt.Errorf("%w: %q", ErrMalformedKey, string(k))
		}
		xyz[i] = n
	}

	return vec.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func (k Key) String() string { return string(k) }
