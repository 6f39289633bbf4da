package block

import "fmt"

// Catalog упорядоченный неизменяемый каталог вариантов.
// Создаётся один раз при старте, после этого только читается.
type Catalog struct {
	variants []Variant
	index    map[VariantID]int
}

// NewCatalog проверяет варианты и строит каталог в заданном порядке
func NewCatalog(variants []Variant) (*Catalog, error) {
	c := &Catalog{
		variants: make([]Variant, 0, len(variants)),
		index:    make(map[VariantID]int, len(variants)),
	}

	for _, v := range variants {
		if v.ID == "" {
			return nil, ErrEmptyVariantID
		}
		if _, exists := c.index[v.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariant, v.ID)
		}
		if v.Name == "" {
			v.Name = string(v.ID)
		}
		c.index[v.ID] = len(c.variants)
		c.variants = append(c.variants, v)
	}

	return c, nil
}

// MustDefaultCatalog возвращает каталог стандартных вариантов
func MustDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultVariants())
	if err != nil {
		panic(err)
	}
	return c
}

// Get возвращает вариант по ID
func (c *Catalog) Get(id VariantID) (Variant, bool) {
	i, ok := c.index[id]
	if !ok {
		return Variant{}, false
	}
	return c.variants[i], true
}

// Has проверяет наличие варианта в каталоге
func (c *Catalog) Has(id VariantID) bool {
	_, ok := c.index[id]
	return ok
}

// List возвращает копию вариантов в порядке каталога
func (c *Catalog) List() []Variant {
	out := make([]Variant, len(c.variants))
	copy(out, c.variants)
	return out
}

// Len количество вариантов
func (c *Catalog) Len() int {
	return len(c.variants)
}
