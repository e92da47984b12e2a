package product

import "github.com/shopspring/decimal"

// Patch is a partial product update. Nil fields are left untouched.
// The id is not patchable.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *Category
	Image       *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.Image == nil
}

// Apply returns a copy of base with the patch merged in.
func (p Patch) Apply(base Product) Product {
	out := base
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	return out
}
