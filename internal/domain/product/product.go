package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateID is returned when a product id is already in the catalog.
	ErrDuplicateID = errors.New("product id already exists")
)

// Category is the menu section a product is listed under.
type Category string

const (
	CategoryBurgers Category = "Burgers"
	CategorySides   Category = "Sides"
	CategoryDrinks  Category = "Drinks"
)

// Categories lists every category in menu order.
var Categories = []Category{CategoryBurgers, CategorySides, CategoryDrinks}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBurgers, CategorySides, CategoryDrinks:
		return true
	}
	return false
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    Category
	Image       string
}

// NewID returns a fresh product identifier.
func NewID() string {
	return uuid.New().String()
}

// ValidationError reports a required field that is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product %s: %s", e.Field, e.Reason)
}

// Validate checks required field presence. Nothing else is enforced.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return &ValidationError{Field: "id", Reason: "required"}
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case p.Price.IsNegative():
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	case !p.Category.Valid():
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", p.Category)}
	}
	return nil
}

// Repository defines the catalog operations of the store.
type Repository interface {
	Products(ctx context.Context) ([]Product, error)
	Product(ctx context.Context, id string) (*Product, error)
	AddProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, id string, patch Patch) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
