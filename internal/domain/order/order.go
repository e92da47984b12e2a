package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when checkout is attempted with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidStatus is returned for a status value outside the known set.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// ParseStatus matches s against the known statuses, ignoring case.
func ParseStatus(s string) (Status, error) {
	switch {
	case strings.EqualFold(s, string(StatusPending)):
		return StatusPending, nil
	case strings.EqualFold(s, string(StatusCompleted)):
		return StatusCompleted, nil
	}
	return "", errors.Wrapf(ErrInvalidStatus, "%q", s)
}

// CanTransition reports whether an order may move from one status to another.
// Pending → Completed is the only legal move; Completed is terminal.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to == StatusCompleted
}

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot change status from %s to %s", e.OrderID, e.From, e.To)
}

// Order is an immutable record of a checkout. Only Status may change later.
type Order struct {
	ID        string
	Items     []cart.Item
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
}

// New builds a Pending order from a copy of items. Total is the pre-tax
// subtotal of the items.
func New(id string, items []cart.Item, createdAt time.Time) *Order {
	return &Order{
		ID:        id,
		Items:     cart.Clone(items),
		Total:     cart.Subtotal(items),
		Status:    StatusPending,
		CreatedAt: createdAt.UTC(),
	}
}

// NewID returns a fresh order identifier.
func NewID() string {
	return uuid.New().String()
}

// Clone returns a deep copy of o.
func (o Order) Clone() Order {
	o.Items = cart.Clone(o.Items)
	return o
}

// Summary renders the items as "2x Classic Cheeseburger, 1x Refreshing Cola".
func (o Order) Summary() string {
	var b strings.Builder
	for i, it := range o.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(it.Quantity))
		b.WriteString("x ")
		b.WriteString(it.Name)
	}
	return b.String()
}

// Builder turns the cart contents into an order during checkout.
type Builder func(items []cart.Item) (*Order, error)

// Repository defines the order operations of the store.
type Repository interface {
	Orders(ctx context.Context) ([]Order, error)
	Order(ctx context.Context, id string) (*Order, error)
	CreateOrder(ctx context.Context, o *Order) error
	UpdateOrderStatus(ctx context.Context, id string, status Status) (*Order, error)
	// Checkout builds an order from the current cart, prepends it and clears
	// the cart as one step.
	Checkout(ctx context.Context, build Builder) (*Order, error)
}
