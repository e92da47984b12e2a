// Package seed provides the storefront's built-in starting state and a file
// format for replacing the seed catalog.
package seed

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

const imageBase = "https://images.unsplash.com/"

// Products returns the built-in catalog.
func Products() []product.Product {
	return []product.Product{
		{
			ID:          "1",
			Name:        "Classic Cheeseburger",
			Description: "Juicy beef patty with cheddar cheese, lettuce, tomato, and our secret sauce.",
			Price:       decimal.RequireFromString("12.99"),
			Category:    product.CategoryBurgers,
			Image:       imageBase + "photo-1625331725309-83e4f3c1373b?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "2",
			Name:        "Crispy French Fries",
			Description: "Golden crispy fries seasoned with sea salt.",
			Price:       decimal.RequireFromString("4.99"),
			Category:    product.CategorySides,
			Image:       imageBase + "photo-1630384060421-cb20d0e0649d?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "3",
			Name:        "Refreshing Cola",
			Description: "Ice-cold cola to quench your thirst.",
			Price:       decimal.RequireFromString("2.99"),
			Category:    product.CategoryDrinks,
			Image:       imageBase + "photo-1594881798661-4c77c99551a8?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "4",
			Name:        "Caesar Salad",
			Description: "Fresh romaine lettuce with parmesan, croutons, and caesar dressing.",
			Price:       decimal.RequireFromString("9.99"),
			Category:    product.CategorySides,
			Image:       imageBase + "photo-1550304943-4f24f54ddde9?fit=max&fm=jpg&q=80&w=1080",
		},
		{
			ID:          "5",
			Name:        "Chocolate Milkshake",
			Description: "Creamy chocolate milkshake topped with whipped cream.",
			Price:       decimal.RequireFromString("5.99"),
			Category:    product.CategoryDrinks,
			Image:       imageBase + "photo-1572490122747-3968b75cc699?fit=max&fm=jpg&q=80&w=1080",
		},
	}
}

// Orders returns the demo order history relative to now, newest first: one
// Pending order placed now and one Completed order from a day earlier.
// Items are drawn from catalog by id; missing ids are skipped, and an order
// left without items is dropped.
func Orders(catalog []product.Product, now time.Time) []order.Order {
	byID := make(map[string]product.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	items := func(lines ...line) []cart.Item {
		out := make([]cart.Item, 0, len(lines))
		for _, l := range lines {
			if p, ok := byID[l.id]; ok {
				out = append(out, cart.Item{Product: p, Quantity: l.qty})
			}
		}
		return out
	}

	pending := order.New("ord_123", items(line{"1", 2}, line{"3", 2}), now)
	completed := order.New("ord_124", items(line{"2", 1}), now.Add(-24*time.Hour))
	completed.Status = order.StatusCompleted

	out := make([]order.Order, 0, 2)
	for _, o := range []*order.Order{pending, completed} {
		if len(o.Items) > 0 {
			out = append(out, *o)
		}
	}
	return out
}

type line struct {
	id  string
	qty int
}
