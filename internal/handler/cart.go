package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

// writeCart renders the current cart with its quote.
func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	items, err := h.cart.Cart(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := h.service.Quote(cart.Subtotal(items))
	writeJSON(w, status, func(e *jx.Encoder) { encodeCart(e, items, q) })
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, http.StatusOK)
}

// addToCart looks the product up in the catalog so the cart entry captures
// the current catalog values. An optional quantity adds several units at once.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var (
		productID string
		quantity  = 1
	)
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			s, err := d.Str()
			if err != nil {
				return badRequest("productId must be a string", err)
			}
			productID = s
		case "quantity":
			n, err := d.Int()
			if err != nil {
				return badRequest("quantity must be an integer", err)
			}
			if n < 1 {
				return badRequest("quantity must be at least 1", nil)
			}
			quantity = n
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if productID == "" {
		h.fail(w, r, badRequest("productId is required", nil))
		return
	}

	p, err := h.products.Product(r.Context(), productID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.cart.AddToCartN(r.Context(), *p, quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

// updateCartQuantity sets an absolute quantity. Zero or below removes the
// entry; an entry that is not in the cart is never created.
func (h *Handler) updateCartQuantity(w http.ResponseWriter, r *http.Request) {
	var (
		quantity int
		seen     bool
	)
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		n, err := d.Int()
		if err != nil {
			return badRequest("quantity must be an integer", err)
		}
		quantity, seen = n, true
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !seen {
		h.fail(w, r, badRequest("quantity is required", nil))
		return
	}

	if err := h.cart.UpdateCartQuantity(r.Context(), chi.URLParam(r, "id"), quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.RemoveFromCart(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.ClearCart(r.Context()); err != nil {
		h.fail(w, r, errors.Wrap(err, "clear cart"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
