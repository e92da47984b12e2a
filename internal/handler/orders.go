package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-storefront/internal/domain/order"
)

// checkout places the cart as a new order.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.PlaceOrder(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/orders/"+res.Order.ID)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("order", func(e *jx.Encoder) { encodeOrder(e, *res.Order) })
			e.Field("quote", func(e *jx.Encoder) { encodeQuote(e, res.Quote) })
		})
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Orders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, o := range orders {
				encodeOrder(e, o)
			}
		})
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var raw string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return badRequest("status must be a string", err)
		}
		raw = s
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status, err := order.ParseStatus(raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	o, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func (h *Handler) completeOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("revenue", func(e *jx.Encoder) { encodeMoney(e, s.Revenue) })
			e.Field("pending", func(e *jx.Encoder) { e.Int(s.Pending) })
			e.Field("completed", func(e *jx.Encoder) { e.Int(s.Completed) })
			e.Field("orders", func(e *jx.Encoder) { e.Int(s.Pending + s.Completed) })
		})
	})
}
