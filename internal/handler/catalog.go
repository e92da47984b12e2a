package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

func (h *Handler) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range product.Categories {
				e.Str(string(c))
			}
		})
	})
}

// parseFilter reads ?category= and ?q=. "All" or an empty category matches
// every category.
func parseFilter(r *http.Request) (product.Filter, error) {
	q := r.URL.Query()
	f := product.Filter{Query: strings.TrimSpace(q.Get("q"))}
	if raw := q.Get("category"); raw != "" && !strings.EqualFold(raw, "all") {
		c, ok := product.ParseCategory(raw)
		if !ok {
			return f, badRequest("unknown category "+raw, nil)
		}
		f.Category = c
	}
	return f, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	products, err := h.products.Products(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	products = f.Apply(products)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				encodeProduct(e, p)
			}
		})
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

// productFields is the decoded body of product create and update requests.
type productFields struct {
	id    *string
	patch product.Patch
}

func decodeProductFields(r *http.Request) (productFields, error) {
	var f productFields
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			s, err := d.Str()
			if err != nil {
				return badRequest("id must be a string", err)
			}
			f.id = &s
		case "name":
			s, err := d.Str()
			if err != nil {
				return badRequest("name must be a string", err)
			}
			f.patch.Name = &s
		case "description":
			s, err := d.Str()
			if err != nil {
				return badRequest("description must be a string", err)
			}
			f.patch.Description = &s
		case "price":
			v, err := decodeMoney(d)
			if err != nil {
				return badRequest("price must be a number", err)
			}
			f.patch.Price = &v
		case "category":
			s, err := d.Str()
			if err != nil {
				return badRequest("category must be a string", err)
			}
			c, ok := product.ParseCategory(s)
			if !ok {
				// Left as given so validation reports it.
				c = product.Category(s)
			}
			f.patch.Category = &c
		case "image":
			s, err := d.Str()
			if err != nil {
				return badRequest("image must be a string", err)
			}
			f.patch.Image = &s
		default:
			return d.Skip()
		}
		return nil
	})
	return f, err
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	f, err := decodeProductFields(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := f.patch.Apply(product.Product{Price: decimal.Zero})
	if f.id != nil && *f.id != "" {
		p.ID = *f.id
	} else {
		p.ID = product.NewID()
	}
	if f.patch.Price == nil {
		h.fail(w, r, &product.ValidationError{Field: "price", Reason: "required"})
		return
	}

	if err := h.products.AddProduct(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/products/"+p.ID)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeProduct(e, p) })
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := decodeProductFields(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if f.id != nil && *f.id != id {
		h.fail(w, r, badRequest("product id cannot be changed", nil))
		return
	}
	if f.patch.Empty() {
		h.fail(w, r, badRequest("no fields to update", nil))
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), id, f.patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
