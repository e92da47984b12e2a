package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/store"
)

const maxBodySize = 1 << 20

// expectEOF fails when anything but whitespace follows the decoded value.
func expectEOF(d *jx.Decoder) error {
	switch err := d.Skip(); {
	case err == nil:
		return errors.New("unexpected trailing value")
	case errors.Is(err, io.EOF):
		return nil
	default:
		return errors.Wrap(err, "trailing data")
	}
}

// requestError marks a malformed request body or parameter.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{msg: msg, err: err}
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func encodeError(e *jx.Encoder, code int, msg string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
}

// encodeMoney writes an exact decimal as a JSON number.
func encodeMoney(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

func encodeProductFields(e *jx.Encoder, p product.Product) {
	e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
	e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
	e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
	e.Field("price", func(e *jx.Encoder) { encodeMoney(e, p.Price) })
	e.Field("category", func(e *jx.Encoder) { e.Str(string(p.Category)) })
	e.Field("image", func(e *jx.Encoder) { e.Str(p.Image) })
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) { encodeProductFields(e, p) })
}

func encodeItems(e *jx.Encoder, items []cart.Item) {
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			e.Obj(func(e *jx.Encoder) {
				encodeProductFields(e, it.Product)
				e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
				e.Field("lineTotal", func(e *jx.Encoder) { encodeMoney(e, it.LineTotal()) })
			})
		}
	})
}

func encodeQuote(e *jx.Encoder, q cart.Quote) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("subtotal", func(e *jx.Encoder) { encodeMoney(e, q.Subtotal) })
		e.Field("tax", func(e *jx.Encoder) { encodeMoney(e, q.Tax) })
		e.Field("total", func(e *jx.Encoder) { encodeMoney(e, q.Total) })
	})
}

func encodeCart(e *jx.Encoder, items []cart.Item, q cart.Quote) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) { encodeItems(e, items) })
		e.Field("count", func(e *jx.Encoder) { e.Int(cart.Count(items)) })
		e.Field("quote", func(e *jx.Encoder) { encodeQuote(e, q) })
	})
}

func encodeOrderFields(e *jx.Encoder, o order.Order) {
	e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
	e.Field("items", func(e *jx.Encoder) { encodeItems(e, o.Items) })
	e.Field("summary", func(e *jx.Encoder) { e.Str(o.Summary()) })
	e.Field("total", func(e *jx.Encoder) { encodeMoney(e, o.Total) })
	e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
	e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339Nano)) })
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) { encodeOrderFields(e, o) })
}

func encodeEvent(e *jx.Encoder, ev store.Event) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(ev.Kind)) })
		if ev.ProductID != "" {
			e.Field("productId", func(e *jx.Encoder) { e.Str(ev.ProductID) })
		}
		if ev.OrderID != "" {
			e.Field("orderId", func(e *jx.Encoder) { e.Str(ev.OrderID) })
		}
		if ev.Kind == store.CartUpdated {
			e.Field("quantity", func(e *jx.Encoder) { e.Int(ev.Quantity) })
		}
		if ev.Status != "" {
			e.Field("status", func(e *jx.Encoder) { e.Str(string(ev.Status)) })
		}
		e.Field("at", func(e *jx.Encoder) { e.Str(ev.At.Format(time.RFC3339Nano)) })
	})
}

// decodeBody reads a JSON object from the request body, calling field for
// each key. Unknown keys must be skipped by field.
func decodeBody(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return badRequest("read body", err)
	}
	if len(data) == 0 {
		return badRequest("request body required", nil)
	}
	d := jx.DecodeBytes(data)
	if err := d.Obj(field); err != nil {
		var rErr *requestError
		if errors.As(err, &rErr) {
			return rErr
		}
		return badRequest("invalid JSON body", err)
	}
	if err := expectEOF(d); err != nil {
		return badRequest("invalid JSON body", err)
	}
	return nil
}

// decodeMoney accepts a JSON number or a numeric string.
func decodeMoney(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}
