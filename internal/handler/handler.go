// Package handler exposes the storefront store over HTTP/JSON and streams
// store events over WebSocket.
package handler

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/store"
)

// EventSource is the subscription side of the store event bus.
type EventSource interface {
	Subscribe(buffer int) (<-chan store.Event, func())
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// EventBuffer is the per-connection event queue length. Defaults to 64.
	EventBuffer int
	// AllowedOrigins restricts websocket upgrades. Empty or "*" allows any.
	AllowedOrigins []string
}

// Handler serves the storefront API.
type Handler struct {
	products product.Repository
	cart     cart.Repository
	orders   order.Repository
	service  *order.Service
	events   EventSource

	eventBuffer int
	upgrader    websocket.Upgrader
	closing     chan struct{}
	closeOnce   sync.Once
}

// New constructs a Handler on top of the store repositories.
func New(
	cfg Config,
	products product.Repository,
	cartRepo cart.Repository,
	orders order.Repository,
	service *order.Service,
	events EventSource,
) *Handler {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	return &Handler{
		products:    products,
		cart:        cartRepo,
		orders:      orders,
		service:     service,
		events:      events,
		eventBuffer: cfg.EventBuffer,
		closing:     make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.listCategories)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)

		r.Get("/cart", h.getCart)
		r.Delete("/cart", h.clearCart)
		r.Post("/cart/items", h.addToCart)
		r.Put("/cart/items/{id}", h.updateCartQuantity)
		r.Delete("/cart/items/{id}", h.removeFromCart)

		r.Post("/checkout", h.checkout)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/products", h.addProduct)
			r.Patch("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)
			r.Put("/orders/{id}/status", h.updateOrderStatus)
			r.Post("/orders/{id}/complete", h.completeOrder)
			r.Get("/stats", h.stats)
		})

		r.Get("/events", h.streamEvents)
	})
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(o)] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var (
		reqErr        *requestError
		validationErr *product.ValidationError
		transitionErr *order.InvalidTransitionError
		quantityErr   *cart.QuantityError
	)
	switch {
	case errors.As(err, &reqErr),
		errors.As(err, &validationErr),
		errors.Is(err, order.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, product.ErrDuplicateID):
		return http.StatusConflict
	case errors.As(err, &transitionErr),
		errors.As(err, &quantityErr),
		errors.Is(err, order.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a {"code","message"} body. Internal errors are logged
// and their text is not leaked to the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	lg := zctx.From(r.Context())
	if status == http.StatusInternalServerError {
		lg.Error("Request failed", zap.Error(err))
		msg = "internal error"
	} else {
		lg.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, func(e *jx.Encoder) { encodeError(e, status, msg) })
}
