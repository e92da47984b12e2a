package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/order"
)

// EventKind names a store mutation.
type EventKind string

const (
	ProductAdded       EventKind = "ProductAdded"
	ProductUpdated     EventKind = "ProductUpdated"
	ProductDeleted     EventKind = "ProductDeleted"
	CartUpdated        EventKind = "CartUpdated"
	CartCleared        EventKind = "CartCleared"
	OrderPlaced        EventKind = "OrderPlaced"
	OrderStatusChanged EventKind = "OrderStatusChanged"
)

// Event describes a mutation that has been applied. Observers re-read the
// slice of state they depend on; events carry ids, not data.
type Event struct {
	Kind      EventKind
	ProductID string
	OrderID   string
	// Quantity is the new cart quantity for CartUpdated, zero when removed.
	Quantity int
	Status   order.Status
	At       time.Time
}

// Bus fans events out to subscribers. Sends never block: a subscriber whose
// buffer is full misses the event.
type Bus struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan Event
	lg      *zap.Logger
	metrics *metrics
}

func newBus(lg *zap.Logger, m *metrics) *Bus {
	return &Bus{
		subs:    make(map[int]chan Event),
		lg:      lg,
		metrics: m,
	}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel; it is safe to call more
// than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.metrics.eventDropped()
			b.lg.Debug("Event dropped for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("kind", string(e.Kind)),
			)
		}
	}
}
