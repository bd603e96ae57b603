// Package status is the machine status feed consumed by hosted widgets.
//
// A Service is passed by reference to every widget factory. Widgets subscribe
// to the keys they display when they are built and unsubscribe when they are
// closed, so no widget depends on process-wide state.
package status

import (
	"sort"
	"sync"
)

// Well-known status keys.
const (
	// KeyAxisPositions carries an AxisPositions value.
	KeyAxisPositions = "axis_positions"
)

// AxisPositions holds absolute, relative and distance-to-go positions
// indexed by axis number in "xyzabcuvw" order.
type AxisPositions struct {
	Abs [9]float64
	Rel [9]float64
	DTG [9]float64
}

// Handler receives an updated value for a subscribed key.
type Handler func(value any)

// Subscription is returned by Subscribe and ends delivery when unsubscribed.
type Subscription struct {
	svc *Service
	key string
	id  uint64
}

// Unsubscribe stops delivery. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.svc == nil {
		return
	}
	s.svc.remove(s.key, s.id)
	s.svc = nil
}

// Service is a keyed observable value store.
type Service struct {
	mu       sync.Mutex
	nextID   uint64
	values   map[string]any
	handlers map[string]map[uint64]Handler
}

func NewService() *Service {
	return &Service{
		values:   make(map[string]any),
		handlers: make(map[string]map[uint64]Handler),
	}
}

// Subscribe registers fn for key. If the key already has a value and
// immediate is true, fn is called with it before Subscribe returns.
func (s *Service) Subscribe(key string, fn Handler, immediate bool) *Subscription {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.handlers[key] == nil {
		s.handlers[key] = make(map[uint64]Handler)
	}
	s.handlers[key][id] = fn
	current, has := s.values[key]
	s.mu.Unlock()

	if immediate && has {
		fn(current)
	}
	return &Subscription{svc: s, key: key, id: id}
}

// Publish stores value and notifies subscribers of key in subscription order.
// Handlers run on the publishing goroutine outside the service lock.
func (s *Service) Publish(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	subs := s.handlers[key]
	ids := make([]uint64, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]Handler, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Value returns the last published value of key.
func (s *Service) Value(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Subscribers returns the number of live subscriptions for key.
func (s *Service) Subscribers(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers[key])
}

func (s *Service) remove(key string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.handlers[key]
	delete(subs, id)
	if len(subs) == 0 {
		delete(s.handlers, key)
	}
}
