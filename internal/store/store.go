// Package store is the single owner of client-side state: session, cart, UI
// preferences, and the order cache. Every mutation is a named action applied
// under one lock, and the resulting snapshot is persisted before the action
// returns, so no later action can observe a torn intermediate state.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ferretex/storefront-client/pkg/enums"
	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/logger"
	"github.com/ferretex/storefront-client/pkg/storage"
	"github.com/ferretex/storefront-client/pkg/types"
)

var (
	errBackendRequired = errors.New("store backend is required")
	errLoggerRequired  = errors.New("store logger is required")
)

// Listener observes committed state transitions.
type Listener func(State)

// Store is the state container. Construct exactly one per application and
// pass it by reference; there is no ambient singleton.
type Store struct {
	mu        sync.Mutex
	state     State
	backend   storage.Backend
	logger    *logger.Logger
	listeners []Listener
}

// Params collects the Store dependencies.
type Params struct {
	Backend storage.Backend
	Logger  *logger.Logger
}

// New loads the persisted snapshot, sanitizes it, and returns a ready store.
// A missing or malformed snapshot is a cold start, never a failure.
func New(ctx context.Context, params Params) (*Store, error) {
	if params.Backend == nil {
		return nil, errBackendRequired
	}
	if params.Logger == nil {
		return nil, errLoggerRequired
	}

	s := &Store{
		backend: params.Backend,
		logger:  params.Logger,
		state:   baseState(),
	}

	blob, err := params.Backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotExist):
		// First run.
	case err != nil:
		params.Logger.Warn(ctx, fmt.Sprintf("snapshot unreadable, starting cold: %v", err))
	default:
		if loaded, decodeErr := decodeSnapshot(blob); decodeErr != nil {
			params.Logger.Warn(ctx, fmt.Sprintf("snapshot malformed, starting cold: %v", decodeErr))
		} else {
			s.state = loaded
		}
	}

	// Sanitization runs unconditionally, not only when fields are absent: a
	// partially persisted session must never load as authenticated.
	s.state.Session = sanitizeSession(s.state.Session)
	return s, nil
}

// sanitizeSession downgrades any session missing either half of its identity,
// or carrying a JWT that has already expired. Sanitizing an already-sane
// session is a fixed point.
func sanitizeSession(session SessionState) SessionState {
	if session.Token == "" || session.User == nil {
		return SessionState{}
	}
	if tokenExpired(session.Token) {
		return SessionState{}
	}
	session.IsAuthenticated = true
	return session
}

// Subscribe registers a listener invoked after every committed transition.
func (s *Store) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Token returns the current bearer token, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session.Token
}

// commit persists next and only then makes it the current state. On a failed
// write the previous state stays in force so memory and disk never diverge.
func (s *Store) commit(ctx context.Context, next State) error {
	blob, err := encodeSnapshot(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "encoding snapshot")
	}
	if err := s.backend.Save(ctx, blob, next.Session.Token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing snapshot")
	}
	s.state = next
	return nil
}

// apply runs a transition under the lock, persisting when it reports a change
// to persisted fields.
func (s *Store) apply(ctx context.Context, transition func(State) (State, bool)) error {
	s.mu.Lock()
	next, persist := transition(s.state.clone())
	if persist {
		if err := s.commit(ctx, next); err != nil {
			s.mu.Unlock()
			return err
		}
	} else {
		s.state = next
	}
	published := s.state.clone()
	listeners := s.listeners
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(published)
	}
	return nil
}

// Login establishes the session. The cart is intentionally untouched so a
// guest cart survives signing in.
func (s *Store) Login(ctx context.Context, token string, user types.User) error {
	return s.apply(ctx, func(state State) (State, bool) {
		state.Session = SessionState{
			IsAuthenticated: true,
			Token:           token,
			User:            &user,
		}
		return state, true
	})
}

// Logout is the full session teardown: session, cart, and the order cache
// reset together in one transition. Keeping this a single action is what
// rules out a partially-torn-down state.
func (s *Store) Logout(ctx context.Context) error {
	return s.apply(ctx, func(state State) (State, bool) {
		state.Session = SessionState{}
		state.Cart = CartState{}
		state.Orders = nil
		return state, true
	})
}

// AddToCart inserts a line at quantity 1 or increments an existing one.
// Incrementing past a known stock cap is rejected silently except for a
// single warning notification.
func (s *Store) AddToCart(ctx context.Context, product types.Product) error {
	return s.apply(ctx, func(state State) (State, bool) {
		for i, line := range state.Cart.Items {
			if line.ProductID != product.ID {
				continue
			}
			if capReached(line) {
				return stockCapNotice(state, line.Name), false
			}
			state.Cart.Items[i].Quantity++
			return state, true
		}
		if product.Stock == 0 {
			return stockCapNotice(state, product.Name), false
		}
		state.Cart.Items = append(state.Cart.Items, CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
			StockCap:  product.Stock,
			ImageURL:  product.ImageURL,
		})
		return state, true
	})
}

// IncrementQuantity bumps a line, subject to the stock cap.
func (s *Store) IncrementQuantity(ctx context.Context, productID string) error {
	return s.apply(ctx, func(state State) (State, bool) {
		for i, line := range state.Cart.Items {
			if line.ProductID != productID {
				continue
			}
			if capReached(line) {
				return stockCapNotice(state, line.Name), false
			}
			state.Cart.Items[i].Quantity++
			return state, true
		}
		return state, false
	})
}

// DecrementQuantity lowers a line; reaching zero removes the line entirely.
func (s *Store) DecrementQuantity(ctx context.Context, productID string) error {
	return s.apply(ctx, func(state State) (State, bool) {
		for i, line := range state.Cart.Items {
			if line.ProductID != productID {
				continue
			}
			if line.Quantity <= 1 {
				state.Cart.Items = append(state.Cart.Items[:i], state.Cart.Items[i+1:]...)
			} else {
				state.Cart.Items[i].Quantity--
			}
			return state, true
		}
		return state, false
	})
}

// RemoveFromCart drops a line.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	return s.apply(ctx, func(state State) (State, bool) {
		for i, line := range state.Cart.Items {
			if line.ProductID == productID {
				state.Cart.Items = append(state.Cart.Items[:i], state.Cart.Items[i+1:]...)
				return state, true
			}
		}
		return state, false
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) error {
	return s.apply(ctx, func(state State) (State, bool) {
		state.Cart = CartState{}
		return state, true
	})
}

// SetSortOrder updates the persisted catalog sort preference.
func (s *Store) SetSortOrder(ctx context.Context, order enums.SortOrder) error {
	if !order.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sort order %q", order))
	}
	return s.apply(ctx, func(state State) (State, bool) {
		state.UI.Sort = order
		return state, true
	})
}

// Notify raises the banner. Banner state is session-transient and skips
// persistence.
func (s *Store) Notify(ctx context.Context, message string, severity enums.Severity) error {
	return s.apply(ctx, func(state State) (State, bool) {
		state.UI.Notification = Notification{Visible: true, Message: message, Severity: severity}
		return state, false
	})
}

// DismissNotification hides the banner.
func (s *Store) DismissNotification(ctx context.Context) error {
	return s.apply(ctx, func(state State) (State, bool) {
		state.UI.Notification = Notification{}
		return state, false
	})
}

// CacheMyOrders replaces the order cache wholesale; entries are never merged.
func (s *Store) CacheMyOrders(ctx context.Context, orders []types.Order) error {
	return s.apply(ctx, func(state State) (State, bool) {
		state.Orders = append([]types.Order(nil), orders...)
		return state, true
	})
}

// ResetPersistence wipes both in-memory state and the persisted snapshot.
// Escape hatch for corrupted local state, not part of any normal flow.
func (s *Store) ResetPersistence(ctx context.Context) error {
	s.mu.Lock()
	if err := s.backend.Clear(ctx); err != nil {
		s.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "clearing snapshot")
	}
	s.state = baseState()
	published := s.state.clone()
	listeners := s.listeners
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(published)
	}
	return nil
}

func capReached(line CartLine) bool {
	return line.StockCap > 0 && line.Quantity >= line.StockCap
}

func stockCapNotice(state State, name string) State {
	state.UI.Notification = Notification{
		Visible:  true,
		Message:  fmt.Sprintf("No more stock available for %s", name),
		Severity: enums.SeverityWarning,
	}
	return state
}
