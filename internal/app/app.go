// Package app is the storefront facade: every user intent enters here, gets
// checked against the session, goes out through the API client, and lands
// back in the store. UI layers call this package and subscribe to the store;
// they never touch the client directly.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/ferretex/storefront-client/internal/api"
	"github.com/ferretex/storefront-client/internal/confirm"
	"github.com/ferretex/storefront-client/internal/store"
	"github.com/ferretex/storefront-client/pkg/enums"
	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/logger"
	"github.com/ferretex/storefront-client/pkg/types"
)

var (
	errBackendRequired = errors.New("app backend is required")
	errStoreRequired   = errors.New("app store is required")
	errLoggerRequired  = errors.New("app logger is required")

	// ErrStale marks a response superseded by a newer request for the same
	// resource. Callers drop the result and keep whatever they last rendered.
	ErrStale = errors.New("response superseded by a newer request")
)

// Backend is the slice of the API client the facade depends on. The concrete
// implementation is *api.Client; tests substitute a stub.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Register(ctx context.Context, params api.RegisterParams) error
	VerifyPassword(ctx context.Context, token, password string) error

	ListProducts(ctx context.Context, filters api.ProductFilters) ([]types.Product, error)
	GetProduct(ctx context.Context, id string) (types.Product, error)
	ListCategories(ctx context.Context) ([]types.Category, error)
	CreateProduct(ctx context.Context, token string, input api.ProductInput) (types.Product, error)
	UpdateProduct(ctx context.Context, token, id string, input api.ProductInput) (types.Product, error)
	DeactivateProduct(ctx context.Context, token, id string) error

	CreateOrder(ctx context.Context, token string, payload api.OrderPayload) (types.Order, error)
	ListMyOrders(ctx context.Context, token string) ([]types.Order, error)
	ListOrders(ctx context.Context, token string, filters api.OrderFilters) ([]types.Order, error)
	GetOrder(ctx context.Context, token, id string) (types.Order, error)
	UpdateOrderStatus(ctx context.Context, token, id string, status enums.OrderStatus) error

	ListInventory(ctx context.Context, token string) ([]types.InventoryRow, error)
	UpdateInventoryStock(ctx context.Context, token, productID string, stockOnHand int) error

	ChangeMarker(ctx context.Context, resource api.Resource, token string) (types.ChangeMarker, error)
}

// App wires the store, the backend client, and the confirmation machine.
type App struct {
	backend Backend
	store   *store.Store
	confirm *confirm.Machine
	logger  *logger.Logger

	seqMu sync.Mutex
	seq   map[api.Resource]uint64
}

// Params collects the App dependencies.
type Params struct {
	Backend Backend
	Store   *store.Store
	Logger  *logger.Logger
}

func New(params Params) (*App, error) {
	if params.Backend == nil {
		return nil, errBackendRequired
	}
	if params.Store == nil {
		return nil, errStoreRequired
	}
	if params.Logger == nil {
		return nil, errLoggerRequired
	}
	machine, err := confirm.NewMachine(params.Backend, params.Logger)
	if err != nil {
		return nil, err
	}
	return &App{
		backend: params.Backend,
		store:   params.Store,
		confirm: machine,
		logger:  params.Logger,
		seq:     map[api.Resource]uint64{},
	}, nil
}

// Store exposes the state container for subscription and snapshots.
func (a *App) Store() *store.Store {
	return a.store
}

// beginRequest stamps a new fetch for the resource. Every new fetch makes all
// in-flight fetches for the same resource stale.
func (a *App) beginRequest(resource api.Resource) uint64 {
	a.seqMu.Lock()
	defer a.seqMu.Unlock()
	a.seq[resource]++
	return a.seq[resource]
}

// isLatest reports whether the stamped fetch is still the newest one.
func (a *App) isLatest(resource api.Resource, stamp uint64) bool {
	a.seqMu.Lock()
	defer a.seqMu.Unlock()
	return a.seq[resource] == stamp
}

// session returns the current session or an auth-required error.
func (a *App) session() (store.SessionState, error) {
	session := a.store.Snapshot().Session
	if !session.IsAuthenticated {
		return store.SessionState{}, pkgerrors.New(pkgerrors.CodeAuthRequired, "sign in required")
	}
	return session, nil
}

// staffSession additionally requires an operations-panel role.
func (a *App) staffSession() (store.SessionState, error) {
	session, err := a.session()
	if err != nil {
		return store.SessionState{}, err
	}
	if session.User == nil || !session.User.Role.IsStaff() {
		return store.SessionState{}, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	return session, nil
}

// SignIn authenticates and establishes the session. The order cache is
// refreshed best-effort; a failed refresh does not fail the sign-in.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	result, err := a.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.store.Login(ctx, result.Token, result.User); err != nil {
		return err
	}
	if err := a.RefreshMyOrders(ctx); err != nil && !errors.Is(err, ErrStale) {
		a.logger.Warn(ctx, "order cache refresh after sign-in failed: "+err.Error())
	}
	return nil
}

// SignUp registers an account and signs straight in with the new credentials.
func (a *App) SignUp(ctx context.Context, name, email, password string) error {
	err := a.backend.Register(ctx, api.RegisterParams{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	return a.SignIn(ctx, email, password)
}

// SignOut tears the session down locally. There is no server-side session to
// invalidate; the token simply stops being presented.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.confirm.Cancel(); err != nil {
		return err
	}
	return a.store.Logout(ctx)
}

// ConfirmPending runs the action awaiting password confirmation.
func (a *App) ConfirmPending(ctx context.Context, password string) error {
	session, err := a.session()
	if err != nil {
		return err
	}
	return a.confirm.Confirm(ctx, session.Token, password)
}

// PendingConfirmation reports the action awaiting confirmation, if any.
func (a *App) PendingConfirmation() (string, bool) {
	return a.confirm.Pending()
}

// CancelPending discards the action awaiting confirmation.
func (a *App) CancelPending() error {
	return a.confirm.Cancel()
}
