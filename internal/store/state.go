package store

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/ferretex/storefront-client/pkg/types"
)

// SessionState is the authenticated identity carried by the client.
// Invariant: IsAuthenticated is true iff both Token and User are set.
type SessionState struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	Token           string      `json:"token,omitempty"`
	User            *types.User `json:"user,omitempty"`
}

// CartLine is one cart entry. Quantity is always >= 1; a line that would
// reach zero is removed instead. StockCap is the stock level reported by the
// backend when the line was added, 0 when unknown.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	StockCap  int             `json:"stockCap,omitempty"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

// Subtotal is the line price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartState is the ordered collection of cart lines.
type CartState struct {
	Items []CartLine `json:"items"`
}

// Total sums all line subtotals.
func (c CartState) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count sums all line quantities.
func (c CartState) Count() int {
	count := 0
	for _, line := range c.Items {
		count += line.Quantity
	}
	return count
}

// Notification is the ephemeral banner. It lives in memory only and is never
// part of the persisted snapshot.
type Notification struct {
	Visible  bool
	Message  string
	Severity enums.Severity
}

// UIState holds presentation preferences.
type UIState struct {
	Sort         enums.SortOrder
	Notification Notification
}

// State is the full client-side state owned by the store. All mutation goes
// through named Store actions.
type State struct {
	Session SessionState
	Cart    CartState
	UI      UIState
	Orders  []types.Order
}

func baseState() State {
	return State{
		UI: UIState{Sort: enums.SortPriceAsc},
	}
}

// clone returns a copy safe to hand to listeners; slices are duplicated so
// later transitions cannot mutate what a reader holds.
func (s State) clone() State {
	out := s
	if s.Cart.Items != nil {
		out.Cart.Items = append([]CartLine(nil), s.Cart.Items...)
	}
	if s.Orders != nil {
		out.Orders = append([]types.Order(nil), s.Orders...)
	}
	return out
}

// snapshot is the persisted projection of State. The notification banner is
// deliberately absent.
type snapshot struct {
	Auth   SessionState  `json:"auth"`
	Cart   CartState     `json:"cart"`
	UI     snapshotUI    `json:"ui"`
	Orders []types.Order `json:"orders,omitempty"`
}

type snapshotUI struct {
	Sort enums.SortOrder `json:"sort"`
}

func encodeSnapshot(s State) ([]byte, error) {
	return json.Marshal(snapshot{
		Auth:   s.Session,
		Cart:   s.Cart,
		UI:     snapshotUI{Sort: s.UI.Sort},
		Orders: s.Orders,
	})
}

// decodeSnapshot maps a persisted blob back onto State, falling back to base
// defaults for any missing section. The session is NOT trusted here; the
// caller sanitizes it unconditionally.
func decodeSnapshot(blob []byte) (State, error) {
	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return State{}, err
	}
	state := baseState()
	state.Session = snap.Auth
	state.Cart = snap.Cart
	if snap.UI.Sort.IsValid() {
		state.UI.Sort = snap.UI.Sort
	}
	state.Orders = snap.Orders
	return state, nil
}
