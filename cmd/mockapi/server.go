package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ferretex/storefront-client/pkg/enums"
	"github.com/ferretex/storefront-client/pkg/logger"
)

// mockUser is a seeded account. Legacy accounts serialize with the old
// Spanish field names so the client's normalization keeps getting exercised.
type mockUser struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
	Legacy   bool
}

// mockProduct is a seeded catalog entry. Legacy entries serialize with the
// old field names (nombre, precio, stock_actual).
type mockProduct struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	ImageURL string
	Stock    int
	Reserved int
	Category string
	Status   enums.ProductStatus
	Active   bool
	Legacy   bool
}

type mockOrderItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

type mockOrder struct {
	ID        string
	UserID    string
	Status    enums.OrderStatus
	Mode      string
	Phone     string
	Address   string
	Notes     string
	Items     []mockOrderItem
	Total     decimal.Decimal
	CreatedAt time.Time
	Customer  string
}

// Server holds the in-memory backend state.
type Server struct {
	logger *logger.Logger

	mu       sync.Mutex
	users    map[string]*mockUser // by email
	tokens   map[string]string    // token -> user id
	products map[string]*mockProduct
	orders   map[string]*mockOrder
	markers  map[string]time.Time // resource -> last change
}

// NewServer seeds the mock backend.
func NewServer(logg *logger.Logger) *Server {
	now := time.Now().UTC()
	s := &Server{
		logger:   logg,
		users:    map[string]*mockUser{},
		tokens:   map[string]string{},
		products: map[string]*mockProduct{},
		orders:   map[string]*mockOrder{},
		markers: map[string]time.Time{
			"products": now,
			"orders":   now,
		},
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	for _, user := range []*mockUser{
		{ID: "u-ana", Name: "Ana Reyes", Email: "ana@example.com", Password: "cliente123", Role: "cliente", Legacy: true},
		{ID: "u-jorge", Name: "Jorge Soto", Email: "jorge@ferretex.cl", Password: "admin123", Role: "admin", Legacy: true},
		{ID: "u-sofia", Name: "Sofia Vidal", Email: "sofia@ferretex.cl", Password: "staff123", Role: "staff"},
	} {
		s.users[user.Email] = user
	}

	for _, product := range []*mockProduct{
		{ID: "p-hammer", Name: "Martillo Carpintero 16oz", Price: decimal.NewFromInt(12990), Stock: 24, Category: "herramientas", Status: enums.ProductStatusNone, Active: true, Legacy: true},
		{ID: "p-drill", Name: "Taladro Percutor 650W", Price: decimal.NewFromInt(45990), Stock: 7, Category: "herramientas", Status: enums.ProductStatusOffer, Active: true, Legacy: true},
		{ID: "p-nails", Name: "Clavos 2\" 1kg", Price: decimal.NewFromInt(2990), Stock: 180, Category: "fijaciones", Status: enums.ProductStatusNone, Active: true},
		{ID: "p-screws", Name: "Tornillos Autoperforantes x100", Price: decimal.NewFromInt(4490), Stock: 95, Category: "fijaciones", Status: enums.ProductStatusNew, Active: true},
		{ID: "p-paint", Name: "Pintura Latex Blanco 1gl", Price: decimal.NewFromInt(18990), Stock: 0, Category: "pinturas", Status: enums.ProductStatusNone, Active: true},
		{ID: "p-brush", Name: "Brocha 3\"", Price: decimal.NewFromInt(3490), Stock: 41, Category: "pinturas", Status: enums.ProductStatusNone, Active: true, Legacy: true},
	} {
		s.products[product.ID] = product
	}
}

// Router builds the HTTP surface. CORS is wide open; this server only ever
// runs locally.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}))

	r.Get("/api/health", s.handleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/verify-password", s.handleVerifyPassword)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Get("/meta", s.handleMarker("products"))
		r.Get("/{productID}", s.handleGetProduct)
		r.Post("/", s.requireRole("manager", s.handleCreateProduct))
		r.Patch("/{productID}", s.requireRole("manager", s.handleUpdateProduct))
		r.Patch("/{productID}/deactivate", s.requireRole("manager", s.handleDeactivateProduct))
	})

	r.Get("/api/categories", s.handleListCategories)

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/meta", s.handleMarker("orders"))
		r.Post("/", s.requireAuth(s.handleCreateOrder))
		r.Get("/me", s.requireAuth(s.handleMyOrders))
		r.Get("/", s.requireRole("staff", s.handleListOrders))
		r.Get("/{orderID}", s.requireAuth(s.handleGetOrder))
		r.Patch("/{orderID}/status", s.requireRole("staff", s.handleUpdateOrderStatus))
	})

	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/", s.requireRole("staff", s.handleListInventory))
		r.Patch("/{productID}", s.requireRole("staff", s.handleUpdateInventory))
	})

	return r
}

// authedUser resolves the bearer token. Returns nil when missing or unknown.
func (s *Server) authedUser(r *http.Request) *mockUser {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[header[len(prefix):]]
	if !ok {
		return nil
	}
	for _, user := range s.users {
		if user.ID == userID {
			return user
		}
	}
	return nil
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authedUser(r) == nil {
			writeError(w, http.StatusUnauthorized, "token invalido o ausente")
			return
		}
		next(w, r)
	}
}

// requireRole gates a handler. "staff" admits both staff and manager roles;
// legacy role spellings are normalized before the check.
func (s *Server) requireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.authedUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "token invalido o ausente")
			return
		}
		normalized := enums.NormalizeRole(user.Role)
		allowed := normalized == enums.Role(role) ||
			(role == "staff" && normalized.IsStaff())
		if !allowed {
			writeError(w, http.StatusForbidden, "permiso insuficiente")
			return
		}
		next(w, r)
	}
}

func (s *Server) issueToken(userID string) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

func (s *Server) bump(resource string) {
	s.markers[resource] = time.Now().UTC()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
