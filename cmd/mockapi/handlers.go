package main

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ferretex/storefront-client/pkg/enums"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo invalido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(body.Email))]
	if !ok || user.Password != body.Password {
		writeError(w, http.StatusUnauthorized, "credenciales invalidas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": s.issueToken(user.ID),
		"user":  userJSON(user),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo invalido")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email y password son obligatorios")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		writeError(w, http.StatusUnprocessableEntity, "el correo ya esta registrado")
		return
	}
	role := body.Role
	if role == "" {
		role = "customer"
	}
	user := &mockUser{
		ID:       "u-" + uuid.NewString()[:8],
		Name:     body.Name,
		Email:    email,
		Password: body.Password,
		Role:     role,
	}
	s.users[email] = user
	writeJSON(w, http.StatusCreated, map[string]any{"user": userJSON(user)})
}

func (s *Server) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "token invalido o ausente")
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password != user.Password {
		writeError(w, http.StatusUnauthorized, "credenciales invalidas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*mockProduct
	for _, product := range s.products {
		if !product.Active {
			continue
		}
		if q := query.Get("q"); q != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(q)) {
			continue
		}
		if cat := query.Get("cat"); cat != "" && product.Category != cat {
			continue
		}
		if status := query.Get("status"); status != "" && string(product.Status) != status {
			continue
		}
		if query.Get("inStock") == "true" && product.Stock <= 0 {
			continue
		}
		if raw := query.Get("minPrice"); raw != "" {
			if min, err := decimal.NewFromString(raw); err == nil && product.Price.LessThan(min) {
				continue
			}
		}
		if raw := query.Get("maxPrice"); raw != "" {
			if max, err := decimal.NewFromString(raw); err == nil && max.LessThan(product.Price) {
				continue
			}
		}
		matched = append(matched, product)
	}

	sortMockProducts(matched, query.Get("sort"))

	payload := make([]map[string]any, 0, len(matched))
	for _, product := range matched {
		payload = append(payload, productJSON(product))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[chi.URLParam(r, "productID")]
	if !ok || !product.Active {
		writeError(w, http.StatusNotFound, "producto no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, productJSON(product))
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string          `json:"name"`
		Price    decimal.Decimal `json:"price"`
		ImageURL string          `json:"image_url"`
		Stock    int             `json:"stock"`
		Category string          `json:"category"`
		Status   string          `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "nombre es obligatorio")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	product := &mockProduct{
		ID:       "p-" + uuid.NewString()[:8],
		Name:     body.Name,
		Price:    body.Price,
		ImageURL: body.ImageURL,
		Stock:    body.Stock,
		Category: body.Category,
		Status:   enums.ProductStatus(body.Status),
		Active:   true,
	}
	s.products[product.ID] = product
	s.bump("products")
	writeJSON(w, http.StatusCreated, productJSON(product))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string           `json:"name"`
		Price    *decimal.Decimal `json:"price"`
		ImageURL *string          `json:"image_url"`
		Stock    *int             `json:"stock"`
		Category *string          `json:"category"`
		Status   *string          `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo invalido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[chi.URLParam(r, "productID")]
	if !ok {
		writeError(w, http.StatusNotFound, "producto no encontrado")
		return
	}
	if body.Name != "" {
		product.Name = body.Name
	}
	if body.Price != nil {
		product.Price = *body.Price
	}
	if body.ImageURL != nil {
		product.ImageURL = *body.ImageURL
	}
	if body.Stock != nil {
		product.Stock = *body.Stock
	}
	if body.Category != nil {
		product.Category = *body.Category
	}
	if body.Status != nil {
		product.Status = enums.ProductStatus(*body.Status)
	}
	s.bump("products")
	writeJSON(w, http.StatusOK, productJSON(product))
}

func (s *Server) handleDeactivateProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[chi.URLParam(r, "productID")]
	if !ok {
		writeError(w, http.StatusNotFound, "producto no encontrado")
		return
	}
	product.Active = false
	s.bump("products")
	writeJSON(w, http.StatusOK, map[string]bool{"deactivated": true})
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var categories []map[string]string
	for _, product := range s.products {
		if !product.Active || product.Category == "" || seen[product.Category] {
			continue
		}
		seen[product.Category] = true
		categories = append(categories, map[string]string{
			"id":   product.Category,
			"name": strings.ToUpper(product.Category[:1]) + product.Category[1:],
			"slug": product.Category,
		})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i]["slug"] < categories[j]["slug"] })
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleMarker(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{
			"lastChanged": s.markers[resource].Format(time.RFC3339Nano),
		})
	}
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	var body struct {
		Mode    string `json:"mode"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		Notes   string `json:"notes"`
		Items   []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"qty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "el pedido no tiene items")
		return
	}
	if body.Mode == "delivery" && body.Address == "" {
		writeError(w, http.StatusUnprocessableEntity, "direccion es obligatoria para despacho")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := &mockOrder{
		ID:        "o-" + uuid.NewString()[:8],
		UserID:    user.ID,
		Status:    enums.OrderStatusPendingPayment,
		Mode:      body.Mode,
		Phone:     body.Phone,
		Address:   body.Address,
		Notes:     body.Notes,
		Total:     decimal.Zero,
		CreatedAt: time.Now().UTC(),
		Customer:  user.Name,
	}
	for _, item := range body.Items {
		product, ok := s.products[item.ProductID]
		if !ok || !product.Active {
			writeError(w, http.StatusUnprocessableEntity, "producto no disponible: "+item.ProductID)
			return
		}
		if item.Quantity <= 0 || item.Quantity > product.Stock {
			writeError(w, http.StatusUnprocessableEntity, "stock insuficiente para "+product.Name)
			return
		}
		order.Items = append(order.Items, mockOrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
		order.Total = order.Total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	for _, item := range order.Items {
		s.products[item.ProductID].Stock -= item.Quantity
	}
	s.orders[order.ID] = order
	s.bump("orders")
	s.bump("products")
	writeJSON(w, http.StatusCreated, orderJSON(order))
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []*mockOrder
	for _, order := range s.orders {
		if order.UserID == user.ID {
			mine = append(mine, order)
		}
	}
	writeJSON(w, http.StatusOK, ordersJSON(mine))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*mockOrder, 0, len(s.orders))
	for _, order := range s.orders {
		all = append(all, order)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit < len(all) {
			all = all[:limit]
		}
	}
	writeJSON(w, http.StatusOK, ordersJSON(all))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[chi.URLParam(r, "orderID")]
	if !ok {
		writeError(w, http.StatusNotFound, "pedido no encontrado")
		return
	}
	if order.UserID != user.ID && !enums.NormalizeRole(user.Role).IsStaff() {
		writeError(w, http.StatusForbidden, "permiso insuficiente")
		return
	}
	writeJSON(w, http.StatusOK, orderJSON(order))
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	user := s.authedUser(r)
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo invalido")
		return
	}
	target, err := enums.ParseOrderStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "estado desconocido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[chi.URLParam(r, "orderID")]
	if !ok {
		writeError(w, http.StatusNotFound, "pedido no encontrado")
		return
	}
	if !order.Status.CanTransition(target) {
		writeError(w, http.StatusUnprocessableEntity, "transicion de estado invalida")
		return
	}
	if target.RequiresManager() && enums.NormalizeRole(user.Role) != enums.RoleManager {
		writeError(w, http.StatusForbidden, "se requiere un manager")
		return
	}
	order.Status = target
	s.bump("orders")
	writeJSON(w, http.StatusOK, orderJSON(order))
}

func (s *Server) handleListInventory(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]map[string]any, 0, len(s.products))
	for _, product := range s.products {
		if !product.Active {
			continue
		}
		row := map[string]any{
			"product_id":      product.ID,
			"stock_reserved":  product.Reserved,
			"stock_available": product.Stock - product.Reserved,
		}
		// Legacy rows carry the old name and camelCase stock keys.
		if product.Legacy {
			row["nombre"] = product.Name
			row["stockOnHand"] = product.Stock
		} else {
			row["name"] = product.Name
			row["stock_on_hand"] = product.Stock
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["product_id"].(string) < rows[j]["product_id"].(string)
	})
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleUpdateInventory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StockOnHand *int `json:"stock_on_hand"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.StockOnHand == nil || *body.StockOnHand < 0 {
		writeError(w, http.StatusUnprocessableEntity, "stock_on_hand invalido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[chi.URLParam(r, "productID")]
	if !ok {
		writeError(w, http.StatusNotFound, "producto no encontrado")
		return
	}
	product.Stock = *body.StockOnHand
	s.bump("products")
	writeJSON(w, http.StatusOK, map[string]int{"stock_on_hand": product.Stock})
}

// userJSON serializes a user; legacy accounts keep the old field spellings.
func userJSON(user *mockUser) map[string]any {
	if user.Legacy {
		return map[string]any{
			"id":     user.ID,
			"nombre": user.Name,
			"email":  user.Email,
			"rol":    user.Role,
		}
	}
	return map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
}

// productJSON serializes a product; legacy entries keep the old field
// spellings and quote the price, exactly as the real backend does.
func productJSON(product *mockProduct) map[string]any {
	if product.Legacy {
		payload := map[string]any{
			"id":              product.ID,
			"nombre":          product.Name,
			"precio":          product.Price.String(),
			"stock_actual":    product.Stock,
			"category_nombre": product.Category,
		}
		if product.ImageURL != "" {
			payload["imagen_url"] = product.ImageURL
		}
		if product.Status != enums.ProductStatusNone {
			payload["status"] = string(product.Status)
		}
		return payload
	}
	payload := map[string]any{
		"id":       product.ID,
		"name":     product.Name,
		"price":    product.Price,
		"stock":    product.Stock,
		"category": product.Category,
	}
	if product.ImageURL != "" {
		payload["image_url"] = product.ImageURL
	}
	if product.Status != enums.ProductStatusNone {
		payload["status"] = string(product.Status)
	}
	return payload
}

func orderJSON(order *mockOrder) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"productId":  item.ProductID,
			"name":       item.Name,
			"unit_price": item.UnitPrice,
			"qty":        item.Quantity,
		})
	}
	return map[string]any{
		"id":         order.ID,
		"status":     string(order.Status),
		"mode":       order.Mode,
		"phone":      order.Phone,
		"address":    order.Address,
		"notes":      order.Notes,
		"items":      items,
		"total":      order.Total,
		"created_at": order.CreatedAt.Format(time.RFC3339Nano),
		"customer":   order.Customer,
	}
}

func ordersJSON(orders []*mockOrder) []map[string]any {
	sorted := append([]*mockOrder(nil), orders...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	payload := make([]map[string]any, 0, len(sorted))
	for _, order := range sorted {
		payload = append(payload, orderJSON(order))
	}
	return payload
}

func sortMockProducts(products []*mockProduct, order string) {
	switch order {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price.LessThan(products[j].Price) })
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool { return products[j].Price.LessThan(products[i].Price) })
	case "name_asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	case "name_desc":
		sort.SliceStable(products, func(i, j int) bool { return products[j].Name < products[i].Name })
	default:
		sort.SliceStable(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	}
}
