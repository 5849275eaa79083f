package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/safar/go-pos-store/internal/config"
	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/persist"
	"github.com/safar/go-pos-store/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Load config: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	kv, err := persist.Open(cfg)
	if err != nil {
		logger.Fatalf("Open persist store: %v", err)
	}
	defer kv.Close()

	catalog := store.NewCatalog(store.DemoProducts(time.Now()), store.DemoCategories(), store.CatalogOptions{
		AllowNegativeStock: cfg.POS.AllowNegativeStock,
	})
	ledger := store.NewLedger(nil)
	session := store.NewSession()
	cart := store.NewCart(cfg.POS.TaxRate)

	ctx := context.Background()
	for _, binding := range []struct {
		key  string
		snap persist.Snapshotter
	}{
		{persist.KeyProducts, catalog},
		{persist.KeyTransactions, ledger},
		{persist.KeyAuth, session},
	} {
		loaded, _, err := persist.Bind(ctx, kv, binding.key, binding.snap, logger)
		if err != nil {
			logger.Fatalf("Bind %s: %v", binding.key, err)
		}
		logger.WithFields(logrus.Fields{"key": binding.key, "loaded": loaded}).Info("snapshot bound")
	}

	checkout := store.NewCheckout(catalog, cart, ledger)
	dashboard := store.NewDashboard(catalog, ledger)

	mux := http.NewServeMux()

	mux.HandleFunc("/login", handleLogin(session))
	mux.HandleFunc("/logout", handleLogout(session))
	mux.HandleFunc("/session", handleSession(session))

	mux.HandleFunc("/products", handleProducts(catalog, session))
	mux.HandleFunc("/products/", handleProductByID(catalog, session))
	mux.HandleFunc("/categories", handleCategories(catalog))

	mux.HandleFunc("/cart", handleCart(cart))
	mux.HandleFunc("/cart/items", handleCartItems(cart, catalog, session))
	mux.HandleFunc("/cart/items/", handleCartItemByID(cart, session))

	mux.HandleFunc("/checkout", handleCheckout(checkout, session))
	mux.HandleFunc("/transactions", handleTransactions(ledger, session))
	mux.HandleFunc("/dashboard", handleDashboard(dashboard, session))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.WithFields(logrus.Fields{
		"port":    cfg.Server.Port,
		"persist": cfg.Persist.Driver,
	}).Info("server starting")
	if err := server.ListenAndServe(); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

// currentUser resolves the session user, writing a 401 when nobody is
// logged in.
func currentUser(w http.ResponseWriter, session *store.Session) (models.User, bool) {
	user, ok := session.User()
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
	}
	return user, ok
}

// requireRole additionally gates on the user's role (catalog mutations
// are for admins and managers, not cashiers).
func requireRole(w http.ResponseWriter, session *store.Session, roles ...models.Role) (models.User, bool) {
	user, ok := currentUser(w, session)
	if !ok {
		return models.User{}, false
	}
	for _, role := range roles {
		if user.Role == role {
			return user, true
		}
	}
	respondError(w, http.StatusForbidden, "Insufficient role")
	return models.User{}, false
}

func handleLogin(session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if !session.Login(req.Email, req.Password) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		user, _ := session.User()
		respondJSON(w, http.StatusOK, user)
	}
}

func handleLogout(session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		session.Logout()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSession(session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		user, ok := session.User()
		resp := struct {
			User            *models.User `json:"user"`
			IsAuthenticated bool         `json:"is_authenticated"`
		}{IsAuthenticated: ok}
		if ok {
			resp.User = &user
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

func handleProducts(catalog *store.Catalog, session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			page, pageSize := pageParams(r)
			respondJSON(w, http.StatusOK, store.PageOf(catalog.Products(), page, pageSize))

		case http.MethodPost:
			if _, ok := requireRole(w, session, models.RoleAdmin, models.RoleManager); !ok {
				return
			}

			var input store.NewProduct
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			respondJSON(w, http.StatusCreated, catalog.AddProduct(input))

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleProductByID(catalog *store.Catalog, session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/products/")
		parts := strings.Split(rest, "/")
		id := parts[0]
		if id == "" {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		// POST /products/{id}/stock adjusts stock by a signed quantity.
		if len(parts) == 2 && parts[1] == "stock" {
			if r.Method != http.MethodPost {
				respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			if _, ok := requireRole(w, session, models.RoleAdmin, models.RoleManager); !ok {
				return
			}

			var req struct {
				Quantity int `json:"quantity"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			if err := catalog.AdjustStock(id, req.Quantity); err != nil {
				respondStoreError(w, err)
				return
			}
			product, err := catalog.Product(id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusOK, product)
			return
		}

		switch r.Method {
		case http.MethodGet:
			product, err := catalog.Product(id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusOK, product)

		case http.MethodPut:
			if _, ok := requireRole(w, session, models.RoleAdmin, models.RoleManager); !ok {
				return
			}

			var patch store.ProductUpdate
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			if err := catalog.UpdateProduct(id, patch); err != nil {
				respondStoreError(w, err)
				return
			}
			product, err := catalog.Product(id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusOK, product)

		case http.MethodDelete:
			if _, ok := requireRole(w, session, models.RoleAdmin, models.RoleManager); !ok {
				return
			}

			if err := catalog.DeleteProduct(id); err != nil {
				respondStoreError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleCategories(catalog *store.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		respondJSON(w, http.StatusOK, catalog.Categories())
	}
}

type cartView struct {
	Items    []models.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Tax      decimal.Decimal   `json:"tax"`
	Total    decimal.Decimal   `json:"total"`
}

func viewOf(cart *store.Cart) cartView {
	return cartView{
		Items:    cart.Items(),
		Subtotal: cart.Subtotal(),
		Tax:      cart.Tax(),
		Total:    cart.Total(),
	}
}

func handleCart(cart *store.Cart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			respondJSON(w, http.StatusOK, viewOf(cart))

		case http.MethodDelete:
			cart.Clear()
			w.WriteHeader(http.StatusNoContent)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleCartItems(cart *store.Cart, catalog *store.Catalog, session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if _, ok := currentUser(w, session); !ok {
			return
		}

		var req struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		product, err := catalog.Product(req.ProductID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		if err := cart.AddItem(product, req.Quantity); err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, viewOf(cart))
	}
}

func handleCartItemByID(cart *store.Cart, session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(w, session); !ok {
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/cart/items/")
		if id == "" {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		switch r.Method {
		case http.MethodPut:
			var req struct {
				Quantity int `json:"quantity"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			cart.UpdateQuantity(id, req.Quantity)
			respondJSON(w, http.StatusOK, viewOf(cart))

		case http.MethodDelete:
			cart.RemoveItem(id)
			respondJSON(w, http.StatusOK, viewOf(cart))

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleCheckout(checkout *store.Checkout, session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		user, ok := currentUser(w, session)
		if !ok {
			return
		}

		var req struct {
			PaymentMethod models.PaymentMethod `json:"payment_method"`
			CustomerID    string               `json:"customer_id"`
			Discount      decimal.Decimal      `json:"discount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		switch req.PaymentMethod {
		case models.PaymentCash, models.PaymentCard, models.PaymentDigital:
		default:
			respondError(w, http.StatusBadRequest, "Invalid payment method")
			return
		}

		tx, err := checkout.Pay(store.CheckoutRequest{
			PaymentMethod: req.PaymentMethod,
			CashierID:     user.ID,
			CustomerID:    req.CustomerID,
			Discount:      req.Discount,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, tx)
	}
}

func handleTransactions(ledger *store.Ledger, session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if _, ok := currentUser(w, session); !ok {
			return
		}

		page, pageSize := pageParams(r)
		respondJSON(w, http.StatusOK, store.PageOf(ledger.Transactions(), page, pageSize))
	}
}

func handleDashboard(dashboard *store.Dashboard, session *store.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if _, ok := currentUser(w, session); !ok {
			return
		}

		respondJSON(w, http.StatusOK, dashboard.Stats(time.Now()))
	}
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrInvalidQuantity),
		errors.Is(err, store.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
