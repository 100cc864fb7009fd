package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/port"
)

const defaultRecentLimit = 10

type HTTPHandler struct {
	checkout *service.CheckoutService
	orders   port.OrderRepository
	catalog  port.CatalogRepository
	users    port.UserRepository
}

func NewHTTPHandler(checkout *service.CheckoutService, orders port.OrderRepository, catalog port.CatalogRepository, users port.UserRepository) *HTTPHandler {
	return &HTTPHandler{checkout: checkout, orders: orders, catalog: catalog, users: users}
}

func (h *HTTPHandler) Register(r *chi.Mux) {
	r.Post("/api/checkout", h.Checkout)
	r.Get("/api/orders/recent", h.RecentOrders)
	r.Get("/api/orders/{id}/items", h.OrderItems)
	r.Get("/api/users/{id}", h.GetUser)
	r.Get("/api/users/{id}/orders", h.UserOrders)
	r.Get("/api/books", h.ListBooks)
	r.Get("/api/books/{id}", h.GetBook)
	r.Post("/api/books", h.AddBook)
}

type CheckoutHTTPRequest struct {
	RequestID string            `json:"request_id"`
	UserID    int64             `json:"user_id"`
	Items     []domain.CartLine `json:"items"`
}

type CheckoutHTTPResponse struct {
	Success bool   `json:"success"`
	OrderID int64  `json:"order_id,omitempty"`
	Message string `json:"message"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{Message: "invalid request body"})
		return
	}
	if req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{Message: "missing user_id"})
		return
	}

	desired := make(map[int64]int, len(req.Items))
	for _, it := range req.Items {
		desired[it.BookID] += it.Quantity
	}
	cart, err := domain.NewCartSnapshot(desired)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{Message: err.Error()})
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	done := make(chan service.CheckoutResult, 1)
	submitted := h.checkout.Submit(service.CheckoutRequest{
		RequestID: requestID,
		UserID:    req.UserID,
		Cart:      cart,
	}, func(res service.CheckoutResult) {
		done <- res
	})
	if !submitted {
		writeJSON(w, http.StatusServiceUnavailable, CheckoutHTTPResponse{Message: "checkout queue full"})
		return
	}

	select {
	case res := <-done:
		if res.Err != nil {
			status, message := checkoutError(res.Err)
			writeJSON(w, status, CheckoutHTTPResponse{Message: message})
			return
		}
		writeJSON(w, http.StatusOK, CheckoutHTTPResponse{
			Success: true,
			OrderID: res.OrderID,
			Message: "order placed successfully",
		})
	case <-r.Context().Done():
		writeJSON(w, http.StatusGatewayTimeout, CheckoutHTTPResponse{Message: "checkout timed out"})
	}
}

func checkoutError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrReservationRace):
		return http.StatusGone, "insufficient stock"
	default:
		return http.StatusInternalServerError, "checkout failed"
	}
}

func (h *HTTPHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	orders, err := h.orders.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	orders, err := h.orders.ByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) OrderItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	items, err := h.orders.ItemsByOrder(r.Context(), orderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid book id"})
		return
	}

	book, err := h.catalog.GetBook(r.Context(), bookID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if book == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "book not found"})
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.ListBooks(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, books)
}

type AddBookRequest struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Language string  `json:"language"`
	Category string  `json:"category"`
}

func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req AddBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" || req.Author == "" || req.Price < 0 || req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing or invalid fields"})
		return
	}

	language, err := domain.ParseLanguage(req.Language)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.catalog.AddBook(r.Context(), domain.Book{
		Title:    req.Title,
		Author:   req.Author,
		Price:    req.Price,
		Quantity: req.Quantity,
		Language: language,
		Category: category,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
