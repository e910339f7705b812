package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/ariefcatur/go-restaurant-orders/internal/orders"
	"github.com/ariefcatur/go-restaurant-orders/internal/uploads"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type OrdersHandler struct {
	Service *orders.Service
	Log     *zap.Logger
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type verifyReq struct {
	Verified *bool `json:"verified"`
}

type purgeResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/api/orders", h.listOrders)
	r.Post("/api/orders", h.createOrder)
	r.Delete("/api/orders/completed", h.purgeCompleted)
	r.Get("/api/orders/{id}/status", h.getStatus)
	r.Put("/api/orders/{id}/status", h.updateStatus)
	r.Put("/api/orders/{id}/verify", h.verify)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.List(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders.PresentAll(list, origin(r)))
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	proof, err := singleFile(r, "paymentProof")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, orders.CreateInput{
		CustomerName:    r.FormValue("customerName"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		NumberOfPeople:  r.FormValue("numberOfPeople"),
		Items:           r.FormValue("items"),
		ReservationTime: r.FormValue("reservationTime"),
		PaymentProof:    proof,
		TraceID:         traceID(r),
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	// respons create memakai URL relatif, sama seperti frontend lama
	rel := uploads.RelativeURL(o.PaymentProof)
	writeJSON(w, http.StatusCreated, orders.View{Order: o, PaymentProofURL: &rel})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.Log, apperr.Validation("Invalid status"))
		return
	}
	id, ok := pathID(r)
	if !ok {
		// tetap validasi status dulu, baru 404
		if _, valid := orders.ParseStatus(req.Status); !valid {
			writeError(w, r, h.Log, apperr.Validation("Invalid status"))
			return
		}
		writeError(w, r, h.Log, apperr.NotFound("Order not found"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.Service.UpdateStatus(ctx, id, req.Status, traceID(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResp{Success: true, Message: fmt.Sprintf("Order status updated to %s", st)})
}

func (h *OrdersHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Verified == nil {
		writeError(w, r, h.Log, apperr.Validation("Invalid verification status"))
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, h.Log, apperr.NotFound("Order not found"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Verify(ctx, id, *req.Verified, traceID(r)); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	msg := "Payment verification removed"
	if *req.Verified {
		msg = "Payment verified and order moved to preparing"
	}
	writeJSON(w, http.StatusOK, successResp{Success: true, Message: msg})
}

func (h *OrdersHandler) purgeCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.Service.PurgeCompleted(ctx, traceID(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, purgeResp{
		Success: true,
		Message: fmt.Sprintf("%d completed orders deleted", n),
		Deleted: n,
	})
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, h.Log, apperr.NotFound("Order not found"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.Service.StatusOf(ctx, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
