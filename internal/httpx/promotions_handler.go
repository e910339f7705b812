package httpx

import (
	"context"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/ariefcatur/go-restaurant-orders/internal/promotions"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type PromotionsHandler struct {
	Service *promotions.Service
	Log     *zap.Logger
}

func (h *PromotionsHandler) Register(r chi.Router) {
	r.Get("/api/promotions", h.list)
	r.Post("/api/promotions", h.create)
	r.Delete("/api/promotions/{id}", h.delete)
}

func (h *PromotionsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.List(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, promotions.PresentAll(list, origin(r)))
}

func (h *PromotionsHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	image, err := singleFile(r, "image")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Service.Create(ctx, promotions.CreateInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		Image:       image,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, promotions.Present(p, origin(r)))
}

func (h *PromotionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, h.Log, apperr.NotFound("Promotion not found"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResp{Success: true, Message: "Promotion deleted"})
}
