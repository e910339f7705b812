package httpx

import (
	"context"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/ariefcatur/go-restaurant-orders/internal/menu"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type MenuHandler struct {
	Service *menu.Service
	Log     *zap.Logger
}

func (h *MenuHandler) Register(r chi.Router) {
	r.Get("/api/menu", h.list)
	r.Post("/api/menu", h.create)
	r.Delete("/api/menu/{id}", h.delete)
}

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Service.List(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, menu.PresentAll(items, origin(r)))
}

func (h *MenuHandler) create(w http.ResponseWriter, r *http.Request) {
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

	it, err := h.Service.Create(ctx, menu.CreateInput{
		Name:  r.FormValue("name"),
		Type:  r.FormValue("type"),
		Price: r.FormValue("price"),
		Image: image,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, menu.Present(it, origin(r)))
}

func (h *MenuHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, h.Log, apperr.NotFound("Menu item not found"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResp{Success: true, Message: "Menu item deleted"})
}
