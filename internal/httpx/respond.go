package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// batas memori parse multipart; sisanya di-spool ke disk, bukan limit ukuran file
const maxFormMemory = 32 << 20

type successResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	code := http.StatusInternalServerError
	switch {
	case apperr.IsValidation(err):
		code = http.StatusBadRequest
	case apperr.IsNotFound(err):
		code = http.StatusNotFound
	default:
		log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// origin is "scheme://host" of the inbound request, used to expand upload URLs.
func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	return scheme + "://" + r.Host
}

func traceID(r *http.Request) string { return middleware.GetReqID(r.Context()) }

// pathID parses {id}. Anything that is not a positive integer cannot match a row.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseForm menerima multipart maupun urlencoded.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return apperr.Validation("Invalid form body")
	}
	return nil
}

// singleFile returns the one file under field, nil when none was sent.
func singleFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[field]
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
		return files[0], nil
	default:
		return nil, apperr.Validationf("Only one file is accepted in field %q", field)
	}
}
