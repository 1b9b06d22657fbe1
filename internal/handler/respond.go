package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nikolayk812/marketgo/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInsufficientStock: http.StatusBadRequest,
	apperr.KindForbidden:         http.StatusForbidden,
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindUnauthenticated:   http.StatusUnauthorized,
	apperr.KindSessionExpired:    http.StatusUnauthorized,
	apperr.KindInternal:          http.StatusInternalServerError,
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("encoding response")
	}
}

// respondError is the single boundary mapping the error taxonomy to HTTP.
// Server-side failures report status "fail", client mistakes "error".
// Internal detail only leaves the process in development mode.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	code, ok := kindStatus[kind]
	if !ok {
		code = http.StatusInternalServerError
	}

	status := "error"
	if code >= http.StatusInternalServerError {
		status = "fail"
		h.log.WithError(err).Error("internal error")
	}

	body := map[string]any{
		"status":  status,
		"message": apperr.Message(err),
	}
	if h.dev {
		body["error"] = err.Error()
	}

	h.writeJSON(w, code, body)
}

func (h *Handler) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid json body", err)
	}
	return nil
}
