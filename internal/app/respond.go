package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"educrm/internal/auth"
	"educrm/internal/models"
	"educrm/internal/observability"
	"educrm/internal/staging"
)

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

// writeErr переводит ошибки воркфлоу в HTTP-статусы. Конфликты
// отдают свой символьный ключ, частичная запись не маскируется под
// обычную пятисотку.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	var ce *models.ConflictError
	var pe *models.PartialError
	switch {
	case errors.Is(err, models.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrForbidden):
		jsonError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		jsonError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, staging.ErrNoProposal):
		jsonError(w, http.StatusConflict, "нет отложенной правки")
	case errors.As(err, &ce):
		jsonError(w, http.StatusConflict, ce.Key)
	case errors.As(err, &pe):
		s.log.Errorw("частичная запись", "workflow", pe.Workflow, "step", pe.Step, "err", pe.Err)
		observability.CaptureErr(pe)
		jsonError(w, http.StatusInternalServerError, pe.Error())
	default:
		s.log.Errorw("запрос упал", "err", err)
		observability.CaptureErr(err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}
