package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"educrm/internal/access"
)

func idAndPatch(r *http.Request) (int64, json.RawMessage, error) {
	id, err := pathID(r)
	if err != nil {
		return 0, nil, fmt.Errorf("плохой id")
	}
	defer func() { _ = r.Body.Close() }()
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("чтение тела: %w", err)
	}
	if !json.Valid(patch) {
		return 0, nil, fmt.Errorf("битый JSON")
	}
	return id, patch, nil
}

// respondUpdated: отложенная правка отвечает 202, прямая — свежей
// сущностью.
func (s *Server) respondUpdated(w http.ResponseWriter, r *http.Request, staged bool, reload func() (any, error)) {
	if staged {
		jsonResponse(w, http.StatusAccepted, map[string]bool{"staged": true})
		return
	}
	s.respondEntity(w, reload)
}

func (s *Server) respondEntity(w http.ResponseWriter, reload func() (any, error)) {
	v, err := reload()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor access.Actor, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := fn(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}
