package app

import (
	"net/http"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	token, claims, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"token": token,
		"id":    claims.UserID,
		"role":  claims.Role,
	})
}
