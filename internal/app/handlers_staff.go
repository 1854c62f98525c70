package app

import (
	"net/http"

	"educrm/internal/db"
	"educrm/internal/models"
)

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	activeOnly := r.URL.Query().Get("active") == "true"
	teachers, err := db.ListTeachers(r.Context(), s.database, role, activeOnly)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, teachers)
}

func (s *Server) handleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var body struct {
		models.Teacher
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	t := body.Teacher
	t.Password = body.Password
	if err := s.svc.CreateTeacher(r.Context(), actorFrom(r.Context()), &t); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, t)
}

func (s *Server) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	t, err := db.GetTeacherByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTeacher(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateTeacher(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetTeacherByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteTeacher)
}

func (s *Server) handleConfirmTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmTeacher(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetTeacherByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelTeacher(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelTeacher)
}

func (s *Server) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var body struct {
		models.Worker
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	wk := body.Worker
	wk.Password = body.Password
	if err := s.svc.CreateWorker(r.Context(), actorFrom(r.Context()), &wk); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, wk)
}

func (s *Server) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	wk, err := db.GetWorkerByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, wk)
}

func (s *Server) handleUpdateWorker(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateWorker(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetWorkerByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteWorker(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteWorker)
}

func (s *Server) handleConfirmWorker(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmWorker(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetWorkerByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelWorker(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelWorker)
}
