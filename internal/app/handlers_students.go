package app

import (
	"net/http"

	"educrm/internal/db"
	"educrm/internal/models"
)

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	courseID, err := queryID(r, "courseId")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой courseId")
		return
	}
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	students, total, err := db.ListStudents(r.Context(), s.database,
		r.URL.Query().Get("searchQuery"), courseID, pageSize, (page-1)*pageSize)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"students":    students,
		"totalLength": total,
	})
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var st models.Student
	if err := decodeBody(r, &st); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	if err := s.svc.CreateStudent(r.Context(), actorFrom(r.Context()), &st); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, st)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	st, err := db.GetStudentByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, st)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateStudent(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetStudentByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteStudent)
}

func (s *Server) handleConfirmStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmStudent(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetStudentByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelStudent(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelStudent)
}
