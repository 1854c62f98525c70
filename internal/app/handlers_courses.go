package app

import (
	"net/http"

	"educrm/internal/db"
	"educrm/internal/models"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := db.ListCourses(r.Context(), s.database)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, courses)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var c models.Course
	if err := decodeBody(r, &c); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	if err := s.svc.CreateCourse(r.Context(), actorFrom(r.Context()), &c); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	c, err := db.GetCourseByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateCourse(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetCourseByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteCourse)
}

func (s *Server) handleConfirmCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmCourse(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetCourseByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelCourse(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelCourse)
}

func (s *Server) handleListSyllabus(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	entries, err := db.ListSyllabusByCourse(r.Context(), s.database, courseID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}

func (s *Server) handleCreateSyllabus(w http.ResponseWriter, r *http.Request) {
	var sy models.Syllabus
	if err := decodeBody(r, &sy); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	if err := s.svc.CreateSyllabus(r.Context(), actorFrom(r.Context()), &sy); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, sy)
}

func (s *Server) handleGetSyllabus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	sy, err := db.GetSyllabusByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, sy)
}

func (s *Server) handleUpdateSyllabus(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateSyllabus(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetSyllabusByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteSyllabus(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteSyllabus)
}

func (s *Server) handleConfirmSyllabus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmSyllabus(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetSyllabusByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelSyllabus(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelSyllabus)
}
