package app

import (
	"net/http"
	"time"

	"educrm/internal/db"
	"educrm/internal/models"
)

const consultPageSize = 20

func (s *Server) handleListConsultations(w http.ResponseWriter, r *http.Request) {
	courseID, err := queryID(r, "courseId")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой courseId")
		return
	}
	f := db.ConsultationFilter{
		Search:      r.URL.Query().Get("searchQuery"),
		Status:      models.ConsultationStatus(r.URL.Query().Get("status")),
		CourseID:    courseID,
		WhereComing: r.URL.Query().Get("whereComing"),
		Limit:       consultPageSize,
		Offset:      queryInt(r, "length", 0),
	}
	if v := r.URL.Query().Get("startDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &t
		}
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.AddDate(0, 0, 1)
			f.To = &end
		}
	}

	consultations, total, err := db.ListConsultations(r.Context(), s.database, f)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"consultations": consultations,
		"totalLength":   total,
	})
}

func (s *Server) handleCreateConsultation(w http.ResponseWriter, r *http.Request) {
	var c models.Consultation
	if err := decodeBody(r, &c); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	if err := s.svc.CreateConsultation(r.Context(), actorFrom(r.Context()), &c); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

func (s *Server) handleGetConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	c, err := db.GetConsultationByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleUpdateConsultation(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, result, err := s.svc.UpdateConsultation(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if staged {
		jsonResponse(w, http.StatusAccepted, map[string]bool{"staged": true})
		return
	}
	c, err := db.GetConsultationByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"consultation": c,
		"promotion":    result,
	})
}

func (s *Server) handleDeleteConsultation(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteConsultation)
}

func (s *Server) handleConfirmConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	result, err := s.svc.ConfirmConsultation(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	c, err := db.GetConsultationByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"consultation": c,
		"promotion":    result,
	})
}

func (s *Server) handleCancelConsultation(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelConsultation)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	events, total, err := db.ListEvents(r.Context(), s.database,
		r.URL.Query().Get("searchQuery"), pageSize, (page-1)*pageSize)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"events":      events,
		"totalLength": total,
	})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := decodeBody(r, &e); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	if err := s.svc.CreateEvent(r.Context(), actorFrom(r.Context()), &e); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, e)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	e, err := db.GetEventByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateEvent(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetEventByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteEvent)
}

func (s *Server) handleConfirmEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmEvent(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetEventByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelEvent(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelEvent)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	l, err := db.GetLessonByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateLesson(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetLessonByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteLesson)
}

func (s *Server) handleConfirmLesson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmLesson(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetLessonByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelLesson(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelLesson)
}
