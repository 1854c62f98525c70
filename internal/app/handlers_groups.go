package app

import (
	"net/http"
	"time"

	"educrm/internal/db"
	"educrm/internal/models"
)

const pageSize = 10

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	groups, total, err := db.ListGroups(r.Context(), s.database,
		r.URL.Query().Get("searchQuery"),
		models.GroupStatus(r.URL.Query().Get("status")),
		pageSize, (page-1)*pageSize)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"groups":      groups,
		"totalLength": total,
	})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var g models.Group
	if err := decodeBody(r, &g); err != nil {
		jsonError(w, http.StatusBadRequest, "битый JSON")
		return
	}
	if err := s.svc.CreateGroup(r.Context(), actorFrom(r.Context()), &g); err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, g)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	g, err := db.GetGroupByID(r.Context(), s.database, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, patch, err := idAndPatch(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	staged, err := s.svc.UpdateGroup(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondUpdated(w, r, staged, func() (any, error) {
		return db.GetGroupByID(r.Context(), s.database, id)
	})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteGroup)
}

func (s *Server) handleConfirmGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	if err := s.svc.ConfirmGroup(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondEntity(w, func() (any, error) { return db.GetGroupByID(r.Context(), s.database, id) })
}

func (s *Server) handleCancelGroup(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.CancelGroup)
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "плохой id")
		return
	}
	from, to := monthRange(time.Now())
	if v := r.URL.Query().Get("startDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.AddDate(0, 0, 1)
		}
	}
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	lessons, total, err := db.ListLessonsByGroup(r.Context(), s.database, groupID, from, to,
		pageSize, (page-1)*pageSize)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"lessons":    lessons,
		"totalPages": (total + pageSize - 1) / pageSize,
	})
}

// monthRange — границы текущего месяца; дефолтное окно списка уроков.
func monthRange(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}
