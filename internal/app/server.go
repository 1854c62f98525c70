// Package app — HTTP-поверхность API: маршруты, авторизация запросов,
// перевод ошибок воркфлоу в статусы.
package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"educrm/internal/auth"
	"educrm/internal/export"
	"educrm/internal/metrics"
	"educrm/internal/service"
)

type Server struct {
	srv      *http.Server
	database *sql.DB
	svc      *service.Service
	auth     *auth.Service
	log      *zap.SugaredLogger
}

func NewServer(addr string, database *sql.DB, svc *service.Service, authSvc *auth.Service, log *zap.SugaredLogger) *Server {
	s := &Server{database: database, svc: svc, auth: authSvc, log: log}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	api := http.NewServeMux()

	api.HandleFunc("GET /api/courses", s.handleListCourses)
	api.HandleFunc("POST /api/courses", s.handleCreateCourse)
	api.HandleFunc("GET /api/courses/{id}", s.handleGetCourse)
	api.HandleFunc("PATCH /api/courses/{id}", s.handleUpdateCourse)
	api.HandleFunc("DELETE /api/courses/{id}", s.handleDeleteCourse)
	api.HandleFunc("POST /api/courses/{id}/confirm", s.handleConfirmCourse)
	api.HandleFunc("POST /api/courses/{id}/cancel", s.handleCancelCourse)
	api.HandleFunc("GET /api/courses/{id}/syllabus", s.handleListSyllabus)

	api.HandleFunc("POST /api/syllabus", s.handleCreateSyllabus)
	api.HandleFunc("GET /api/syllabus/{id}", s.handleGetSyllabus)
	api.HandleFunc("PATCH /api/syllabus/{id}", s.handleUpdateSyllabus)
	api.HandleFunc("DELETE /api/syllabus/{id}", s.handleDeleteSyllabus)
	api.HandleFunc("POST /api/syllabus/{id}/confirm", s.handleConfirmSyllabus)
	api.HandleFunc("POST /api/syllabus/{id}/cancel", s.handleCancelSyllabus)

	api.HandleFunc("GET /api/groups", s.handleListGroups)
	api.HandleFunc("POST /api/groups", s.handleCreateGroup)
	api.HandleFunc("GET /api/groups/{id}", s.handleGetGroup)
	api.HandleFunc("PATCH /api/groups/{id}", s.handleUpdateGroup)
	api.HandleFunc("DELETE /api/groups/{id}", s.handleDeleteGroup)
	api.HandleFunc("POST /api/groups/{id}/confirm", s.handleConfirmGroup)
	api.HandleFunc("POST /api/groups/{id}/cancel", s.handleCancelGroup)
	api.HandleFunc("GET /api/groups/{id}/lessons", s.handleListLessons)

	api.HandleFunc("GET /api/students", s.handleListStudents)
	api.HandleFunc("POST /api/students", s.handleCreateStudent)
	api.HandleFunc("GET /api/students/{id}", s.handleGetStudent)
	api.HandleFunc("PATCH /api/students/{id}", s.handleUpdateStudent)
	api.HandleFunc("DELETE /api/students/{id}", s.handleDeleteStudent)
	api.HandleFunc("POST /api/students/{id}/confirm", s.handleConfirmStudent)
	api.HandleFunc("POST /api/students/{id}/cancel", s.handleCancelStudent)

	api.HandleFunc("GET /api/teachers", s.handleListTeachers)
	api.HandleFunc("POST /api/teachers", s.handleCreateTeacher)
	api.HandleFunc("GET /api/teachers/{id}", s.handleGetTeacher)
	api.HandleFunc("PATCH /api/teachers/{id}", s.handleUpdateTeacher)
	api.HandleFunc("DELETE /api/teachers/{id}", s.handleDeleteTeacher)
	api.HandleFunc("POST /api/teachers/{id}/confirm", s.handleConfirmTeacher)
	api.HandleFunc("POST /api/teachers/{id}/cancel", s.handleCancelTeacher)

	api.HandleFunc("POST /api/workers", s.handleCreateWorker)
	api.HandleFunc("GET /api/workers/{id}", s.handleGetWorker)
	api.HandleFunc("PATCH /api/workers/{id}", s.handleUpdateWorker)
	api.HandleFunc("DELETE /api/workers/{id}", s.handleDeleteWorker)
	api.HandleFunc("POST /api/workers/{id}/confirm", s.handleConfirmWorker)
	api.HandleFunc("POST /api/workers/{id}/cancel", s.handleCancelWorker)

	api.HandleFunc("GET /api/lessons/{id}", s.handleGetLesson)
	api.HandleFunc("PATCH /api/lessons/{id}", s.handleUpdateLesson)
	api.HandleFunc("DELETE /api/lessons/{id}", s.handleDeleteLesson)
	api.HandleFunc("POST /api/lessons/{id}/confirm", s.handleConfirmLesson)
	api.HandleFunc("POST /api/lessons/{id}/cancel", s.handleCancelLesson)

	api.HandleFunc("GET /api/consultations", s.handleListConsultations)
	api.HandleFunc("POST /api/consultations", s.handleCreateConsultation)
	api.HandleFunc("GET /api/consultations/{id}", s.handleGetConsultation)
	api.HandleFunc("PATCH /api/consultations/{id}", s.handleUpdateConsultation)
	api.HandleFunc("DELETE /api/consultations/{id}", s.handleDeleteConsultation)
	api.HandleFunc("POST /api/consultations/{id}/confirm", s.handleConfirmConsultation)
	api.HandleFunc("POST /api/consultations/{id}/cancel", s.handleCancelConsultation)

	api.HandleFunc("GET /api/events", s.handleListEvents)
	api.HandleFunc("POST /api/events", s.handleCreateEvent)
	api.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	api.HandleFunc("PATCH /api/events/{id}", s.handleUpdateEvent)
	api.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	api.HandleFunc("POST /api/events/{id}/confirm", s.handleConfirmEvent)
	api.HandleFunc("POST /api/events/{id}/cancel", s.handleCancelEvent)

	api.HandleFunc("GET /api/export/tuition", s.handleExportTuition)

	mux.Handle("/api/", s.requireAuth(api))

	s.srv = &http.Server{Addr: addr, Handler: s.withMetrics(mux)}
	return s
}

// Start поднимает сервер и гасит его по отмене ctx.
func (s *Server) Start(ctx context.Context) {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorw("http server", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shCtx)
	}()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.database.PingContext(ctx); err != nil {
		http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleExportTuition(w http.ResponseWriter, r *http.Request) {
	groupID, err := queryID(r, "groupId")
	if err != nil || groupID == 0 {
		jsonError(w, http.StatusBadRequest, "groupId обязателен")
		return
	}
	f, err := export.TuitionReport(r.Context(), s.database, groupID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tuition.xlsx"`)
	if err := f.Write(w); err != nil {
		s.log.Errorw("выгрузка xlsx", "err", err)
	}
}
