// Package service — воркфлоу поверх db: разрешение прав, отложенные
// правки, транзакционные границы и связанные с правками синхронизации.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"educrm/internal/access"
	"educrm/internal/db"
	"educrm/internal/metrics"
	"educrm/internal/models"
	"educrm/internal/sales"
	"educrm/internal/schedule"
	"educrm/internal/staging"
)

// Имена разделов в настройках воркера.
const (
	ProfileCourses       = "courses"
	ProfileSyllabus      = "syllabus"
	ProfileGroups        = "groups"
	ProfileStudents      = "students"
	ProfileTeachers      = "teachers"
	ProfileWorkers       = "workers"
	ProfileLessons       = "lessons"
	ProfileEvents        = "events"
	ProfileConsultations = "consultation"
)

// Notifier получает события, интересные админам. Реализация может
// быть nil-безопасной заглушкой.
type Notifier interface {
	ProposalStaged(table string, id, actorID int64)
	ConsultationSold(c *models.Consultation, r *sales.Result)
}

type Service struct {
	database *sql.DB
	log      *zap.SugaredLogger
	gen      *schedule.Generator
	notify   Notifier
}

func New(database *sql.DB, log *zap.SugaredLogger, notify Notifier) *Service {
	return &Service{
		database: database,
		log:      log,
		gen:      schedule.NewGenerator(database, log),
		notify:   notify,
	}
}

func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// stripChanges выкидывает из правки поле changes: предложение нельзя
// подложить руками, оно ставится только самим циклом правок.
func stripChanges(patch json.RawMessage) (json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(patch, &m); err != nil {
		return nil, fmt.Errorf("разбор правки: %w", err)
	}
	delete(m, "changes")
	return json.Marshal(m)
}

// update — общий путь правки: ReadOnly запрещён, StageOnly кладёт
// слитый кандидат в changes, Full применяет его сразу внутри
// транзакции через apply (полный путь обновления сущности).
func (s *Service) update(
	ctx context.Context,
	actor access.Actor,
	profile, table string,
	id int64,
	patch json.RawMessage,
	load func(ctx context.Context, q db.Querier) (any, error),
	apply func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error,
) (staged bool, err error) {
	patch, err = stripChanges(patch)
	if err != nil {
		return false, err
	}

	switch access.Resolve(actor, profile) {
	case access.ReadOnly:
		return false, models.ErrForbidden

	case access.StageOnly:
		current, err := load(ctx, s.database)
		if err != nil {
			return false, err
		}
		if err := staging.Stage(ctx, s.database, table, id, current, patch); err != nil {
			return false, err
		}
		if s.notify != nil {
			s.notify.ProposalStaged(table, id, actor.ID)
		}
		return true, nil
	}

	current, err := load(ctx, s.database)
	if err != nil {
		return false, err
	}
	snapshot, err := staging.Merge(current, patch)
	if err != nil {
		return false, err
	}
	return false, s.withTx(ctx, func(tx *sql.Tx) error {
		return apply(ctx, tx, snapshot)
	})
}

// confirm применяет отложенный снимок полным путём обновления и
// чистит changes одной транзакцией. Доступно только Full-акторам.
func (s *Service) confirm(
	ctx context.Context,
	actor access.Actor,
	profile, table string,
	id int64,
	apply func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error,
) error {
	if access.Resolve(actor, profile) != access.Full {
		return models.ErrForbidden
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return staging.Confirm(ctx, tx, table, id, func(snapshot json.RawMessage) error {
			return apply(ctx, tx, snapshot)
		})
	})
}

func (s *Service) cancel(ctx context.Context, actor access.Actor, profile, table string, id int64) error {
	if access.Resolve(actor, profile) != access.Full {
		return models.ErrForbidden
	}
	return staging.Cancel(ctx, s.database, table, id)
}

func (s *Service) workflowErr(workflow string, err error) error {
	metrics.WorkflowErrors.WithLabelValues(workflow).Inc()
	s.log.Errorw("воркфлоу упал", "workflow", workflow, "err", err)
	return err
}
