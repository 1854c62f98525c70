package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"educrm/internal/access"
	"educrm/internal/db"
	"educrm/internal/membership"
	"educrm/internal/models"
)

func (s *Service) CreateStudent(ctx context.Context, actor access.Actor, st *models.Student) error {
	if access.Resolve(actor, ProfileStudents) != access.Full {
		return models.ErrForbidden
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := db.CreateStudent(ctx, tx, st); err != nil {
			return err
		}
		empty := models.Student{ID: st.ID}
		return membership.ReconcileStudent(ctx, tx, &empty, st)
	})
	if err != nil {
		return s.workflowErr("student_create", err)
	}
	return nil
}

func (s *Service) UpdateStudent(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	staged, err := s.update(ctx, actor, ProfileStudents, "students", id, patch, s.loadStudent(id), s.applyStudent(id))
	if err != nil {
		return false, s.workflowErr("student_update", err)
	}
	return staged, nil
}

func (s *Service) ConfirmStudent(ctx context.Context, actor access.Actor, id int64) error {
	if err := s.confirm(ctx, actor, ProfileStudents, "students", id, s.applyStudent(id)); err != nil {
		return s.workflowErr("student_confirm", err)
	}
	return nil
}

func (s *Service) CancelStudent(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileStudents, "students", id)
}

// DeleteStudent — мягкое удаление: запись остаётся, членства не
// трогаются. Физического удаления студентов нет.
func (s *Service) DeleteStudent(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileStudents) != access.Full {
		return models.ErrForbidden
	}
	return db.SoftDeleteStudent(ctx, s.database, id)
}

func (s *Service) loadStudent(id int64) func(ctx context.Context, q db.Querier) (any, error) {
	return func(ctx context.Context, q db.Querier) (any, error) {
		return db.GetStudentByID(ctx, q, id)
	}
}

// applyStudent пишет скалярные поля студента и разводит правку его
// groups по группам и урокам в той же транзакции.
func (s *Service) applyStudent(id int64) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		old, err := db.GetStudentByID(ctx, tx, id)
		if err != nil {
			return err
		}
		var st models.Student
		if err := json.Unmarshal(snapshot, &st); err != nil {
			return err
		}
		st.ID = id
		if err := db.UpdateStudentRow(ctx, tx, &st); err != nil {
			return err
		}
		return membership.ReconcileStudent(ctx, tx, old, &st)
	}
}
