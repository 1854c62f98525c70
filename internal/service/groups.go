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

// CreateGroup заводит группу вместе с enrollment-записями состава и
// сразу пытается сгенерировать календарь уроков. Сбой генерации не
// блокирует создание.
func (s *Service) CreateGroup(ctx context.Context, actor access.Actor, g *models.Group) error {
	if access.Resolve(actor, ProfileGroups) != access.Full {
		return models.ErrForbidden
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := db.CreateGroup(ctx, tx, g); err != nil {
			return err
		}
		empty := models.Group{ID: g.ID, CourseID: g.CourseID}
		return membership.ReconcileGroup(ctx, tx, &empty, g)
	})
	if err != nil {
		return s.workflowErr("group_create", err)
	}
	s.gen.GenerateLessons(ctx, g)
	return nil
}

// UpdateGroup — правка группы с учётом прав: воркер с power=update
// откладывает кандидата, полный доступ применяет сразу вместе с
// синхронизацией состава. После прямого применения генератор получает
// шанс достроить календарь (без уже сгенерированных групп — guard).
func (s *Service) UpdateGroup(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	staged, err := s.update(ctx, actor, ProfileGroups, "groups", id, patch, s.loadGroup(id), s.applyGroup(id))
	if err != nil {
		return false, s.workflowErr("group_update", err)
	}
	if !staged {
		s.generateForGroup(ctx, id)
	}
	return staged, nil
}

func (s *Service) ConfirmGroup(ctx context.Context, actor access.Actor, id int64) error {
	if err := s.confirm(ctx, actor, ProfileGroups, "groups", id, s.applyGroup(id)); err != nil {
		return s.workflowErr("group_confirm", err)
	}
	s.generateForGroup(ctx, id)
	return nil
}

func (s *Service) CancelGroup(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileGroups, "groups", id)
}

// DeleteGroup удаляет группу; уроки, посадки и enrollment-записи
// уходят каскадом.
func (s *Service) DeleteGroup(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileGroups) != access.Full {
		return models.ErrForbidden
	}
	return db.DeleteGroup(ctx, s.database, id)
}

func (s *Service) loadGroup(id int64) func(ctx context.Context, q db.Querier) (any, error) {
	return func(ctx context.Context, q db.Querier) (any, error) {
		return db.GetGroupByID(ctx, q, id)
	}
}

// applyGroup — полный путь обновления: строка группы, авторитетный
// список состава и разводка последствий по студентам и урокам, всё в
// одной транзакции.
func (s *Service) applyGroup(id int64) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		old, err := db.GetGroupByID(ctx, tx, id)
		if err != nil {
			return err
		}
		var g models.Group
		if err := json.Unmarshal(snapshot, &g); err != nil {
			return err
		}
		g.ID = id
		if err := db.UpdateGroupRow(ctx, tx, &g); err != nil {
			return err
		}
		if err := db.ReplaceGroupStudents(ctx, tx, id, g.Students); err != nil {
			return err
		}
		return membership.ReconcileGroup(ctx, tx, old, &g)
	}
}

func (s *Service) generateForGroup(ctx context.Context, id int64) {
	g, err := db.GetGroupByID(ctx, s.database, id)
	if err != nil {
		s.log.Errorw("группа для генерации не прочиталась", "group_id", id, "err", err)
		return
	}
	s.gen.GenerateLessons(ctx, g)
}
