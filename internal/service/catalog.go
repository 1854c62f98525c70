package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"educrm/internal/access"
	"educrm/internal/db"
	"educrm/internal/models"
)

// Справочные сущности без побочных синхронизаций: курсы, силлабус,
// события, уроки. Путь правки у всех один — update/confirm/cancel.

func (s *Service) CreateCourse(ctx context.Context, actor access.Actor, c *models.Course) error {
	if access.Resolve(actor, ProfileCourses) != access.Full {
		return models.ErrForbidden
	}
	return db.CreateCourse(ctx, s.database, c)
}

func (s *Service) UpdateCourse(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	return s.update(ctx, actor, ProfileCourses, "courses", id, patch,
		func(ctx context.Context, q db.Querier) (any, error) { return db.GetCourseByID(ctx, q, id) },
		func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
			var c models.Course
			if err := json.Unmarshal(snapshot, &c); err != nil {
				return err
			}
			c.ID = id
			return db.UpdateCourse(ctx, tx, &c)
		})
}

func (s *Service) ConfirmCourse(ctx context.Context, actor access.Actor, id int64) error {
	return s.confirm(ctx, actor, ProfileCourses, "courses", id,
		func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
			var c models.Course
			if err := json.Unmarshal(snapshot, &c); err != nil {
				return err
			}
			c.ID = id
			return db.UpdateCourse(ctx, tx, &c)
		})
}

func (s *Service) CancelCourse(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileCourses, "courses", id)
}

func (s *Service) DeleteCourse(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileCourses) != access.Full {
		return models.ErrForbidden
	}
	return db.DeleteCourse(ctx, s.database, id)
}

func (s *Service) CreateSyllabus(ctx context.Context, actor access.Actor, sy *models.Syllabus) error {
	if access.Resolve(actor, ProfileSyllabus) != access.Full {
		return models.ErrForbidden
	}
	return db.CreateSyllabus(ctx, s.database, sy)
}

func (s *Service) UpdateSyllabus(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	return s.update(ctx, actor, ProfileSyllabus, "syllabus", id, patch,
		func(ctx context.Context, q db.Querier) (any, error) { return db.GetSyllabusByID(ctx, q, id) },
		s.applySyllabus(id))
}

func (s *Service) ConfirmSyllabus(ctx context.Context, actor access.Actor, id int64) error {
	return s.confirm(ctx, actor, ProfileSyllabus, "syllabus", id, s.applySyllabus(id))
}

func (s *Service) CancelSyllabus(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileSyllabus, "syllabus", id)
}

func (s *Service) DeleteSyllabus(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileSyllabus) != access.Full {
		return models.ErrForbidden
	}
	return db.DeleteSyllabus(ctx, s.database, id)
}

func (s *Service) applySyllabus(id int64) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		var sy models.Syllabus
		if err := json.Unmarshal(snapshot, &sy); err != nil {
			return err
		}
		sy.ID = id
		return db.UpdateSyllabus(ctx, tx, &sy)
	}
}

func (s *Service) CreateEvent(ctx context.Context, actor access.Actor, e *models.Event) error {
	if access.Resolve(actor, ProfileEvents) != access.Full {
		return models.ErrForbidden
	}
	return db.CreateEvent(ctx, s.database, e)
}

func (s *Service) UpdateEvent(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	return s.update(ctx, actor, ProfileEvents, "events", id, patch,
		func(ctx context.Context, q db.Querier) (any, error) { return db.GetEventByID(ctx, q, id) },
		s.applyEvent(id))
}

func (s *Service) ConfirmEvent(ctx context.Context, actor access.Actor, id int64) error {
	return s.confirm(ctx, actor, ProfileEvents, "events", id, s.applyEvent(id))
}

func (s *Service) CancelEvent(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileEvents, "events", id)
}

func (s *Service) DeleteEvent(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileEvents) != access.Full {
		return models.ErrForbidden
	}
	return db.DeleteEvent(ctx, s.database, id)
}

func (s *Service) applyEvent(id int64) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		var e models.Event
		if err := json.Unmarshal(snapshot, &e); err != nil {
			return err
		}
		e.ID = id
		return db.UpdateEvent(ctx, tx, &e)
	}
}

// Уроки создаёт генератор; руками правятся посещаемость, тема, статус.
func (s *Service) UpdateLesson(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	return s.update(ctx, actor, ProfileLessons, "lessons", id, patch,
		func(ctx context.Context, q db.Querier) (any, error) { return db.GetLessonByID(ctx, q, id) },
		s.applyLesson(id))
}

func (s *Service) ConfirmLesson(ctx context.Context, actor access.Actor, id int64) error {
	return s.confirm(ctx, actor, ProfileLessons, "lessons", id, s.applyLesson(id))
}

func (s *Service) CancelLesson(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileLessons, "lessons", id)
}

func (s *Service) DeleteLesson(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileLessons) != access.Full {
		return models.ErrForbidden
	}
	return db.DeleteLesson(ctx, s.database, id)
}

func (s *Service) applyLesson(id int64) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		var l models.Lesson
		if err := json.Unmarshal(snapshot, &l); err != nil {
			return err
		}
		l.ID = id
		return db.UpdateLesson(ctx, tx, &l)
	}
}
