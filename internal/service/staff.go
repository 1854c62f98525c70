package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"educrm/internal/access"
	"educrm/internal/db"
	"educrm/internal/models"
)

// Пароль в JSON наружу не сериализуется, поэтому в правках он идёт
// отдельным полем и вынимается до слияния снимка.
func extractPassword(patch json.RawMessage) (json.RawMessage, string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(patch, &m); err != nil {
		return nil, "", err
	}
	raw, ok := m["password"]
	if !ok {
		return patch, "", nil
	}
	delete(m, "password")
	stripped, err := json.Marshal(m)
	if err != nil {
		return nil, "", err
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, "", err
	}
	return stripped, plain, nil
}

func hashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("хеширование пароля: %w", err)
	}
	return string(h), nil
}

// CreateTeacher заводит преподавателя или ментора; t.Password —
// открытый пароль, хешируется здесь.
func (s *Service) CreateTeacher(ctx context.Context, actor access.Actor, t *models.Teacher) error {
	if access.Resolve(actor, ProfileTeachers) != access.Full {
		return models.ErrForbidden
	}
	hash, err := hashPassword(t.Password)
	if err != nil {
		return err
	}
	t.Password = hash
	return db.CreateTeacher(ctx, s.database, t)
}

func (s *Service) UpdateTeacher(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	patch, plain, err := extractPassword(patch)
	if err != nil {
		return false, err
	}
	var hash string
	if plain != "" {
		if hash, err = hashPassword(plain); err != nil {
			return false, err
		}
	}
	return s.update(ctx, actor, ProfileTeachers, "teachers", id, patch,
		func(ctx context.Context, q db.Querier) (any, error) { return db.GetTeacherByID(ctx, q, id) },
		s.applyTeacher(id, hash))
}

func (s *Service) ConfirmTeacher(ctx context.Context, actor access.Actor, id int64) error {
	return s.confirm(ctx, actor, ProfileTeachers, "teachers", id, s.applyTeacher(id, ""))
}

func (s *Service) CancelTeacher(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileTeachers, "teachers", id)
}

func (s *Service) DeleteTeacher(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileTeachers) != access.Full {
		return models.ErrForbidden
	}
	return db.SoftDeleteTeacher(ctx, s.database, id)
}

// applyTeacher: пароль в снимке не живёт, поэтому берётся либо новый
// хеш, либо старый из базы.
func (s *Service) applyTeacher(id int64, newHash string) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		old, err := db.GetTeacherByID(ctx, tx, id)
		if err != nil {
			return err
		}
		var t models.Teacher
		if err := json.Unmarshal(snapshot, &t); err != nil {
			return err
		}
		t.ID = id
		t.Password = old.Password
		if newHash != "" {
			t.Password = newHash
		}
		return db.UpdateTeacher(ctx, tx, &t)
	}
}

func (s *Service) CreateWorker(ctx context.Context, actor access.Actor, w *models.Worker) error {
	if access.Resolve(actor, ProfileWorkers) != access.Full {
		return models.ErrForbidden
	}
	hash, err := hashPassword(w.Password)
	if err != nil {
		return err
	}
	w.Password = hash
	return db.CreateWorker(ctx, s.database, w)
}

func (s *Service) UpdateWorker(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, error) {
	patch, plain, err := extractPassword(patch)
	if err != nil {
		return false, err
	}
	var hash string
	if plain != "" {
		if hash, err = hashPassword(plain); err != nil {
			return false, err
		}
	}
	return s.update(ctx, actor, ProfileWorkers, "workers", id, patch,
		func(ctx context.Context, q db.Querier) (any, error) { return db.GetWorkerByID(ctx, q, id) },
		s.applyWorker(id, hash))
}

func (s *Service) ConfirmWorker(ctx context.Context, actor access.Actor, id int64) error {
	return s.confirm(ctx, actor, ProfileWorkers, "workers", id, s.applyWorker(id, ""))
}

func (s *Service) CancelWorker(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileWorkers, "workers", id)
}

func (s *Service) DeleteWorker(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileWorkers) != access.Full {
		return models.ErrForbidden
	}
	return db.DeleteWorker(ctx, s.database, id)
}

func (s *Service) applyWorker(id int64, newHash string) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		old, err := db.GetWorkerByID(ctx, tx, id)
		if err != nil {
			return err
		}
		var w models.Worker
		if err := json.Unmarshal(snapshot, &w); err != nil {
			return err
		}
		w.ID = id
		w.Password = old.Password
		if newHash != "" {
			w.Password = newHash
		}
		return db.UpdateWorker(ctx, tx, &w)
	}
}
