package models

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// Символьные ключи конфликтов, которые отдаёт API.
const (
	KeyEmailExists        = "email-already-exist"
	KeyGroupExists        = "group-already-exists"
	KeyCourseExists       = "course-already-exists"
	KeySyllabusOrderTaken = "syllabus-order-exists"
)

type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string { return e.Key }

func Conflict(key string) error { return &ConflictError{Key: key} }

func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// PartialError помечает многошаговый воркфлоу, упавший после того,
// как часть записей уже закоммичена. Хранилище в этот момент может
// быть рассогласовано — это должно быть видно вызывающему.
type PartialError struct {
	Workflow string
	Step     string
	Err      error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s: шаг %q упал после частичной записи: %v", e.Workflow, e.Step, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// IsUniqueViolation — страховка на случай гонки между pre-check'ом
// уникальности и записью: SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
