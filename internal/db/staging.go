package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"educrm/internal/models"
)

// Таблицы с колонкой changes. Имена подставляются в SQL, поэтому
// любое другое значение — ошибка программиста, не пользователя.
var stageableTables = map[string]bool{
	"courses":       true,
	"syllabus":      true,
	"teachers":      true,
	"workers":       true,
	"students":      true,
	"groups":        true,
	"lessons":       true,
	"events":        true,
	"consultations": true,
}

func checkStageable(table string) error {
	if !stageableTables[table] {
		return fmt.Errorf("таблица %q не поддерживает отложенные правки", table)
	}
	return nil
}

// SetChanges кладёт полный снимок-кандидат в changes. Повторный вызов
// молча перетирает предыдущее предложение.
func SetChanges(ctx context.Context, q Querier, table string, id int64, snapshot json.RawMessage) error {
	if err := checkStageable(table); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		`UPDATE `+table+` SET changes = $1 WHERE id = $2`, []byte(snapshot), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func GetChanges(ctx context.Context, q Querier, table string, id int64) (json.RawMessage, error) {
	if err := checkStageable(table); err != nil {
		return nil, err
	}
	var raw []byte
	err := q.QueryRowContext(ctx,
		`SELECT changes FROM `+table+` WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func ClearChanges(ctx context.Context, q Querier, table string, id int64) error {
	if err := checkStageable(table); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		`UPDATE `+table+` SET changes = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
