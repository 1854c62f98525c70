// Package staging — двухфазный цикл правок: ограниченный актор
// откладывает полный снимок-кандидат в changes, привилегированный
// позже подтверждает (снимок становится сущностью) или отклоняет.
package staging

import (
	"context"
	"encoding/json"
	"errors"

	"educrm/internal/db"
)

var ErrNoProposal = errors.New("нет отложенной правки")

type State int

const (
	Clean State = iota
	Proposed
)

func (s State) String() string {
	if s == Proposed {
		return "proposed"
	}
	return "clean"
}

// Proposal — состояние сущности в цикле правок. Snapshot заполнен
// только в состоянии Proposed.
type Proposal struct {
	State    State
	Snapshot json.RawMessage
}

func Load(ctx context.Context, q db.Querier, table string, id int64) (Proposal, error) {
	raw, err := db.GetChanges(ctx, q, table, id)
	if err != nil {
		return Proposal{}, err
	}
	if len(raw) == 0 {
		return Proposal{State: Clean}, nil
	}
	return Proposal{State: Proposed, Snapshot: raw}, nil
}

// Merge накатывает частичную правку поверх текущей сущности и отдаёт
// полный снимок-кандидат. current — указатель на загруженную сущность;
// после вызова она изменена и годится только как кандидат.
func Merge(current any, patch json.RawMessage) (json.RawMessage, error) {
	if err := json.Unmarshal(patch, current); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	// Правка поверх Proposed не должна утащить прежнее предложение
	// внутрь нового снимка.
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "changes")
	return json.Marshal(m)
}

// Stage откладывает правку. Верхнеуровневые поля сущности не трогаются.
// Конкурентное предложение молча перетирает предыдущее.
func Stage(ctx context.Context, q db.Querier, table string, id int64, current any, patch json.RawMessage) error {
	snapshot, err := Merge(current, patch)
	if err != nil {
		return err
	}
	return db.SetChanges(ctx, q, table, id, snapshot)
}

// Confirm достаёт отложенный снимок, прогоняет его через apply —
// полный путь обновления сущности вместе с синхронизацией — и чистит
// changes. Вызывается внутри транзакции воркфлоу.
func Confirm(ctx context.Context, q db.Querier, table string, id int64, apply func(snapshot json.RawMessage) error) error {
	p, err := Load(ctx, q, table, id)
	if err != nil {
		return err
	}
	if p.State != Proposed {
		return ErrNoProposal
	}
	if err := apply(p.Snapshot); err != nil {
		return err
	}
	return db.ClearChanges(ctx, q, table, id)
}

// Cancel отбрасывает предложение, сущность остаётся как была.
func Cancel(ctx context.Context, q db.Querier, table string, id int64) error {
	p, err := Load(ctx, q, table, id)
	if err != nil {
		return err
	}
	if p.State != Proposed {
		return ErrNoProposal
	}
	return db.ClearChanges(ctx, q, table, id)
}
