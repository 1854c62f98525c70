package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"educrm/internal/access"
	"educrm/internal/db"
	"educrm/internal/models"
	"educrm/internal/sales"
)

func (s *Service) CreateConsultation(ctx context.Context, actor access.Actor, c *models.Consultation) error {
	if access.Resolve(actor, ProfileConsultations) == access.ReadOnly {
		return models.ErrForbidden
	}
	return db.CreateConsultation(ctx, s.database, c)
}

// UpdateConsultation — правка консультации. Поле group в правке не
// применяется напрямую: это лишь пожелание, какую группу предпочесть
// при промоушене. Числовое пожелание остаётся в правке и при
// отложенном пути доезжает до снимка — подтверждение видит его так же,
// как прямая правка. Переход в sold запускает промоушен отдельной
// транзакцией уже после записи статуса; его сбой отдаётся как
// PartialError — статус к этому моменту закоммичен.
func (s *Service) UpdateConsultation(ctx context.Context, actor access.Actor, id int64, patch json.RawMessage) (bool, *sales.Result, error) {
	patch, preferred, err := extractPreferredGroup(patch)
	if err != nil {
		return false, nil, err
	}

	staged, err := s.update(ctx, actor, ProfileConsultations, "consultations", id, patch,
		s.loadConsultation(id), s.applyConsultation(id))
	if err != nil {
		return false, nil, s.workflowErr("consultation_update", err)
	}
	if staged {
		return true, nil, nil
	}

	result, err := s.promoteIfSold(ctx, id, preferred)
	return false, result, err
}

// ConfirmConsultation применяет отложенный снимок и, если статус стал
// sold, запускает промоушен с тем пожеланием группы, которое лежало в
// снимке.
func (s *Service) ConfirmConsultation(ctx context.Context, actor access.Actor, id int64) (*sales.Result, error) {
	var preferred *int64
	apply := func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		_, p, err := extractPreferredGroup(snapshot)
		if err != nil {
			return err
		}
		preferred = p
		return s.applyConsultation(id)(ctx, tx, snapshot)
	}
	if err := s.confirm(ctx, actor, ProfileConsultations, "consultations", id, apply); err != nil {
		return nil, s.workflowErr("consultation_confirm", err)
	}
	return s.promoteIfSold(ctx, id, preferred)
}

func (s *Service) CancelConsultation(ctx context.Context, actor access.Actor, id int64) error {
	return s.cancel(ctx, actor, ProfileConsultations, "consultations", id)
}

func (s *Service) DeleteConsultation(ctx context.Context, actor access.Actor, id int64) error {
	if access.Resolve(actor, ProfileConsultations) != access.Full {
		return models.ErrForbidden
	}
	return db.DeleteConsultation(ctx, s.database, id)
}

func (s *Service) loadConsultation(id int64) func(ctx context.Context, q db.Querier) (any, error) {
	return func(ctx context.Context, q db.Querier) (any, error) {
		return db.GetConsultationByID(ctx, q, id)
	}
}

func (s *Service) applyConsultation(id int64) func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
	return func(ctx context.Context, tx *sql.Tx, snapshot json.RawMessage) error {
		old, err := db.GetConsultationByID(ctx, tx, id)
		if err != nil {
			return err
		}
		var c models.Consultation
		if err := json.Unmarshal(snapshot, &c); err != nil {
			return err
		}
		c.ID = id
		// группу назначает только промоушен, правкой её не сменить
		c.GroupID = old.GroupID
		return db.UpdateConsultationRow(ctx, tx, &c)
	}
}

func (s *Service) promoteIfSold(ctx context.Context, id int64, preferred *int64) (*sales.Result, error) {
	c, err := db.GetConsultationByID(ctx, s.database, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ConsultSold {
		return nil, nil
	}

	var result *sales.Result
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		result, err = sales.PromoteConsultation(ctx, tx, c, preferred)
		return err
	})
	if err != nil {
		perr := &models.PartialError{Workflow: "consultation_update", Step: "promotion", Err: err}
		return nil, s.workflowErr("promotion", perr)
	}
	if s.notify != nil && result.Group != nil {
		s.notify.ConsultationSold(c, result)
	}
	return result, nil
}

// extractPreferredGroup читает пожелание группы из правки или снимка.
// Числовое значение остаётся на месте, чтобы при отложенной правке
// доехать до снимка; "newGroup" и null с фронта означают "подобрать
// автоматически" и убираются — в снимок им попадать незачем.
func extractPreferredGroup(patch json.RawMessage) (json.RawMessage, *int64, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(patch, &m); err != nil {
		return nil, nil, err
	}
	raw, ok := m["group"]
	if !ok {
		return patch, nil, nil
	}

	var gid *int64
	if err := json.Unmarshal(raw, &gid); err != nil || gid == nil {
		delete(m, "group")
		stripped, err := json.Marshal(m)
		if err != nil {
			return nil, nil, err
		}
		return stripped, nil, nil
	}
	return patch, gid, nil
}
