package db

import (
	"context"

	"educrm/internal/models"
)

func ListEnrollmentsByStudent(ctx context.Context, q Querier, studentID int64) ([]models.Enrollment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT group_id, contract_start_date, contract_end_date, payments, paids,
		       status, total_amount, discount, discount_reason, degree,
		       work_status, current_work_place, current_work_position
		FROM enrollments
		WHERE student_id = $1
		ORDER BY id
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		var status string
		var payments, paids, workStatus []byte
		if err := rows.Scan(&e.GroupID, &e.ContractStartDate, &e.ContractEndDate, &payments, &paids,
			&status, &e.TotalAmount, &e.Discount, &e.DiscountReason, &e.Degree,
			&workStatus, &e.CurrentWorkPlace, &e.CurrentWorkPos); err != nil {
			return nil, err
		}
		if err := scanJSON(payments, &e.Payments); err != nil {
			return nil, err
		}
		if err := scanJSON(paids, &e.Paids); err != nil {
			return nil, err
		}
		if err := scanJSON(workStatus, &e.WorkStatus); err != nil {
			return nil, err
		}
		e.Status = models.EnrollmentStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveEnrollment — upsert по паре (student, group): добавление студента в
// группу идемпотентно, повторная запись обновляет контрактные поля.
func SaveEnrollment(ctx context.Context, q Querier, studentID int64, e models.Enrollment) error {
	status := e.Status
	if status == "" {
		status = models.EnrollContinue
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO enrollments (student_id, group_id, contract_start_date, contract_end_date,
		                         payments, paids, status, total_amount, discount, discount_reason,
		                         degree, work_status, current_work_place, current_work_position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (student_id, group_id) DO UPDATE SET
			contract_start_date = EXCLUDED.contract_start_date,
			contract_end_date = EXCLUDED.contract_end_date,
			payments = EXCLUDED.payments,
			paids = EXCLUDED.paids,
			status = EXCLUDED.status,
			total_amount = EXCLUDED.total_amount,
			discount = EXCLUDED.discount,
			discount_reason = EXCLUDED.discount_reason,
			degree = EXCLUDED.degree,
			work_status = EXCLUDED.work_status,
			current_work_place = EXCLUDED.current_work_place,
			current_work_position = EXCLUDED.current_work_position
	`, studentID, e.GroupID, e.ContractStartDate, e.ContractEndDate,
		mustJSON(e.Payments), mustJSON(e.Paids), string(status), e.TotalAmount,
		e.Discount, e.DiscountReason, e.Degree, mustJSON(e.WorkStatus),
		e.CurrentWorkPlace, e.CurrentWorkPos)
	return err
}

// AddEnrollmentIfAbsent — только membership-гарантия: контрактные поля
// существующей записи не трогаются.
func AddEnrollmentIfAbsent(ctx context.Context, q Querier, studentID, groupID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO enrollments (student_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (student_id, group_id) DO NOTHING
	`, studentID, groupID)
	return err
}

func DeleteEnrollment(ctx context.Context, q Querier, studentID, groupID int64) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM enrollments WHERE student_id = $1 AND group_id = $2
	`, studentID, groupID)
	return err
}
