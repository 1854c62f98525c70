package jobs

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"educrm/internal/metrics"
)

// RollGroupStatuses двигает статусы групп по датам: наступил
// startDate — waiting становится current, прошёл endDate — ended.
// Ручные переводы (например, досрочное закрытие) не откатываются.
func RollGroupStatuses(database *sql.DB, log *zap.SugaredLogger) Job {
	return func(ctx context.Context) error {
		now := time.Now()

		res, err := database.ExecContext(ctx, `
			UPDATE groups SET status = 'current'
			WHERE status = 'waiting' AND start_date IS NOT NULL AND start_date <= $1
		`, now)
		if err != nil {
			return err
		}
		started, _ := res.RowsAffected()

		res, err = database.ExecContext(ctx, `
			UPDATE groups SET status = 'ended'
			WHERE status = 'current' AND end_date IS NOT NULL AND end_date < $1
		`, now)
		if err != nil {
			return err
		}
		ended, _ := res.RowsAffected()

		if started+ended > 0 {
			log.Infow("статусы групп продвинуты", "started", started, "ended", ended)
		}
		return nil
	}
}

// PingDB держит актуальной метрику задержки базы.
func PingDB(database *sql.DB) Job {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := database.PingContext(ctx); err != nil {
			return err
		}
		metrics.ObserveDBPing(time.Since(t0))
		return nil
	}
}
