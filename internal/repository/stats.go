package repository

import (
	"context"
	"database/sql"

	"github.com/abrezinsky/mvpboard/internal/errors"
	"github.com/abrezinsky/mvpboard/internal/models"
)

// GetStats loads the global usage document.
func (r *Repository) GetStats(ctx context.Context) (models.GlobalStats, error) {
	var stats models.GlobalStats
	err := r.db.QueryRowContext(ctx,
		`SELECT class_count, student_count, mvp_count FROM stats WHERE id = ?`, GlobalStatsID,
	).Scan(&stats.ClassCount, &stats.StudentCount, &stats.MVPCount)
	if err == sql.ErrNoRows {
		return models.GlobalStats{}, nil
	}
	if err != nil {
		return models.GlobalStats{}, errors.Internal(err)
	}
	return stats, nil
}

// AdjustClassCount shifts the global class counter by delta, clamped at
// zero. The atomic-increment path avoids lost updates under concurrent
// writers; when increments are unavailable the adjustment runs as a
// read-modify-write transaction instead.
func (r *Repository) AdjustClassCount(ctx context.Context, delta int) error {
	if delta == 0 {
		return nil
	}
	if r.useIncrement {
		_, err := r.db.ExecContext(ctx,
			`UPDATE stats SET class_count = MAX(0, class_count + ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			delta, GlobalStatsID)
		if err != nil {
			return errors.Internal(err)
		}
		r.publish(ChangeEvent{Kind: ChangeStats})
		return nil
	}

	err := r.WithTx(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx,
			`SELECT class_count FROM stats WHERE id = ?`, GlobalStatsID).Scan(&current)
		if err != nil && err != sql.ErrNoRows {
			return errors.Internal(err)
		}
		next := current + delta
		if next < 0 {
			next = 0
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE stats SET class_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			next, GlobalStatsID)
		if err != nil {
			return errors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.publish(ChangeEvent{Kind: ChangeStats})
	return nil
}

// SetStudentCount overwrites the global student total.
func (r *Repository) SetStudentCount(ctx context.Context, count int) error {
	return r.setStat(ctx, "student_count", count)
}

// SetMVPCount overwrites the global MVP total.
func (r *Repository) SetMVPCount(ctx context.Context, count int) error {
	return r.setStat(ctx, "mvp_count", count)
}

// SetClassCount overwrites the global class total (full recount path).
func (r *Repository) SetClassCount(ctx context.Context, count int) error {
	return r.setStat(ctx, "class_count", count)
}

func (r *Repository) setStat(ctx context.Context, column string, value int) error {
	if value < 0 {
		value = 0
	}
	// column is always one of the fixed stat names above
	_, err := r.db.ExecContext(ctx,
		"UPDATE stats SET "+column+" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		value, GlobalStatsID)
	if err != nil {
		return errors.Internal(err)
	}
	r.publish(ChangeEvent{Kind: ChangeStats})
	return nil
}
