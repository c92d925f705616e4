package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/abrezinsky/mvpboard/internal/errors"
	"github.com/abrezinsky/mvpboard/internal/models"
)

// ClassRecord is a class document as stored. WeeklyRaw carries the
// weekly-winners value before normalization so legacy encodings survive
// the round trip to the caller.
type ClassRecord struct {
	ID            string
	Name          string
	Students      []string
	CurrentWinner string
	WeeklyRaw     interface{}
}

// ListClasses returns a user's classes sorted by case-insensitive name.
func (r *Repository) ListClasses(ctx context.Context, uid string) ([]ClassRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, students, current_winner, weekly_winners FROM classes WHERE uid = ?`, uid)
	if err != nil {
		return nil, errors.Internal(err)
	}
	defer rows.Close()

	var out []ClassRecord
	for rows.Next() {
		rec, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// GetClass loads one class document. Used by the start path to read the
// authoritative current winner instead of the cached copy.
func (r *Repository) GetClass(ctx context.Context, uid, id string) (*ClassRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, students, current_winner, weekly_winners FROM classes WHERE uid = ? AND id = ?`,
		uid, id)
	rec, err := scanClass(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClass(row rowScanner) (ClassRecord, error) {
	var rec ClassRecord
	var studentsJSON, weeklyJSON string
	var winner sql.NullString
	err := row.Scan(&rec.ID, &rec.Name, &studentsJSON, &winner, &weeklyJSON)
	if err == sql.ErrNoRows {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, errors.Internal(err)
	}
	rec.CurrentWinner = winner.String
	if err := json.Unmarshal([]byte(studentsJSON), &rec.Students); err != nil {
		rec.Students = nil
	}
	if err := json.Unmarshal([]byte(weeklyJSON), &rec.WeeklyRaw); err != nil {
		rec.WeeklyRaw = nil
	}
	return rec, nil
}

// CreateClass inserts a class with an empty winners ledger and returns it.
func (r *Repository) CreateClass(ctx context.Context, uid, name string, students []string) (models.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Class{}, errors.Validation("class name is required")
	}
	students = cleanNames(students)
	if len(students) == 0 {
		return models.Class{}, errors.Validation("at least one student is required")
	}

	encoded, err := json.Marshal(students)
	if err != nil {
		return models.Class{}, errors.Internal(err)
	}

	class := models.Class{ID: uuid.NewString(), Name: name, Students: students}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO classes (id, uid, name, students) VALUES (?, ?, ?, ?)`,
		class.ID, uid, class.Name, string(encoded))
	if err != nil {
		return models.Class{}, errors.Internal(err)
	}
	r.publish(ChangeEvent{Kind: ChangeClass, UID: uid, ClassID: class.ID})
	return class, nil
}

// UpdateClassStudents replaces a class roster.
func (r *Repository) UpdateClassStudents(ctx context.Context, uid, id string, students []string) error {
	students = cleanNames(students)
	if len(students) == 0 {
		return errors.Validation("at least one student is required")
	}
	encoded, err := json.Marshal(students)
	if err != nil {
		return errors.Internal(err)
	}
	return r.updateClass(ctx, uid, id, "students = ?", string(encoded))
}

// SetClassWinner writes a class's current winner; blank clears it.
func (r *Repository) SetClassWinner(ctx context.Context, uid, id, winner string) error {
	if trimmed := strings.TrimSpace(winner); trimmed != "" {
		return r.updateClass(ctx, uid, id, "current_winner = ?", trimmed)
	}
	return r.updateClass(ctx, uid, id, "current_winner = ?", nil)
}

// SetClassWeekly replaces a class's weekly-winners ledger.
func (r *Repository) SetClassWeekly(ctx context.Context, uid, id string, entries []models.RankingEntry) error {
	if entries == nil {
		entries = []models.RankingEntry{}
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return errors.Internal(err)
	}
	return r.updateClass(ctx, uid, id, "weekly_winners = ?", string(encoded))
}

func (r *Repository) updateClass(ctx context.Context, uid, id, set string, value interface{}) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE classes SET "+set+", updated_at = CURRENT_TIMESTAMP WHERE uid = ? AND id = ?",
		value, uid, id)
	if err != nil {
		return errors.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	r.publish(ChangeEvent{Kind: ChangeClass, UID: uid, ClassID: id})
	return nil
}

// DeleteClass removes a class document.
func (r *Repository) DeleteClass(ctx context.Context, uid, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE uid = ? AND id = ?`, uid, id)
	if err != nil {
		return errors.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	r.publish(ChangeEvent{Kind: ChangeClass, UID: uid, ClassID: id})
	return nil
}

// CountStudents totals roster sizes across a user's classes.
func (r *Repository) CountStudents(ctx context.Context, uid string) (int, error) {
	classes, err := r.ListClasses(ctx, uid)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range classes {
		total += len(c.Students)
	}
	return total, nil
}
