package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/mvpboard/internal/errors"
	"github.com/abrezinsky/mvpboard/internal/models"
)

// GlobalStatsID is the key of the single global-aggregate document.
const GlobalStatsID = "globalUsage"

// Repository provides data access methods over the SQLite-backed
// document store
type Repository struct {
	db *sql.DB

	// useIncrement selects the atomic counter path; when false the
	// read-modify-write transaction fallback is used instead.
	useIncrement bool

	notifier notifier
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, useIncrement: true}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SetUseIncrement toggles the atomic-increment counter path. Tests use
// it to exercise the transaction fallback.
func (r *Repository) SetUseIncrement(enabled bool) {
	r.useIncrement = enabled
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			uid TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			email TEXT,
			names TEXT NOT NULL DEFAULT '[]',
			fixed_winner TEXT,
			ranking TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS classes (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			name TEXT NOT NULL,
			students TEXT NOT NULL DEFAULT '[]',
			current_winner TEXT,
			weekly_winners TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (uid) REFERENCES users(uid) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS stats (
			id TEXT PRIMARY KEY,
			class_count INTEGER NOT NULL DEFAULT 0,
			student_count INTEGER NOT NULL DEFAULT 0,
			mvp_count INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_display_name ON users(display_name COLLATE NOCASE)`,
		`CREATE INDEX IF NOT EXISTS idx_classes_uid ON classes(uid)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// The global stats document always exists
	_, err := r.db.Exec(`INSERT OR IGNORE INTO stats (id) VALUES (?)`, GlobalStatsID)
	return err
}

// ==================== User Methods ====================

// GetOrCreateUser looks up a user by display name (case-insensitive)
// and creates one with a fresh uid on first sign-in.
func (r *Repository) GetOrCreateUser(ctx context.Context, displayName, email string) (models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return models.User{}, errors.Validation("display name is required")
	}

	var user models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT uid, display_name, COALESCE(email, '') FROM users WHERE display_name = ? COLLATE NOCASE`,
		displayName,
	).Scan(&user.UID, &user.DisplayName, &user.Email)
	if err == nil {
		return user, nil
	}
	if err != sql.ErrNoRows {
		return models.User{}, errors.Internal(err)
	}

	user = models.User{UID: uuid.NewString(), DisplayName: displayName, Email: email}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (uid, display_name, email) VALUES (?, ?, ?)`,
		user.UID, user.DisplayName, user.Email,
	)
	if err != nil {
		return models.User{}, errors.Internal(err)
	}
	return user, nil
}

// UserStateRecord is the per-user global state document as stored. The
// ranking store is returned raw so callers can run legacy-shape
// normalization over it.
type UserStateRecord struct {
	Names       []string
	FixedWinner string
	RankingRaw  map[string]interface{}
}

// GetUserState loads a user's global state document.
func (r *Repository) GetUserState(ctx context.Context, uid string) (*UserStateRecord, error) {
	var namesJSON, rankingJSON string
	var fixedWinner sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT names, fixed_winner, ranking FROM users WHERE uid = ?`, uid,
	).Scan(&namesJSON, &fixedWinner, &rankingJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Internal(err)
	}

	rec := &UserStateRecord{FixedWinner: fixedWinner.String}
	if err := json.Unmarshal([]byte(namesJSON), &rec.Names); err != nil {
		rec.Names = nil
	}
	if err := json.Unmarshal([]byte(rankingJSON), &rec.RankingRaw); err != nil {
		rec.RankingRaw = map[string]interface{}{}
	}
	return rec, nil
}

// UserStatePatch is a merge-style partial write of the user state
// document. Nil fields are left untouched.
type UserStatePatch struct {
	Names       *[]string
	FixedWinner *string // empty string clears the winner
	Ranking     map[string][]models.RankingEntry
}

// SaveUserState applies a partial update to the user state document.
func (r *Repository) SaveUserState(ctx context.Context, uid string, patch UserStatePatch) error {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}

	if patch.Names != nil {
		encoded, err := json.Marshal(cleanNames(*patch.Names))
		if err != nil {
			return errors.Internal(err)
		}
		sets = append(sets, "names = ?")
		args = append(args, string(encoded))
	}
	if patch.FixedWinner != nil {
		sets = append(sets, "fixed_winner = ?")
		if trimmed := strings.TrimSpace(*patch.FixedWinner); trimmed != "" {
			args = append(args, trimmed)
		} else {
			args = append(args, nil)
		}
	}
	if patch.Ranking != nil {
		encoded, err := json.Marshal(patch.Ranking)
		if err != nil {
			return errors.Internal(err)
		}
		sets = append(sets, "ranking = ?")
		args = append(args, string(encoded))
	}
	if len(sets) == 1 {
		return nil
	}

	args = append(args, uid)
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE uid = ?", args...)
	if err != nil {
		return errors.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	r.publish(ChangeEvent{Kind: ChangeUserState, UID: uid})
	return nil
}

// cleanNames trims entries and drops empties before storage.
func cleanNames(names []string) []string {
	out := []string{}
	for _, n := range names {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// WithTx runs fn inside a transaction, committing on nil and rolling
// back otherwise.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Internal(err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Internal(err)
	}
	return nil
}
