package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// TestGetUserState_QueryError tests database error propagation
func TestGetUserState_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(errors.New("db down"))

	if _, err := repo.GetUserState(ctx, "uid-1"); err == nil {
		t.Error("expected error from query failure, got nil")
	}
}

// TestGetUserState_MalformedJSON tests tolerance of corrupt stored documents
func TestGetUserState_MalformedJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"names", "fixed_winner", "ranking"}).
		AddRow("not-json", "Alice", "{broken")
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(rows)

	rec, err := repo.GetUserState(ctx, "uid-1")
	if err != nil {
		t.Fatalf("expected corrupt JSON to be tolerated, got %v", err)
	}
	if rec.Names != nil {
		t.Errorf("expected nil names for corrupt JSON, got %v", rec.Names)
	}
	if rec.RankingRaw == nil || len(rec.RankingRaw) != 0 {
		t.Errorf("expected empty ranking store for corrupt JSON, got %v", rec.RankingRaw)
	}
	if rec.FixedWinner != "Alice" {
		t.Errorf("expected winner to survive, got %q", rec.FixedWinner)
	}
}

// TestSaveUserState_ExecError tests database error propagation
func TestSaveUserState_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET").WillReturnError(errors.New("db down"))

	names := []string{"Alice"}
	if err := repo.SaveUserState(ctx, "uid-1", UserStatePatch{Names: &names}); err == nil {
		t.Error("expected error from exec failure, got nil")
	}
}

// TestListClasses_ScanError tests row scanning error
func TestListClasses_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	// students column must be a string; nil triggers a scan error
	rows := sqlmock.NewRows([]string{"id", "name", "students", "current_winner", "weekly_winners"}).
		AddRow("c1", "3A", nil, nil, "[]")
	mock.ExpectQuery("SELECT (.+) FROM classes").WillReturnRows(rows)

	if _, err := repo.ListClasses(ctx, "uid-1"); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListClasses_QueryError tests database error propagation
func TestListClasses_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM classes").WillReturnError(errors.New("db down"))

	if _, err := repo.ListClasses(ctx, "uid-1"); err == nil {
		t.Error("expected error from query failure, got nil")
	}
}

// TestGetStats_QueryError tests database error propagation
func TestGetStats_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM stats").WillReturnError(errors.New("db down"))

	if _, err := repo.GetStats(ctx); err == nil {
		t.Error("expected error from query failure, got nil")
	}
}

// TestAdjustClassCount_ExecError tests database error propagation
func TestAdjustClassCount_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db, useIncrement: true}
	ctx := context.Background()

	mock.ExpectExec("UPDATE stats SET").WillReturnError(errors.New("db down"))

	if err := repo.AdjustClassCount(ctx, 1); err == nil {
		t.Error("expected error from exec failure, got nil")
	}
}

// TestAdjustClassCount_FallbackBeginError tests transaction start failure
func TestAdjustClassCount_FallbackBeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db, useIncrement: false}
	ctx := context.Background()

	mock.ExpectBegin().WillReturnError(errors.New("db down"))

	if err := repo.AdjustClassCount(ctx, 1); err == nil {
		t.Error("expected error from begin failure, got nil")
	}
}
