package services

import (
	"context"

	"github.com/abrezinsky/mvpboard/internal/models"
)

// PickerServicer defines the interface for winner and draw operations
type PickerServicer interface {
	SignIn(ctx context.Context, displayName, email string) (models.User, error)
	SignOut()
	Load(ctx context.Context) error
	SetWinner(ctx context.Context, name string, opts SetWinnerOptions) error
	Reconcile(ctx context.Context)
	SetNames(ctx context.Context, text string) []string
	SetShuffleSeconds(seconds int) int
	SelectClass(ctx context.Context, id string) error
	Start(ctx context.Context) error
	Board(ctx context.Context) (*BoardState, error)
	SetBroadcaster(b Broadcaster)
}

// ClassServicer defines the interface for class roster operations
type ClassServicer interface {
	List() []models.Class
	Add(ctx context.Context, name string, students []string, allowDuplicate bool) (models.Class, error)
	EditStudents(ctx context.Context, id string, students []string) error
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	SetBroadcaster(b Broadcaster)
}

// RankingServicer defines the interface for ledger operations
type RankingServicer interface {
	Rows(scope models.Scope) []models.RankingRow
	ActiveRows() []models.RankingRow
	Append(ctx context.Context, scope models.Scope, name string)
	Remove(ctx context.Context, ts int64) error
	Clear(ctx context.Context) error
	ApplyRemote(scope models.Scope, entries []models.RankingEntry) bool
	SetBroadcaster(b Broadcaster)
}

// StatsServicer defines the interface for usage counter operations
type StatsServicer interface {
	Get(ctx context.Context) (models.GlobalStats, error)
	Notice(ctx context.Context) (UsageNotice, error)
	AdjustClasses(ctx context.Context, delta int)
	SetStudents(ctx context.Context, count int)
	SetMVPs(ctx context.Context, count int)
	Broadcast(ctx context.Context)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ PickerServicer  = (*PickerService)(nil)
	_ ClassServicer   = (*ClassService)(nil)
	_ RankingServicer = (*RankingService)(nil)
	_ StatsServicer   = (*StatsService)(nil)
)
