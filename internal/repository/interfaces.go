package repository

import (
	"context"

	"github.com/abrezinsky/mvpboard/internal/models"
)

// UserRepository defines per-user state document operations
type UserRepository interface {
	GetOrCreateUser(ctx context.Context, displayName, email string) (models.User, error)
	GetUserState(ctx context.Context, uid string) (*UserStateRecord, error)
	SaveUserState(ctx context.Context, uid string, patch UserStatePatch) error
}

// ClassRepository defines class document operations
type ClassRepository interface {
	ListClasses(ctx context.Context, uid string) ([]ClassRecord, error)
	GetClass(ctx context.Context, uid, id string) (*ClassRecord, error)
	CreateClass(ctx context.Context, uid, name string, students []string) (models.Class, error)
	UpdateClassStudents(ctx context.Context, uid, id string, students []string) error
	SetClassWinner(ctx context.Context, uid, id, winner string) error
	SetClassWeekly(ctx context.Context, uid, id string, entries []models.RankingEntry) error
	DeleteClass(ctx context.Context, uid, id string) error
	CountStudents(ctx context.Context, uid string) (int, error)
}

// StatsRepository defines global usage counter operations
type StatsRepository interface {
	GetStats(ctx context.Context) (models.GlobalStats, error)
	AdjustClassCount(ctx context.Context, delta int) error
	SetStudentCount(ctx context.Context, count int) error
	SetMVPCount(ctx context.Context, count int) error
	SetClassCount(ctx context.Context, count int) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	UserRepository
	ClassRepository
	StatsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
