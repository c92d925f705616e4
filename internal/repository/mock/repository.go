package mock

import (
	"context"

	"github.com/abrezinsky/mvpboard/internal/models"
	"github.com/abrezinsky/mvpboard/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SaveUserStateError = errors.New("database error")
//	svc := services.NewRankingService(log, clock, mockRepo, sess, statsSvc)
//	svc.Append(ctx, scope, "Ada")
//	// the write fails with the injected error, the session keeps the entry
type Repository struct {
	repository.FullRepository

	// ===== User Errors =====
	GetOrCreateUserError error
	GetUserStateError    error
	SaveUserStateError   error

	// ===== Class Errors =====
	ListClassesError         error
	GetClassError            error
	CreateClassError         error
	UpdateClassStudentsError error
	SetClassWinnerError      error
	SetClassWeeklyError      error
	DeleteClassError         error
	CountStudentsError       error

	// ===== Stats Errors =====
	GetStatsError         error
	AdjustClassCountError error
	SetStudentCountError  error
	SetMVPCountError      error
	SetClassCountError    error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

// Subscribe forwards to the wrapped repository's change feed when the
// wrapped repository provides one.
func (m *Repository) Subscribe(buffer int) (<-chan repository.ChangeEvent, func()) {
	return m.FullRepository.(interface {
		Subscribe(buffer int) (<-chan repository.ChangeEvent, func())
	}).Subscribe(buffer)
}

// ==================== User Methods ====================

func (m *Repository) GetOrCreateUser(ctx context.Context, displayName, email string) (models.User, error) {
	if m.GetOrCreateUserError != nil {
		return models.User{}, m.GetOrCreateUserError
	}
	return m.FullRepository.GetOrCreateUser(ctx, displayName, email)
}

func (m *Repository) GetUserState(ctx context.Context, uid string) (*repository.UserStateRecord, error) {
	if m.GetUserStateError != nil {
		return nil, m.GetUserStateError
	}
	return m.FullRepository.GetUserState(ctx, uid)
}

func (m *Repository) SaveUserState(ctx context.Context, uid string, patch repository.UserStatePatch) error {
	if m.SaveUserStateError != nil {
		return m.SaveUserStateError
	}
	return m.FullRepository.SaveUserState(ctx, uid, patch)
}

// ==================== Class Methods ====================

func (m *Repository) ListClasses(ctx context.Context, uid string) ([]repository.ClassRecord, error) {
	if m.ListClassesError != nil {
		return nil, m.ListClassesError
	}
	return m.FullRepository.ListClasses(ctx, uid)
}

func (m *Repository) GetClass(ctx context.Context, uid, id string) (*repository.ClassRecord, error) {
	if m.GetClassError != nil {
		return nil, m.GetClassError
	}
	return m.FullRepository.GetClass(ctx, uid, id)
}

func (m *Repository) CreateClass(ctx context.Context, uid, name string, students []string) (models.Class, error) {
	if m.CreateClassError != nil {
		return models.Class{}, m.CreateClassError
	}
	return m.FullRepository.CreateClass(ctx, uid, name, students)
}

func (m *Repository) UpdateClassStudents(ctx context.Context, uid, id string, students []string) error {
	if m.UpdateClassStudentsError != nil {
		return m.UpdateClassStudentsError
	}
	return m.FullRepository.UpdateClassStudents(ctx, uid, id, students)
}

func (m *Repository) SetClassWinner(ctx context.Context, uid, id, winner string) error {
	if m.SetClassWinnerError != nil {
		return m.SetClassWinnerError
	}
	return m.FullRepository.SetClassWinner(ctx, uid, id, winner)
}

func (m *Repository) SetClassWeekly(ctx context.Context, uid, id string, entries []models.RankingEntry) error {
	if m.SetClassWeeklyError != nil {
		return m.SetClassWeeklyError
	}
	return m.FullRepository.SetClassWeekly(ctx, uid, id, entries)
}

func (m *Repository) DeleteClass(ctx context.Context, uid, id string) error {
	if m.DeleteClassError != nil {
		return m.DeleteClassError
	}
	return m.FullRepository.DeleteClass(ctx, uid, id)
}

func (m *Repository) CountStudents(ctx context.Context, uid string) (int, error) {
	if m.CountStudentsError != nil {
		return 0, m.CountStudentsError
	}
	return m.FullRepository.CountStudents(ctx, uid)
}

// ==================== Stats Methods ====================

func (m *Repository) GetStats(ctx context.Context) (models.GlobalStats, error) {
	if m.GetStatsError != nil {
		return models.GlobalStats{}, m.GetStatsError
	}
	return m.FullRepository.GetStats(ctx)
}

func (m *Repository) AdjustClassCount(ctx context.Context, delta int) error {
	if m.AdjustClassCountError != nil {
		return m.AdjustClassCountError
	}
	return m.FullRepository.AdjustClassCount(ctx, delta)
}

func (m *Repository) SetStudentCount(ctx context.Context, count int) error {
	if m.SetStudentCountError != nil {
		return m.SetStudentCountError
	}
	return m.FullRepository.SetStudentCount(ctx, count)
}

func (m *Repository) SetMVPCount(ctx context.Context, count int) error {
	if m.SetMVPCountError != nil {
		return m.SetMVPCountError
	}
	return m.FullRepository.SetMVPCount(ctx, count)
}

func (m *Repository) SetClassCount(ctx context.Context, count int) error {
	if m.SetClassCountError != nil {
		return m.SetClassCountError
	}
	return m.FullRepository.SetClassCount(ctx, count)
}

// Ensure the mock satisfies the interface it wraps
var _ repository.FullRepository = (*Repository)(nil)
