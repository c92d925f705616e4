package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantKind Kind
		wantMsg  string
	}{
		{"not found", NotFound("class not found"), ErrNotFound, "class not found"},
		{"not found formatted", NotFoundf("no ledger entry at %d", 1700000000000), ErrNotFound, "no ledger entry at 1700000000000"},
		{"validation", Validation("select a winner before starting the shuffle"), ErrValidation, "select a winner before starting the shuffle"},
		{"validation formatted", Validationf("roster for %q is empty", "3A"), ErrValidation, `roster for "3A" is empty`},
		{"conflict", Conflict("a draw is already running"), ErrConflict, "a draw is already running"},
		{"conflict formatted", Conflictf("class %q already exists", "3A"), ErrConflict, `class "3A" already exists`},
		{"invalid input", InvalidInput("shuffle seconds must be a number"), ErrInvalidInput, "shuffle seconds must be a number"},
		{"invalid input formatted", InvalidInputf("bad timestamp %q", "abc"), ErrInvalidInput, `bad timestamp "abc"`},
		{"internal formatted", Internalf("stats update failed for %s", "globalUsage"), ErrInternal, "stats update failed for globalUsage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", tt.err.Kind, tt.wantKind)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no wrapped cause, got %v", tt.err.Err)
			}
		})
	}
}

func TestError_MessageOnly(t *testing.T) {
	err := Validation("the selected winner is not in the pool")

	if got := err.Error(); got != "the selected winner is not in the pool" {
		t.Errorf("Error() = %q", got)
	}
}

func TestError_WithCause(t *testing.T) {
	cause := stderrors.New("database is locked")
	err := Wrap(cause, ErrInternal, "failed to persist winner")

	if got := err.Error(); got != "failed to persist winner: database is locked" {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause through Unwrap")
	}
}

func TestInternal_HidesCauseInMessage(t *testing.T) {
	cause := stderrors.New("no such table: classes")
	err := Internal(cause)

	if err.Kind != ErrInternal {
		t.Errorf("kind = %v, want ErrInternal", err.Kind)
	}
	if err.Message != "internal error" {
		t.Errorf("message = %q, want the generic one", err.Message)
	}
	if err.Unwrap() != cause {
		t.Error("expected the cause to be preserved for the log")
	}
}

func TestWrap_KindSurvivesFurtherWrapping(t *testing.T) {
	inner := Wrap(stderrors.New("row missing"), ErrNotFound, "class not found")
	outer := Wrap(inner, ErrInternal, "board reload failed")

	// errors.As finds the outermost *Error, so its kind wins
	var appErr *Error
	if !stderrors.As(outer, &appErr) {
		t.Fatal("expected an *Error in the chain")
	}
	if appErr.Kind != ErrInternal {
		t.Errorf("kind = %v, want the outer ErrInternal", appErr.Kind)
	}
	if !stderrors.Is(outer, inner) {
		t.Error("expected the inner error to stay in the chain")
	}
}

func TestErrorAs_ThroughFmtWrap(t *testing.T) {
	err := Conflict("a draw is already running")
	wrapped := fmt.Errorf("starting draw: %w", err)

	var appErr *Error
	if !stderrors.As(wrapped, &appErr) || appErr.Kind != ErrConflict {
		t.Errorf("expected conflict kind through a fmt wrap, got %v", wrapped)
	}
}
