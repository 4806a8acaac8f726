package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"conflict struct", &ConflictError{Message: "dup"}, "conflict"},
		{"wrapped conflict sentinel", fmt.Errorf("folder: %w", ErrConflict), "conflict"},
		{"not found struct", &NotFoundError{Message: "x"}, "not_found"},
		{"guarded", &GuardedError{Path: "/a", Documents: 1}, "guarded"},
		{"validation", fmt.Errorf("%w: bad", ErrValidation), "validation_failed"},
		{"forbidden", &ForbiddenError{Message: "no"}, "forbidden"},
		{"unauthorized", &UnauthorizedError{Message: "no"}, "unauthorized"},
		{"storage", &StorageError{Op: "list", Err: errors.New("conn refused")}, "storage_unavailable"},
		{"other", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("rename folder: %w", &StorageError{Op: "rewrite descendants", Err: cause})

	if !errors.Is(err, ErrStorageUnavailable) {
		t.Error("expected ErrStorageUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected underlying cause to be reachable")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("storage error must not look like a conflict")
	}
}

func TestGuardedErrorMessage(t *testing.T) {
	err := &GuardedError{Path: "/Legal", Documents: 2, Folders: 1}
	want := "folder /Legal is not empty (2 documents, 1 subfolders)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
