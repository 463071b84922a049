package apperror

import (
	"errors"
	"fmt"
	"testing"
)

var kinds = []error{ErrNotFound, ErrValidation, ErrConflict, ErrForbidden, ErrUnauthenticated}

// Each constructor must match its own kind and no other, also after being
// wrapped the way services wrap errors.
func TestConstructorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		kind error
	}{
		{"NotFound", NotFound("punch", "p-1"), ErrNotFound},
		{"ValidationFailed", ValidationFailed("timestamp", "Cannot set punch time in the future"), ErrValidation},
		{"Conflict", Conflict("organization", `slug "acme" is already taken`), ErrConflict},
		{"Forbidden", Forbidden("only organization admins can add punches"), ErrForbidden},
		{"Unauthenticated", Unauthenticated("sign in required"), ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service/punch: loading board: %w", tt.err)

			for _, k := range kinds {
				want := k == tt.kind
				if got := errors.Is(wrapped, k); got != want {
					t.Errorf("errors.Is(%q, %v) = %v, want %v", wrapped, k, got, want)
				}
			}
		})
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NotFound("board", "b-42"), "board b-42 not found"},
		{Conflict("board", "slug already taken"), "board: slug already taken"},
		{ValidationFailed("note", "note must be at most 255 characters"), "note must be at most 255 characters"},
		{Forbidden("no access to this board"), "no access to this board"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldOf(t *testing.T) {
	err := fmt.Errorf("handler: %w", ValidationFailed("note", "too long"))
	if got := FieldOf(err); got != "note" {
		t.Errorf("FieldOf = %q, want %q", got, "note")
	}

	if got := FieldOf(Forbidden("nope")); got != "" {
		t.Errorf("FieldOf(Forbidden) = %q, want empty", got)
	}
	if got := FieldOf(errors.New("plain")); got != "" {
		t.Errorf("FieldOf(plain) = %q, want empty", got)
	}
}

func TestAsRecoversMessage(t *testing.T) {
	wrapped := fmt.Errorf("service/organization: inviting: %w", Forbidden("only organization admins can invite members"))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatalf("errors.As did not find *AppError in %v", wrapped)
	}
	if appErr.Message != "only organization admins can invite members" {
		t.Errorf("Message = %q", appErr.Message)
	}
	if appErr.Unwrap() != ErrForbidden {
		t.Errorf("Unwrap() = %v, want %v", appErr.Unwrap(), ErrForbidden)
	}
}
