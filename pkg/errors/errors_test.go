package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "size must be >= 1, got %d", 0)

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidConfig)
	}
	if err.Message != "size must be >= 1, got 0" {
		t.Errorf("Message = %q", err.Message)
	}
	if !strings.Contains(err.Error(), "INVALID_CONFIG") {
		t.Errorf("Error() = %q, missing code", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "write snapshot")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() = %q, missing cause", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{
			name: "matching code",
			err:  New(ErrCodeInvalidInput, "bad input"),
			code: ErrCodeInvalidInput,
			want: true,
		},
		{
			name: "different code",
			err:  New(ErrCodeInvalidInput, "bad input"),
			code: ErrCodeNotFound,
			want: false,
		},
		{
			name: "wrapped in fmt",
			err:  fmt.Errorf("context: %w", New(ErrCodeSessionNotFound, "no session")),
			code: ErrCodeSessionNotFound,
			want: true,
		},
		{
			name: "plain error",
			err:  stderrors.New("plain"),
			code: ErrCodeInternal,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidMode, "bad mode")); got != ErrCodeInvalidMode {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeInvalidMode)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidSelection, "cell (5,5) outside 3x3 lattice")
	if got := UserMessage(err); got != "cell (5,5) outside 3x3 lattice" {
		t.Errorf("UserMessage = %q", got)
	}

	plain := stderrors.New("plain message")
	if got := UserMessage(plain); got != "plain message" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
