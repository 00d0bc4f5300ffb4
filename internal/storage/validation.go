package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spendsheet/spendsheet/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidUser    = errors.New("invalid user")
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateUser validates the fields required to persist a user row.
func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidUser)
	}
	return nil
}

// validateAmount rejects negative monetary values.
func validateAmount(amount float64, paramName string) error {
	if amount < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, paramName)
	}
	return nil
}
