package postgres

import (
	"errors"

	"gorm.io/gorm"
)

// Standardized database errors. CRUD and query methods return raw GORM
// errors; use TranslateError to normalize them before matching.
var (
	// ErrRecordNotFound is returned when a query matches no records.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrForeignKey is returned on foreign key constraint violations.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrInvalidData is returned when the data fails validation rules.
	ErrInvalidData = errors.New("invalid data")
)

// TranslateError maps GORM errors to the package sentinels. Unknown errors
// pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	case errors.Is(err, gorm.ErrInvalidData):
		return ErrInvalidData
	}

	return err
}

// IsNotFound reports whether err is a record-not-found error, raw or
// translated.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
