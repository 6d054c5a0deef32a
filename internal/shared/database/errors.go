package database

import (
	"errors"

	"gorm.io/gorm"
)

// Persistence outcomes shared by every repository implementation
var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrCheckViolation  = errors.New("check constraint violated")
)

// Translate maps gorm errors onto the shared persistence errors
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrCheckViolation
	default:
		return err
	}
}
