package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil))
	assert.ErrorIs(t, Translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, Translate(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), ErrDuplicateKey)
	assert.ErrorIs(t, Translate(gorm.ErrCheckConstraintViolated), ErrCheckViolation)

	other := errors.New("connection reset")
	assert.Same(t, other, Translate(other))
}
