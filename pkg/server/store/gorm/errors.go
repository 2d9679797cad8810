package gorm

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isForeignKeyViolation reports a failed foreign key check. Dialects without
// an error translator for it surface only the driver message.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
