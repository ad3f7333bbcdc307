package repository

import (
	"fmt"
	"unicode/utf8"

	"github.com/fastygo/taskboard/domain"
)

// CheckTaskConstraints mirrors the column checks of the tasks table for
// stores that have no declarative constraints of their own.
func CheckTaskConstraints(description string, status domain.TaskStatus) error {
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return domain.ConstraintError(fmt.Errorf("description exceeds %d characters", domain.MaxDescriptionLength))
	}
	if !status.Valid() {
		return domain.ConstraintError(fmt.Errorf("status %q not allowed", status))
	}
	return nil
}
