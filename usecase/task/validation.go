package task

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fastygo/taskboard/domain"
)

// Validation messages reported to clients.
const (
	MsgDescriptionRequired = "Description is required and must be a string"
	MsgDescriptionEmpty    = "Description cannot be empty"
	MsgDescriptionTooLong  = "Description must be 500 characters or less"
	MsgStatusInvalid       = "Status must be either pending or complete"
)

// Validated is a task payload that passed validation: description trimmed,
// status defaulted.
type Validated struct {
	Description string
	Status      domain.TaskStatus
}

// Validate checks a create/update payload. Description rules are a priority
// chain yielding at most one message; the status rule is reported alongside.
func Validate(input domain.TaskInput) (Validated, error) {
	var details []string

	var description string
	switch {
	case input.Description == nil || *input.Description == "":
		details = append(details, MsgDescriptionRequired)
	case trim(*input.Description) == "":
		details = append(details, MsgDescriptionEmpty)
	case utf8.RuneCountInString(*input.Description) > domain.MaxDescriptionLength:
		details = append(details, MsgDescriptionTooLong)
	default:
		description = trim(*input.Description)
	}

	status := domain.StatusPending
	if input.Status != nil && *input.Status != "" {
		parsed, ok := domain.ParseTaskStatus(*input.Status)
		if !ok {
			details = append(details, MsgStatusInvalid)
		}
		status = parsed
	}

	if len(details) > 0 {
		return Validated{}, &domain.ValidationError{Details: details}
	}
	return Validated{Description: description, Status: status}, nil
}

// trim strips whitespace and byte order marks from both ends.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
