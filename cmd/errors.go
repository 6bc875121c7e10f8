package cmd

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrTargetExists       = errors.New("target directory already exists")
	ErrNameRequired       = errors.New("project name is required when using --yes flag")
	ErrCancelled          = errors.New("cancelled")

	// errIncomplete marks a best-effort step that finished with warnings.
	errIncomplete = errors.New("completed with warnings")
)

var projectNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// preconditionError carries a user-facing message for one of the sentinel
// errors above.
type preconditionError struct {
	msg string
	err error
}

func (e *preconditionError) Error() string { return e.msg }
func (e *preconditionError) Unwrap() error { return e.err }

// validateProjectName accepts lowercase letters, digits and inner hyphens.
func validateProjectName(name string) error {
	if !projectNamePattern.MatchString(name) {
		return &preconditionError{
			msg: fmt.Sprintf("Invalid project name '%s'. Use lowercase letters, numbers, and hyphens only.", name),
			err: ErrInvalidProjectName,
		}
	}
	return nil
}

func targetExistsError(path string) error {
	return &preconditionError{
		msg: fmt.Sprintf("Directory '%s' already exists", path),
		err: ErrTargetExists,
	}
}
