package wizard

import (
	"errors"
	"strings"

	dErrors "touristid/pkg/domain-errors"
)

// Validation kinds. Every wizard error wraps exactly one of these, so callers
// can branch with errors.Is while transports map the attached code.
var (
	ErrFieldValidation = errors.New("field validation failed")
	ErrFileType        = errors.New("file type not allowed")
	ErrOTPFormat       = errors.New("invalid verification input")
	ErrInvalidState    = errors.New("operation not allowed in current state")
)

func fieldError(msg string) error {
	return dErrors.Wrap(ErrFieldValidation, dErrors.CodeValidation, msg)
}

func missingFieldsError(missing []string) error {
	return fieldError("missing required fields: " + strings.Join(missing, ", "))
}

func fileTypeError(msg string) error {
	return dErrors.Wrap(ErrFileType, dErrors.CodeUnsupportedMedia, msg)
}

func otpFormatError(msg string) error {
	return dErrors.Wrap(ErrOTPFormat, dErrors.CodeValidation, msg)
}

func stateError(msg string) error {
	return dErrors.Wrap(ErrInvalidState, dErrors.CodeInvalidState, msg)
}
