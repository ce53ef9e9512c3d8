package domain

import "errors"

// Определяем переменные-ошибки, которые могут быть возвращены из Use Cases.
var (
	ErrPropertyNotFound     = errors.New("property not found")
	ErrValuationNotFound    = errors.New("valuation not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrEmailInUse           = errors.New("email already in use")
	ErrRoleExists           = errors.New("role already exists")
	ErrSessionNotFound      = errors.New("edit session not found")
	ErrValidationFailed     = errors.New("validation failed")
	ErrTokenInvalid         = errors.New("invalid jwt token")
	ErrUnknownField         = errors.New("unknown field")
	ErrEmptyImport          = errors.New("import file has no data rows")
	ErrTooManyRows          = errors.New("import file has too many rows")
	ErrUnsupportedFormat    = errors.New("unsupported file format")
	ErrSaveFailed           = errors.New("save failed")
)

// ValidationError несет карту ошибок по полям, чтобы REST-слой мог вернуть ее клиенту.
type ValidationError struct {
	Fields ValidationErrors
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
