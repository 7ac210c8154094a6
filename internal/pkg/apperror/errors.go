package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest     ErrorCode = "BAD_REQUEST"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodePersistence    ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeAuth           ErrorCode = "AUTH_ERROR"
	ErrCodeUnavailable    ErrorCode = "UNAVAILABLE"
	ErrCodeStorageWarning ErrorCode = "STORAGE_WARNING"
)

// AppError ошибка приложения, уже приведённая к таксономии ответа.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	// Fields заполняется только для VALIDATION_ERROR: путь поля -> сообщение.
	Fields map[string]string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation собирает набор ошибок полей в одну ошибку.
func Validation(fields map[string]string) *AppError {
	e := New(ErrCodeValidation, "проверка формы не пройдена")
	e.Fields = fields
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized, ErrCodeAuth:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodePersistence, ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return is(err, ErrCodeNotFound)
}

func IsUnauthorized(err error) bool {
	return is(err, ErrCodeUnauthorized)
}

func IsForbidden(err error) bool {
	return is(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return is(err, ErrCodeValidation)
}

func IsPersistence(err error) bool {
	return is(err, ErrCodePersistence)
}

func IsAuth(err error) bool {
	return is(err, ErrCodeAuth) || is(err, ErrCodeUnauthorized)
}

func IsUnavailable(err error) bool {
	return is(err, ErrCodeUnavailable)
}

func IsConflict(err error) bool {
	return is(err, ErrCodeConflict)
}

// FieldsOf возвращает ошибки полей, если err несёт VALIDATION_ERROR.
func FieldsOf(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == ErrCodeValidation {
		return appErr.Fields
	}
	return nil
}

var (
	ErrProposalNotFound    = New(ErrCodeNotFound, "заявка не найдена")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrInvalidCredentials  = New(ErrCodeAuth, "неверные учетные данные")
	// ErrNotAdmin ошибка входа, но по статусу это отказ в доступе.
	ErrNotAdmin            = &AppError{Code: ErrCodeAuth, Message: "у пользователя нет прав администратора", HTTPStatus: http.StatusForbidden}
	ErrSubmitInFlight      = New(ErrCodeConflict, "отправка уже выполняется")
	ErrIdentityUnavailable = New(ErrCodeUnavailable, "сервис авторизации недоступен")
)
