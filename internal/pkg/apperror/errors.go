package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeRemote       ErrorCode = "REMOTE_ERROR"
)

// AppError: ошибка с кодом, понятным сообщением для пользователя и причиной для логов.
// Fields заполняется для ошибок валидации и перечисляет проблемные поля формы.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Fields     []string
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

// Validation создаёт ValidationError: операция прерывается до любого обращения к хранилищу.
func Validation(message string, fields ...string) *AppError {
	e := New(ErrCodeValidation, message)
	e.Fields = fields
	return e
}

// MissingFields создаёт ValidationError для незаполненных обязательных полей.
func MissingFields(fields ...string) *AppError {
	return Validation("заполните обязательные поля: "+strings.Join(fields, ", "), fields...)
}

// Remote оборачивает сбой хранилища данных или файлового хранилища.
func Remote(err error, message string) *AppError {
	return Wrap(err, ErrCodeRemote, message)
}

// Auth создаёт AuthError: сессия отсутствует или истекла.
func Auth(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// As извлекает AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeValidation
}

func IsRemote(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeRemote
}

func IsAuth(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeUnauthorized
}

var (
	ErrEntityNotFound     = New(ErrCodeNotFound, "запись не найдена")
	ErrUnknownEntity      = New(ErrCodeNotFound, "неизвестный раздел")
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrSessionExpired     = New(ErrCodeUnauthorized, "сессия истекла, войдите снова")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrSignupDisabled     = New(ErrCodeForbidden, "регистрация отключена")
)
