// Package apperr описывает ошибки, которые ядро возвращает вызывающей стороне:
// ошибки валидации ввода и ошибки аутентификации. Сбои хранилища сюда не входят,
// они поглощаются на границе репозитория. Исключение: ErrCorrupted.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation — общий признак ошибок валидации, проверяется через errors.Is.
	ErrValidation = errors.New("validation error")
	// ErrNotFound — запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials — пара логин/пароль не совпала ни с одним пользователем.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrCorrupted — сохранённый список повреждён, запись поверх него отклонена.
	ErrCorrupted = errors.New("stored data is corrupted")
)

// ValidationError — отказ из-за некорректного ввода с человеко-читаемым сообщением.
type ValidationError struct {
	Field   string
	Message string
}

// Validation создаёт ValidationError для поля.
func Validation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is позволяет сравнивать любую ValidationError с ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFound оборачивает ErrNotFound сообщением о том, что именно не найдено.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
