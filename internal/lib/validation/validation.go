// Package validation настраивает go-playground/validator для доменных структур
// и переводит ошибки валидации в человеко-читаемый текст.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/salary-tracker/internal/lib/day"
)

// New возвращает валидатор с зарегистрированными доменными правилами:
// isodate — строка с календарной датой в формате YYYY-MM-DD.
func New() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return day.Valid(fl.Field().String())
	}); err != nil {
		// тег и функция заданы статически, ошибка здесь означает ошибку программиста
		panic(err)
	}
	return v
}

// Message формирует текст ошибки валидации. Каждое нарушение переводится в отдельную
// фразу, фразы объединяются через запятую. Прочие ошибки возвращаются как есть.
func Message(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, FieldMessage(fe))
	}
	return strings.Join(msgs, ", ")
}

// FieldMessage переводит одно нарушение в текст.
func FieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", field)
	case "min":
		return fmt.Sprintf("field %s must be at least %s characters long", field, fe.Param())
	case "gt":
		return fmt.Sprintf("field %s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("field %s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("field %s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", field, fe.Param())
	case "isodate":
		return fmt.Sprintf("field %s can contain only date in format YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("field %s is not valid", field)
	}
}

// FirstField возвращает имя первого поля, не прошедшего проверку, или пустую строку.
func FirstField(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errs[0].Field()
	}
	return ""
}
