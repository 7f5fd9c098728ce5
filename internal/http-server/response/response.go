// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"fmt"

	"github.com/go-playground/validator"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Errors — ошибки валидации по полям (опционально).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Data   any               `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// FieldError возвращает Response с ошибкой, привязанной к одному полю.
func FieldError(field, msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
		Errors: map[string]string{field: msg},
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок
// валидации. Сообщения раскладываются по полям запроса.
func ValidationError(errs validator.ValidationErrors) Response {
	errsMsgs := make(map[string]string, len(errs))

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs[err.Field()] = fmt.Sprintf("field %s is a required field", err.Field())
		case "email":
			errsMsgs[err.Field()] = fmt.Sprintf("field %s must be a valid email address", err.Field())
		case "alphanum":
			errsMsgs[err.Field()] = fmt.Sprintf("field %s can contain only numbers and letters", err.Field())
		case "min":
			errsMsgs[err.Field()] = fmt.Sprintf("field %s is too short", err.Field())
		case "max":
			errsMsgs[err.Field()] = fmt.Sprintf("field %s is too long", err.Field())
		case "eqfield":
			errsMsgs[err.Field()] = fmt.Sprintf("field %s must match %s", err.Field(), err.Param())
		case "uuid":
			errsMsgs[err.Field()] = fmt.Sprintf("field %s can contain only uuid", err.Field())
		default:
			errsMsgs[err.Field()] = fmt.Sprintf("field %s is not a valid", err.Field())
		}
	}
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Errors: errsMsgs,
	}
}
