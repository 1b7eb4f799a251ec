// Package apierr は全APIで共通のエラーモデル。
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func Invalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func NotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func Internal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// InvalidField: 1フィールドに紐づく入力エラー
func InvalidField(field, msg string) *APIError {
	return &APIError{
		Code:    CodeInvalidArgument,
		Message: "validation failed",
		Fields:  map[string]string{field: msg},
	}
}

// FieldErrors: フィールドごとのエラーを集める（先勝ち）
type FieldErrors map[string]string

func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err: 何もなければ nil
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &APIError{Code: CodeInvalidArgument, Message: "validation failed", Fields: f}
}

func Is(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

type errDTO struct {
	Error *APIError `json:"error"`
}

// Body: JSON 形式に包む。APIError 以外は中身を出さない
func Body(err error) errDTO {
	var api *APIError
	if errors.As(err, &api) {
		return errDTO{Error: api}
	}
	return errDTO{Error: Internal("internal error")}
}

// FromBind: gin のバインドエラーをフィールド単位のエラーに変換
func FromBind(err error) *APIError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Invalid("invalid json")
	}
	fields := FieldErrors{}
	for _, fe := range ve {
		fields.Add(jsonName(fe), bindMessage(fe))
	}
	return &APIError{Code: CodeInvalidArgument, Message: "validation failed", Fields: fields}
}

func jsonName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return fe.StructField()
}

// RegisterJSONTagNames: validator のフィールド名を json タグ名にする
func RegisterJSONTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
