// internal/util/errors.go
// Definisi error aplikasi standar

package util

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string // e.g., "bad_input", "not_found", "conflict", "upstream", "internal"
	Message string
}

func (e AppError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func BadInput(msg string) AppError { return AppError{Code: "bad_input", Message: msg} }
func NotFound(msg string) AppError { return AppError{Code: "not_found", Message: msg} }
func Conflict(msg string) AppError { return AppError{Code: "conflict", Message: msg} }
func Upstream(msg string) AppError { return AppError{Code: "upstream", Message: msg} }
func Internal(msg string) AppError { return AppError{Code: "internal", Message: msg} }

// HTTPStatus memetakan error ke status HTTP. Error non-AppError dianggap internal.
func HTTPStatus(err error) int {
	var ae AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Code {
	case "bad_input":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	case "upstream":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message mengembalikan pesan yang aman ditampilkan ke user.
func Message(err error) string {
	var ae AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}
