// Package apperr is the error taxonomy shared by the services and the single
// place where those errors become HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindForbidden
	KindNotFound
	KindUnauthorized
)

// Status maps an error kind to its HTTP status code. Forbidden is reported as
// 401 to match the existing client.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindForbidden, KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldError is one entry of an {"errors": [...]} body.
type FieldError struct {
	Param    string `json:"param,omitempty"`
	Msg      string `json:"msg"`
	Location string `json:"location,omitempty"`
}

// Error is an anticipated failure that is safe to show the client.
type Error struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if len(e.Fields) > 0 {
		return e.Fields[0].Msg
	}
	return http.StatusText(e.Kind.Status())
}

func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Field builds a body-parameter validation entry.
func Field(param, msg string) FieldError {
	return FieldError{Param: param, Msg: msg, Location: "body"}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Write renders err. Anticipated errors become {"msg": ...} or
// {"errors": [...]}; anything else is logged and answered with a bare 500.
func Write(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		log.Printf("internal error: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if len(e.Fields) > 0 {
		WriteJSON(w, e.Kind.Status(), map[string][]FieldError{"errors": e.Fields})
		return
	}
	WriteJSON(w, e.Kind.Status(), map[string]string{"msg": e.Msg})
}
