// Package apperr defines the error kinds surfaced to API clients and the JSON
// envelope they are rendered in.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Kind string

const (
	InvalidInput          Kind = "InvalidInput"
	MissingField          Kind = "MissingField"
	InvalidResourceID     Kind = "InvalidResourceId"
	MissingToken          Kind = "MissingToken"
	InvalidOrExpiredToken Kind = "InvalidOrExpiredToken"
	NotAuthenticated      Kind = "NotAuthenticated"
	ResourceNotFound      Kind = "ResourceNotFound"
	NotOwner              Kind = "NotOwner"
	EmailTaken            Kind = "EmailTaken"
	InvalidCredentials    Kind = "InvalidCredentials"
	SigningError          Kind = "SigningError"
	DataAccessFailure     Kind = "DataAccessFailure"

	// echo 层面的错误（路由不存在、方法不允许等）
	RouteNotFound Kind = "RouteNotFound"
	BadRequest    Kind = "BadRequest"
	Internal      Kind = "Internal"
)

const internalMessage = "Internal server error"

// Error is an error with a client-facing kind, status and message. Err is the
// underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Wrap keeps cause for logging; the client only sees message.
func Wrap(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: cause}
}

// DataAccess reports a failed store call as a generic 500.
func DataAccess(cause error) *Error {
	return Wrap(DataAccessFailure, http.StatusInternalServerError, internalMessage, cause)
}

// Signing reports a token signing failure as a generic 500.
func Signing(cause error) *Error {
	return Wrap(SigningError, http.StatusInternalServerError, internalMessage, cause)
}

// As returns err as *Error, turning anything unknown into a DataAccessFailure.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return DataAccess(err)
}

type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   Kind   `json:"error,omitempty"`
}

// Respond writes err using the failure envelope.
func Respond(c echo.Context, err error) error {
	e := As(err)
	return c.JSON(e.Status, &Body{
		Success: false,
		Message: e.Message,
		Error:   e.Kind,
	})
}
