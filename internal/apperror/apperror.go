// Package apperror defines the operational error taxonomy and the single
// translation point from store/internal failures to wire errors.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Error is an operational error: expected, safe to surface its message.
type Error struct {
	Status  int
	Message string
	Err     error // underlying cause, not surfaced outside development
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Operational reports whether the status describes an expected failure whose
// message is safe to reveal.
func (e *Error) Operational() bool { return e.Status < http.StatusInternalServerError }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "something went wrong", Err: err}
}

// Translate maps an arbitrary error to its wire representation. Already
// translated errors pass through; known store failures become operational
// errors; anything else is an internal error.
func Translate(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound("no document found with that identifier")
	}
	if errors.Is(err, primitive.ErrInvalidHex) {
		return BadRequest("invalid identifier")
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == 11000 {
				return duplicateKey(we.Message)
			}
		}
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 121 {
		// Document failed the collection's schema validation.
		return BadRequest("invalid input data")
	}

	return Internal(err)
}

// duplicateKey names the conflicting field out of the driver's index message,
// e.g. `... index: email_1 dup key: { email: "a@b.c" }`.
func duplicateKey(msg string) *Error {
	field := "field"
	if i := strings.Index(msg, "index: "); i >= 0 {
		rest := msg[i+len("index: "):]
		if j := strings.IndexAny(rest, "_ "); j > 0 {
			field = rest[:j]
		}
	}
	return BadRequest(fmt.Sprintf("duplicate value for %s, please use another value", field))
}
