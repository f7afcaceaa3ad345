package domainerrors

import (
	"errors"
	"fmt"
)

// Code beschreibt die fachliche Fehlerkategorie unabhängig vom Transport.
type Code string

const (
	CodeNotFound          Code = "not_found"
	CodeMissingField      Code = "missing_field"
	CodeInvalidField      Code = "invalid_field"
	CodeFormat            Code = "format_error"
	CodeDuplicateCitation Code = "duplicate_citation"
	CodeUnknownType       Code = "unknown_type"
	CodeUnknownStyle      Code = "unknown_style"
	CodeConflict          Code = "conflict"
	CodeBadRequest        Code = "bad_request"
	CodeInternal          Code = "internal_error"
)

// Error trägt einen stabilen Code, optional das betroffene Feld und den Ursprungsfehler.
type Error struct {
	Code    Code
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is vergleicht nur den Code, damit errors.Is(err, domainerrors.New(CodeNotFound, "")) funktioniert.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New erzeugt einen Domänenfehler mit Code und Nachricht.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf ist New mit Formatierung.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ForField erzeugt einen Feldfehler (MissingField, InvalidField, Format).
func ForField(code Code, field, msg string) error {
	return &Error{Code: code, Field: field, Message: msg}
}

// Wrap verpackt err. Ist err bereits ein Domänenfehler, bleibt dessen Code erhalten.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Field: existing.Field, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode prüft, ob err ein Domänenfehler mit dem Code ist.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf liefert den Code von err oder CodeInternal für fremde Fehler.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// FieldOf liefert das betroffene Feld, falls vorhanden.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// DuplicateError meldet, dass das Projekt bereits eine gleichwertige Zitation besitzt.
type DuplicateError struct {
	ExistingID uint
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("citation already exists in project (id %d)", e.ExistingID)
}

// Duplicate erzeugt einen DuplicateCitation-Fehler mit der ID des vorhandenen Eintrags.
func Duplicate(existingID uint) error {
	return &Error{
		Code:    CodeDuplicateCitation,
		Message: fmt.Sprintf("citation already exists in project (id %d)", existingID),
		Err:     &DuplicateError{ExistingID: existingID},
	}
}

// ExistingID liefert die ID aus einem DuplicateCitation-Fehler.
func ExistingID(err error) (uint, bool) {
	var d *DuplicateError
	if errors.As(err, &d) {
		return d.ExistingID, true
	}
	return 0, false
}
