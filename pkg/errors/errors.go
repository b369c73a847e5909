package errors

import (
	"fmt"
)

// Messages returned to clients for the domain failures of the user resource.
const (
	MsgObjectNotFound  = "Objeto não encontrado!"
	MsgEmailRegistered = "E-mail já cadastrado!"
	MsgRequiredField   = "Campo obrigatório!"
	MsgInvalidID       = "ID inválido!"
	MsgInvalidBody     = "Corpo da requisição inválido!"
	MsgInternalError   = "Internal Server Error"
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s", e.Message, e.Field)
	}
	return e.Message
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// DataIntegrityError reports that a write would break a uniqueness rule,
// either detected up front by the usecase or rejected by storage.
type DataIntegrityError struct {
	Field   string
	Message string
	Err     error
}

// NewDataIntegrityError creates a new data integrity error
func NewDataIntegrityError(field, message string) *DataIntegrityError {
	return &DataIntegrityError{
		Field:   field,
		Message: message,
	}
}

// WrapDataIntegrityError creates a data integrity error carrying the storage cause
func WrapDataIntegrityError(field, message string, err error) *DataIntegrityError {
	return &DataIntegrityError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *DataIntegrityError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Field)
}

// Unwrap returns the wrapped error
func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}
