package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeConfiguration  = "CONFIGURATION_ERROR"
	ErrCodeUnavailable    = "SERVICE_UNAVAILABLE"
	ErrCodeNotImplemented = "NOT_IMPLEMENTED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query is required")
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question is required")
	ErrMissingUploadSource  = NewDomainError(ErrCodeValidation, "either file or file_url must be provided")
	ErrMissingSchemaVersion = NewDomainError(ErrCodeValidation, "schema_version is required")
)

// Configuration errors: missing credentials for a downstream dependency,
// surfaced before any retrieval or generation work starts.
var (
	ErrEmbeddingNotConfigured = NewDomainError(ErrCodeConfiguration, "embedding provider not configured: OPENAI_API_KEY required")
	ErrLLMNotConfigured       = NewDomainError(ErrCodeConfiguration, "language model not configured: OPENAI_API_KEY required")
)

// Availability errors. An uninitialized vector store is distinct from a
// healthy empty index, which is not an error at all.
var (
	ErrVectorStoreUnavailable = NewDomainError(ErrCodeUnavailable, "vector store not initialized")
)

// Unimplemented features
var (
	ErrURLIngestNotImplemented = NewDomainError(ErrCodeNotImplemented, "file_url ingestion not implemented")
)

// NewValidationError builds a batch-scoped validation error naming the
// offending chunk (by id, or "unknown") and field.
func NewValidationError(chunkID, field, reason string) *DomainError {
	if chunkID == "" {
		chunkID = "unknown"
	}
	return NewDomainError(ErrCodeValidation, fmt.Sprintf("chunk %q: field %q %s", chunkID, field, reason))
}
