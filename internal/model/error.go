package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidDate      = "INVALID_DATE"
	ErrCodeInvalidFilter    = "INVALID_FILTER"
	ErrCodeInvalidIndex     = "INVALID_INDEX"
	ErrCodeNoPendingDelete  = "NO_PENDING_DELETE"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrMissingTitle      = NewDomainError(ErrCodeMissingField, "Title is required")
	ErrMissingExpiryDate = NewDomainError(ErrCodeMissingField, "Expiry date is required")
	ErrInvalidDate       = NewDomainError(ErrCodeInvalidDate, "Expiry date must be YYYY-MM-DD or RFC 3339")
	ErrInvalidFilter     = NewDomainError(ErrCodeInvalidFilter, "Filter must be one of All, Expired, Expiring Soon, Good")
	ErrInvalidIndex      = NewDomainError(ErrCodeInvalidIndex, "Index is outside the filtered list")
	ErrMissingIndexes    = NewDomainError(ErrCodeMissingField, "Indexes are required")
	ErrNoPendingDelete   = NewDomainError(ErrCodeNoPendingDelete, "No delete is awaiting confirmation")
)
