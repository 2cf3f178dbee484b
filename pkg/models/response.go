package models

// APIResponse is the uniform JSON envelope returned by every endpoint.
type APIResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// ErrorType tags error responses so clients can branch without parsing the
// human-readable message.
type ErrorType string

const (
	GeneralErrorType    ErrorType = "general"
	ValidationErrorType ErrorType = "validation"
	NotFoundErrorType   ErrorType = "not_found"
	ConflictErrorType   ErrorType = "conflict"
)

// ErrorData is the data field of an error response.
type ErrorData struct {
	Message   string    `json:"message"`
	ErrorType ErrorType `json:"error_type"`
}
