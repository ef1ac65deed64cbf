package handlers

// Error codes returned in ErrorResponse.Code. They are stable API: clients
// branch on them, so existing values never change meaning.
//
//	{"request_id": "e1b9be03-...", "code": "load_in_progress", "message": "another load is running"}
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"

	// navigator specific
	ErrCodeLoadInProgress   = "load_in_progress"
	ErrCodeLoadFailed       = "load_failed"
	ErrCodeTooLarge         = "too_large"
	ErrCodeNoIndex          = "no_index"
	ErrCodeUnknownType      = "unknown_type"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
