package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidID       = 1004
	ErrCodeInvalidResource = 1005
	ErrCodeInvalidFileName = 1006
	ErrCodeMissingRequired = 1009
	ErrCodeEmptyBody       = 1010

	// Domain state (2xxx)
	ErrCodeContentNotFound = 2001
	ErrCodeConflict        = 2102

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal             = 4001
	ErrCodeStoreFailure         = 4002
	ErrCodeStorageMisconfigured = 4101
	ErrCodeNoProvenance         = 4102
	ErrCodeIntegrityFailure     = 4103
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeContentNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
