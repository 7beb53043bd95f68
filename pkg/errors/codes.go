package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Molfile Module Error Codes
const (
	ErrCodeMolfileFormat       ErrorCode = "MOL_101"
	ErrCodeHookNotConfigured   ErrorCode = "MOL_102"
	ErrCodeUnsupportedVersion  ErrorCode = "MOL_103"
	ErrCodeEquivalenceFailed   ErrorCode = "MOL_104"
	ErrCodeAnnotationFailed    ErrorCode = "MOL_105"
	ErrCodeMoleculeSourceError ErrorCode = "MOL_106"
)

// Aliases used at call sites.
const (
	CodeInternal          = ErrCodeInternal
	CodeInvalidParam      = ErrCodeBadRequest
	CodeNotFound          = ErrCodeNotFound
	CodeConflict          = ErrCodeConflict
	CodeNotImplemented    = ErrCodeNotImplemented
	CodeCacheError        = ErrCodeCacheError
	CodeMolfileFormat     = ErrCodeMolfileFormat
	CodeHookNotConfigured = ErrCodeHookNotConfigured
	CodeOK                = ErrorCode("OK")
	CodeUnknown           = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeMolfileFormat:       http.StatusUnprocessableEntity,
	ErrCodeHookNotConfigured:   http.StatusServiceUnavailable,
	ErrCodeUnsupportedVersion:  http.StatusUnprocessableEntity,
	ErrCodeEquivalenceFailed:   http.StatusInternalServerError,
	ErrCodeAnnotationFailed:    http.StatusInternalServerError,
	ErrCodeMoleculeSourceError: http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeMolfileFormat:       "invalid molfile",
	ErrCodeHookNotConfigured:   "required hook is not configured",
	ErrCodeUnsupportedVersion:  "unsupported molfile version",
	ErrCodeEquivalenceFailed:   "equivalence check failed",
	ErrCodeAnnotationFailed:    "annotation failed",
	ErrCodeMoleculeSourceError: "failed to fetch molfile",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
