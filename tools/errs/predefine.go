package errs

import "net/http"

const (
	CodeInvalidArgument = 1001
	CodeUnauthenticated = 1002
	CodeForbidden       = 1003
	CodeNotFound        = 1004
	CodeConflict        = 1005
	CodeStoreFailure    = 1500
)

var (
	ErrInvalidArgument = NewCodeError(CodeInvalidArgument, "invalid argument")
	ErrUnauthenticated = NewCodeError(CodeUnauthenticated, "unauthenticated")
	ErrForbidden       = NewCodeError(CodeForbidden, "forbidden")
	ErrNotFound        = NewCodeError(CodeNotFound, "not found")
	ErrConflict        = NewCodeError(CodeConflict, "conflict")
	ErrStoreFailure    = NewCodeError(CodeStoreFailure, "store failure")
)

// HTTPStatus maps an error's code to the status the API layer answers with.
// Unknown errors count as store/internal failures.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
