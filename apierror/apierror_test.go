package apierror

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusSentinel(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   error
	}{
		{name: "ok", statusCode: http.StatusOK, expected: nil},
		{name: "created", statusCode: http.StatusCreated, expected: nil},
		{name: "unauthorised", statusCode: http.StatusUnauthorized, expected: ErrUnauthorised},
		{name: "forbidden", statusCode: http.StatusForbidden, expected: ErrForbidden},
		{name: "not found", statusCode: http.StatusNotFound, expected: ErrNotFound},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, expected: ErrRateLimited},
		{name: "bad request", statusCode: http.StatusBadRequest, expected: ErrBadRequest},
		{name: "internal server error", statusCode: http.StatusInternalServerError, expected: ErrServerError},
		{name: "service unavailable", statusCode: http.StatusServiceUnavailable, expected: ErrServerError},
		{name: "conflict", statusCode: http.StatusConflict, expected: ErrUnexpectedStatus},
		{name: "redirect", statusCode: http.StatusFound, expected: ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusSentinel(tt.statusCode))
		})
	}
}

func TestError_Message(t *testing.T) {
	full := &Error{Source: "graph", StatusCode: 404, Code: "itemNotFound", Message: "List not found"}
	assert.Equal(t, "graph: status 404: itemNotFound: List not found", full.Error())

	noCode := &Error{Source: "sharepoint", StatusCode: 400, Message: "Bad field"}
	assert.Equal(t, "sharepoint: status 400: Bad field", noCode.Error())

	bare := &Error{Source: "token", StatusCode: 502}
	assert.Equal(t, "token: status 502", bare.Error())
}

func TestError_IsSentinel(t *testing.T) {
	err := errors.Wrap(&Error{Source: "graph", StatusCode: http.StatusNotFound}, "get list")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)

	var apiErr *Error
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestInvalid(t *testing.T) {
	err := Invalid("No SiteDomain defined.")

	assert.EqualError(t, err, "No SiteDomain defined.")
	assert.True(t, IsInvalid(err))
	assert.False(t, IsInvalid(errors.New("No SiteDomain defined.")))
}
