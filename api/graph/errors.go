package graph

import (
	"bytes"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/cockroachdb/errors"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"

	"github.com/acuvity/sharepoint-flow/apierror"
)

// transformError turns Graph and credential failures into *apierror.Error,
// keeping the token endpoint's body. Anything else, including credential
// failures that never got a response, is wrapped with msg.
func transformError(err error, msg string) error {
	var oDataErr *odataerrors.ODataError
	if errors.As(err, &oDataErr) {
		apiErr := &apierror.Error{Source: "graph", StatusCode: oDataErr.ResponseStatusCode}
		if payload := oDataErr.GetErrorEscaped(); payload != nil {
			if payload.GetCode() != nil {
				apiErr.Code = *payload.GetCode()
			}
			if payload.GetMessage() != nil {
				apiErr.Message = *payload.GetMessage()
			}
		}
		return apiErr
	}

	// Without a response the authority was never reached.
	var authErr *azidentity.AuthenticationFailedError
	if errors.As(err, &authErr) && authErr.RawResponse != nil {
		apiErr := &apierror.Error{Source: "token", StatusCode: authErr.RawResponse.StatusCode}
		if body, readErr := runtime.Payload(authErr.RawResponse); readErr == nil && len(bytes.TrimSpace(body)) > 0 {
			apiErr.Message = string(bytes.TrimSpace(body))
		} else {
			apiErr.Message = authErr.Error()
		}
		return apiErr
	}

	return errors.Wrap(err, msg)
}
