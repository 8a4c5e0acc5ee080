package provider

import (
	"errors"

	"github.com/aws/smithy-go"
)

// ErrorMessage returns a single-line, user-facing message for err. Provider
// API errors are reduced to the message the service returned.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}

	return err.Error()
}
