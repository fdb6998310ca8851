package square

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	sq "github.com/square/square-go-sdk"
	sqcore "github.com/square/square-go-sdk/core"

	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

const redacted = "[REDACTED]"

var sensitiveKeyParts = []string{"card", "nonce", "token", "source", "cvv", "cvc", "secret", "email", "phone"}

// mapError classifies an SDK failure. Square's own error codes win over the
// HTTP status, since a declined card and a malformed request share 400.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *sqcore.APIError
	if !errors.As(err, &apiErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "square "+op+" failed")
	}
	code := domainCodeForStatus(apiErr.StatusCode)
	for _, sqErr := range decodeErrors(apiErr) {
		if c, ok := codeForSquareError(sqErr); ok {
			code = c
			break
		}
	}
	return pkgerrors.Wrap(code, err, "square "+op+" failed")
}

func codeForSquareError(e *sq.Error) (pkgerrors.Code, bool) {
	switch {
	case e == nil:
		return "", false
	case e.Code == sq.ErrorCodeIdempotencyKeyReused:
		return pkgerrors.CodeIdempotency, true
	case e.Category == sq.ErrorCategoryAuthenticationError:
		return pkgerrors.CodeUnauthorized, true
	case e.Category == sq.ErrorCategoryPaymentMethodError:
		return pkgerrors.CodePaymentDeclined, true
	}
	return "", false
}

// decodeErrors reads the errors array out of an API error body.
func decodeErrors(apiErr *sqcore.APIError) []*sq.Error {
	if apiErr == nil || apiErr.Unwrap() == nil {
		return nil
	}
	var payload struct {
		Errors []*sq.Error `json:"errors"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(apiErr.Unwrap().Error())), &payload); err != nil {
		return nil
	}
	return payload.Errors
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusPaymentRequired:
		return pkgerrors.CodePaymentDeclined
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	}
	if status >= 400 && status < 500 {
		return pkgerrors.CodeValidation
	}
	return pkgerrors.CodeDependency
}

// redactFields copies fields, masking any whose key looks like a card,
// credential or personal detail.
func redactFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		out[k] = redact(k, v)
	}
	return out
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return redacted
		}
	}
	return value
}
