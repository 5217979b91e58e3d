package constants

// OAuthErrorCode is the value of the error query parameter on the frontend
// redirect that ends a failed authorization.
type OAuthErrorCode string

const (
	// Provider errors passed through from the callback query.
	OAuthErrorAccessDenied       OAuthErrorCode = "access_denied"
	OAuthErrorInvalidRequest     OAuthErrorCode = "invalid_request"
	OAuthErrorUnauthorizedClient OAuthErrorCode = "unauthorized_client"
	OAuthErrorServerError        OAuthErrorCode = "server_error"
	OAuthErrorInvalidScope       OAuthErrorCode = "invalid_scope"
	OAuthErrorUnsupportedType    OAuthErrorCode = "unsupported_response_type"
	OAuthErrorUnavailable        OAuthErrorCode = "temporarily_unavailable"

	// Internal errors
	OAuthErrorMissingCode    OAuthErrorCode = "missing_code"
	OAuthErrorMissingState   OAuthErrorCode = "missing_state"
	OAuthErrorInvalidState   OAuthErrorCode = "invalid_state"
	OAuthErrorNotFound       OAuthErrorCode = "not_found"
	OAuthErrorNotConfigured  OAuthErrorCode = "not_configured"
	OAuthErrorUnsupported    OAuthErrorCode = "unsupported_provider"
	OAuthErrorExchangeFailed OAuthErrorCode = "exchange_failed"
	OAuthErrorFailed         OAuthErrorCode = "oauth_failed"
)

var OAuthErrorMessages = map[OAuthErrorCode]string{
	OAuthErrorAccessDenied:       "You denied the authorization request.",
	OAuthErrorInvalidRequest:     "The provider rejected the authorization request.",
	OAuthErrorUnauthorizedClient: "This application is not authorized with the provider.",
	OAuthErrorServerError:        "The provider encountered an error. Please try again later.",
	OAuthErrorInvalidScope:       "The provider rejected the requested permissions.",
	OAuthErrorUnsupportedType:    "The provider rejected the authorization request.",
	OAuthErrorUnavailable:        "The provider is temporarily unavailable. Please try again later.",

	OAuthErrorMissingCode:    "Authorization code is missing. Please connect again.",
	OAuthErrorMissingState:   "Security validation failed. Please connect again.",
	OAuthErrorInvalidState:   "Invalid security token. Please connect again.",
	OAuthErrorNotFound:       "The project was not found.",
	OAuthErrorNotConfigured:  "This platform is not configured.",
	OAuthErrorUnsupported:    "This platform is not supported.",
	OAuthErrorExchangeFailed: "The platform did not accept the authorization. Please try again.",
	OAuthErrorFailed:         "Connecting the account failed. Please try again.",
}

// GetOAuthErrorMessage returns a user-friendly error message
func GetOAuthErrorMessage(code OAuthErrorCode) string {
	if msg, ok := OAuthErrorMessages[code]; ok {
		return msg
	}
	return OAuthErrorMessages[OAuthErrorFailed]
}

// ProviderOAuthErrorCode normalizes the error parameter a provider sent back.
// Unknown values collapse to OAuthErrorFailed so arbitrary text never reaches
// the frontend URL.
func ProviderOAuthErrorCode(raw string) OAuthErrorCode {
	switch code := OAuthErrorCode(raw); code {
	case OAuthErrorAccessDenied, OAuthErrorInvalidRequest, OAuthErrorUnauthorizedClient,
		OAuthErrorServerError, OAuthErrorInvalidScope, OAuthErrorUnsupportedType, OAuthErrorUnavailable:
		return code
	default:
		return OAuthErrorFailed
	}
}
