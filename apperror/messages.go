package apperror

// Authentication failure codes reported by the account service.
const (
	CodeEmailInUse          = "email-already-in-use"
	CodeInvalidEmail        = "invalid-email"
	CodeWeakPassword        = "weak-password"
	CodeUserNotFound        = "user-not-found"
	CodeWrongPassword       = "wrong-password"
	CodeInvalidCredential   = "invalid-credential"
	CodeResetUserNotFound   = "reset-user-not-found"
	CodeRequiresRecentLogin = "requires-recent-login"
	CodeInvalidToken        = "invalid-token"
)

var authMessages = map[string]string{
	CodeEmailInUse:          "Email already in use. Try logging in instead.",
	CodeInvalidEmail:        "Invalid email address",
	CodeWeakPassword:        "Password is too weak",
	CodeUserNotFound:        "Invalid email or password",
	CodeWrongPassword:       "Invalid email or password",
	CodeInvalidCredential:   "Invalid email or password",
	CodeResetUserNotFound:   "No account found with this email",
	CodeRequiresRecentLogin: "Please sign in again to continue",
	CodeInvalidToken:        "This link is invalid or has expired",
}

// AuthMessage maps an auth code to the text shown to the user, falling back
// to raw for codes without a friendly message.
func AuthMessage(code, raw string) string {
	if msg, ok := authMessages[code]; ok {
		return msg
	}
	if raw == "" {
		return "Authentication failed"
	}
	return raw
}

// NewAuthError builds an unauthorized or invalid-input error carrying the
// friendly message for code.
func NewAuthError(code string, err error) *AppError {
	base := ErrUnauthorized
	switch code {
	case CodeEmailInUse:
		base = ErrConflict
	case CodeInvalidEmail, CodeWeakPassword, CodeInvalidToken:
		base = ErrInvalidInput
	case CodeResetUserNotFound:
		base = ErrNotFound
	case CodeRequiresRecentLogin:
		base = ErrReauthRequired
	}
	return NewAppError(base, AuthMessage(code, ""), code, err)
}

// Browser geolocation error codes.
const (
	GeoPermissionDenied     = 1
	GeoPositionUnavailable  = 2
	GeoTimeout              = 3
)

// GeolocationMessage maps a browser geolocation error code to a message.
func GeolocationMessage(code int) string {
	switch code {
	case GeoPermissionDenied:
		return "Please allow location access in your browser"
	case GeoPositionUnavailable:
		return "Location information unavailable"
	case GeoTimeout:
		return "Location request timed out"
	}
	return "Unable to get your location"
}
