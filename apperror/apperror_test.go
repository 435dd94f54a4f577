package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	cases := map[error]int{
		NewNotFound("job", "42"):            http.StatusNotFound,
		NewValidation("Passwords do not match"): http.StatusBadRequest,
		NewAuthError(CodeInvalidCredential, nil): http.StatusUnauthorized,
		NewAuthError(CodeEmailInUse, nil):        http.StatusConflict,
		NewReauthRequired():                      http.StatusUnauthorized,
		NewUnverified("chat"):                    http.StatusForbidden,
		NewRetryable("Payment failed", nil):      http.StatusServiceUnavailable,
		errors.New("boom"):                       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(err), err.Error())
	}
}

func TestWrappedCauseStillMatches(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("save job: %w", NewInternal("db write", cause))

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
}

func TestAuthMessage(t *testing.T) {
	assert.Equal(t, "Email already in use. Try logging in instead.", AuthMessage(CodeEmailInUse, ""))
	assert.Equal(t, "Invalid email or password", AuthMessage(CodeUserNotFound, ""))
	assert.Equal(t, "Invalid email or password", AuthMessage(CodeInvalidCredential, ""))
	assert.Equal(t, "No account found with this email", AuthMessage(CodeResetUserNotFound, ""))
	assert.Equal(t, "quota exceeded", AuthMessage("too-many-requests", "quota exceeded"))
}

func TestJSONFlags(t *testing.T) {
	body := NewReauthRequired().ToJSON()
	assert.Equal(t, true, body["reauth_required"])

	body = NewRetryable("Payment failed, please try again", nil).ToJSON()
	assert.Equal(t, true, body["retryable"])

	body = ToJSON(errors.New("pq: secret detail"))
	assert.NotContains(t, body["message"], "secret")
}

func TestGeolocationMessage(t *testing.T) {
	assert.Equal(t, "Please allow location access in your browser", GeolocationMessage(GeoPermissionDenied))
	assert.Equal(t, "Location information unavailable", GeolocationMessage(GeoPositionUnavailable))
	assert.Equal(t, "Location request timed out", GeolocationMessage(GeoTimeout))
}
