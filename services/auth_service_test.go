package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tradie-match-server/apperror"
	"tradie-match-server/config"
	"tradie-match-server/models"
)

type AuthSuite struct {
	suite.Suite

	ctx      context.Context
	clock    time.Time
	profiles *fakeProfiles
	tokens   *fakeTokens
	accounts *fakeAccounts
	mailer   *fakeMailer
	tokenSvc *TokenService
	svc      *AuthService
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.profiles = newFakeProfiles()
	s.tokens = newFakeTokens()
	s.accounts = newFakeAccounts(s.profiles, s.tokens)
	s.mailer = &fakeMailer{}

	now := func() time.Time { return s.clock }
	s.tokenSvc = NewTokenService(config.JWTConfig{
		Secret:            "test-secret",
		AccessTTL:         15 * time.Minute,
		RefreshTTL:        7 * 24 * time.Hour,
		RecentLoginWindow: 5 * time.Minute,
	}, s.tokens, nopLog)
	s.tokenSvc.now = now
	s.svc = NewAuthService(s.accounts, s.profiles, s.tokenSvc, s.mailer, "https://app.test/", nopLog)
	s.svc.now = now
}

func (s *AuthSuite) validSignUp() SignUpRequest {
	return SignUpRequest{
		Email:           "Sam@Example.com ",
		Password:        "hammer123",
		ConfirmPassword: "hammer123",
		Name:            "Sam",
		Role:            models.RoleTradie,
		IsOver18:        true,
		AcceptTerms:     true,
	}
}

func (s *AuthSuite) signUp() *AuthResult {
	res, err := s.svc.SignUp(s.ctx, s.validSignUp(), Session{UserAgent: "test"})
	s.Require().NoError(err)
	return res
}

func (s *AuthSuite) TestSignUpCreatesAccountAndProfile() {
	res := s.signUp()

	s.Equal("sam@example.com", res.Account.Email)
	s.False(res.Account.EmailVerified)
	s.Equal(res.Account.ID, res.Profile.ID)
	s.Equal(models.DefaultRating, res.Profile.Rating)
	s.NotEmpty(res.Tokens.AccessToken)
	s.NotEmpty(res.Tokens.RefreshToken)
	s.Contains(s.mailer.last(), "https://app.test/verify-email?token=")

	stored := s.profiles.get(res.Account.ID)
	s.Equal(models.RoleTradie, stored.Role)
}

func (s *AuthSuite) TestSignUpValidation() {
	cases := map[string]func(r *SignUpRequest){
		"missing name":       func(r *SignUpRequest) { r.Name = " " },
		"passwords differ":   func(r *SignUpRequest) { r.ConfirmPassword = "hammer124" },
		"under 18":           func(r *SignUpRequest) { r.IsOver18 = false },
		"terms not accepted": func(r *SignUpRequest) { r.AcceptTerms = false },
		"unknown role":       func(r *SignUpRequest) { r.Role = models.RoleAdmin },
		"bad email":          func(r *SignUpRequest) { r.Email = "not-an-email" },
		"weak password": func(r *SignUpRequest) {
			r.Password, r.ConfirmPassword = "password", "password"
		},
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			req := s.validSignUp()
			mutate(&req)
			_, err := s.svc.SignUp(s.ctx, req, Session{})
			s.ErrorIs(err, apperror.ErrInvalidInput)
		})
	}
	s.Empty(s.accounts.byID)
}

func (s *AuthSuite) TestSignUpDuplicateEmail() {
	s.signUp()
	_, err := s.svc.SignUp(s.ctx, s.validSignUp(), Session{})
	s.ErrorIs(err, apperror.ErrConflict)

	var appErr *apperror.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Equal(apperror.AuthMessage(apperror.CodeEmailInUse, ""), appErr.Message)
}

func (s *AuthSuite) TestSignInWrongPassword() {
	s.signUp()
	_, err := s.svc.SignIn(s.ctx, "sam@example.com", "hammer999", Session{})
	s.ErrorIs(err, apperror.ErrUnauthorized)

	_, err = s.svc.SignIn(s.ctx, "nobody@example.com", "hammer123", Session{})
	s.ErrorIs(err, apperror.ErrUnauthorized)

	res, err := s.svc.SignIn(s.ctx, "SAM@example.com", "hammer123", Session{})
	s.Require().NoError(err)
	s.Equal(models.RoleTradie, res.Profile.Role)
}

func (s *AuthSuite) TestVerifyEmail() {
	res := s.signUp()
	account, err := s.accounts.FindByID(s.ctx, res.Account.ID)
	s.Require().NoError(err)

	s.ErrorIs(s.svc.VerifyEmail(s.ctx, "wrong"), apperror.ErrInvalidInput)
	s.Require().NoError(s.svc.VerifyEmail(s.ctx, account.VerificationToken))

	me, _, err := s.svc.Me(s.ctx, res.Account.ID)
	s.Require().NoError(err)
	s.True(me.EmailVerified)
	s.Empty(me.VerificationToken)
}

func (s *AuthSuite) TestPasswordReset() {
	res := s.signUp()

	s.ErrorIs(s.svc.RequestPasswordReset(s.ctx, "nobody@example.com"), apperror.ErrNotFound)
	s.Require().NoError(s.svc.RequestPasswordReset(s.ctx, "sam@example.com"))
	s.Contains(s.mailer.last(), "/reset-password?token=")

	account, err := s.accounts.FindByID(s.ctx, res.Account.ID)
	s.Require().NoError(err)
	token := account.ResetToken

	s.ErrorIs(s.svc.ResetPassword(s.ctx, token, "spanner42", "spanner43"), apperror.ErrInvalidInput)

	s.clock = s.clock.Add(2 * time.Hour)
	s.ErrorIs(s.svc.ResetPassword(s.ctx, token, "spanner42", "spanner42"), apperror.ErrInvalidInput, "expired link")

	s.clock = s.clock.Add(-90 * time.Minute)
	s.Require().NoError(s.svc.ResetPassword(s.ctx, token, "spanner42", "spanner42"))

	_, err = s.svc.Refresh(s.ctx, res.Tokens.RefreshToken)
	s.ErrorIs(err, apperror.ErrUnauthorized, "sessions are revoked by a reset")
	_, err = s.svc.SignIn(s.ctx, "sam@example.com", "spanner42", Session{})
	s.NoError(err)
}

func (s *AuthSuite) TestRefreshKeepsAuthTime() {
	res := s.signUp()
	signedInAt := s.clock

	s.clock = s.clock.Add(10 * time.Minute)
	pair, err := s.svc.Refresh(s.ctx, res.Tokens.RefreshToken)
	s.Require().NoError(err)
	s.Equal(res.Tokens.RefreshToken, pair.RefreshToken)

	claims, err := s.tokenSvc.ValidateAccessToken(pair.AccessToken)
	s.Require().NoError(err)
	s.Equal(signedInAt.Unix(), claims.AuthTime)
	s.False(s.tokenSvc.IsRecentLogin(claims))
}

func (s *AuthSuite) TestDeleteAccount() {
	res := s.signUp()
	claims, err := s.tokenSvc.ValidateAccessToken(res.Tokens.AccessToken)
	s.Require().NoError(err)

	err = s.svc.DeleteAccount(s.ctx, claims, DeleteAccountRequest{Confirm: true, ConfirmAgain: true, Phrase: "delete"})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	err = s.svc.DeleteAccount(s.ctx, claims, DeleteAccountRequest{Confirm: true, Phrase: DeleteConfirmPhrase})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	s.clock = s.clock.Add(6 * time.Minute)
	err = s.svc.DeleteAccount(s.ctx, claims, DeleteAccountRequest{Confirm: true, ConfirmAgain: true, Phrase: DeleteConfirmPhrase})
	s.ErrorIs(err, apperror.ErrReauthRequired)

	s.clock = s.clock.Add(-6 * time.Minute)
	s.Require().NoError(s.svc.DeleteAccount(s.ctx, claims, DeleteAccountRequest{Confirm: true, ConfirmAgain: true, Phrase: DeleteConfirmPhrase}))

	profile := s.profiles.get(res.Account.ID)
	s.True(profile.Deleted)
	s.Equal(models.DeletedUserName, profile.Name)
	s.Empty(profile.Photos)

	account, err := s.accounts.FindByID(s.ctx, res.Account.ID)
	s.Require().NoError(err)
	s.True(strings.HasPrefix(account.Email, "[Deleted]-"))

	_, err = s.svc.Refresh(s.ctx, res.Tokens.RefreshToken)
	s.ErrorIs(err, apperror.ErrUnauthorized)

	_, err = s.svc.SignUp(s.ctx, s.validSignUp(), Session{})
	s.NoError(err, "the email is free again")
}
