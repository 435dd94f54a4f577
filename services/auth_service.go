package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/types"
	"tradie-match-server/utils"
)

const (
	resetTokenTTL       = time.Hour
	DeleteConfirmPhrase = "DELETE"
)

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirm_password"`
	Name            string      `json:"name"`
	Role            models.Role `json:"role"`
	IsOver18        bool        `json:"is_over_18"`
	AcceptTerms     bool        `json:"accept_terms"`
}

// DeleteAccountRequest carries the three confirmations account deletion needs.
type DeleteAccountRequest struct {
	Confirm      bool   `json:"confirm"`
	ConfirmAgain bool   `json:"confirm_again"`
	Phrase       string `json:"phrase"`
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Account *models.Account `json:"account"`
	Profile *models.Profile `json:"profile"`
	Tokens  *TokenPair      `json:"tokens"`
}

type AuthService struct {
	accounts AccountRepository
	profiles ProfileRepository
	tokens   *TokenService
	mailer   Mailer
	baseURL  string
	log      logger.Logger
	now      func() time.Time
}

func NewAuthService(accounts AccountRepository, profiles ProfileRepository, tokens *TokenService, mailer Mailer, baseURL string, log logger.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		profiles: profiles,
		tokens:   tokens,
		mailer:   mailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
		now:      time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest, session Session) (*AuthResult, error) {
	email := utils.NormalizeEmail(req.Email)
	switch {
	case email == "" || req.Password == "" || req.ConfirmPassword == "" || strings.TrimSpace(req.Name) == "":
		return nil, apperror.NewValidation("Please fill in all fields")
	case req.Password != req.ConfirmPassword:
		return nil, apperror.NewValidation("Passwords do not match")
	case len(req.Password) < utils.MinPasswordLength:
		return nil, apperror.NewValidation(fmt.Sprintf("Password must be at least %d characters", utils.MinPasswordLength))
	case !req.IsOver18:
		return nil, apperror.NewValidation("You must be 18+ to use this service")
	case !req.AcceptTerms:
		return nil, apperror.NewValidation("You must accept Terms & Privacy Policy")
	case req.Role != models.RoleTradie && req.Role != models.RoleAdmirer:
		return nil, apperror.NewValidation("Please choose tradie or admirer")
	}
	if !utils.IsValidEmail(email) {
		return nil, apperror.NewAuthError(apperror.CodeInvalidEmail, nil)
	}
	if utils.IsWeakPassword(req.Password) {
		return nil, apperror.NewAuthError(apperror.CodeWeakPassword, nil)
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, apperror.NewAuthError(apperror.CodeEmailInUse, nil)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NewInternal("lookup account", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternal("hash password", err)
	}
	verifyToken, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, apperror.NewInternal("generate token", err)
	}

	now := s.now()
	id := uuid.NewString()
	account := &models.Account{
		ID:                id,
		Email:             email,
		PasswordHash:      hash,
		VerificationToken: verifyToken,
		Over18Confirmed:   true,
		TermsAcceptedAt:   &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	profile := &models.Profile{
		ID:                 id,
		Role:               req.Role,
		Name:               strings.TrimSpace(req.Name),
		Rating:             models.DefaultRating,
		VerificationStatus: models.VerificationNone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.accounts.CreateWithProfile(ctx, account, profile); err != nil {
		if isDuplicate(err) {
			return nil, apperror.NewAuthError(apperror.CodeEmailInUse, err)
		}
		return nil, apperror.NewInternal("create account", err)
	}

	s.sendVerification(ctx, account)

	tokens, err := s.tokens.GenerateTokenPair(ctx, id, profile.Role, session)
	if err != nil {
		return nil, apperror.NewInternal("issue tokens", err)
	}
	s.log.Info("✅ Account created", zap.String("account_id", id), zap.String("role", string(profile.Role)))
	return &AuthResult{Account: account, Profile: profile, Tokens: tokens}, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string, session Session) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.NewValidation("Please enter email and password")
	}
	if !utils.IsValidEmail(email) {
		return nil, apperror.NewAuthError(apperror.CodeInvalidEmail, nil)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewAuthError(apperror.CodeInvalidCredential, nil)
		}
		return nil, apperror.NewInternal("lookup account", err)
	}
	if account.Deleted || !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperror.NewAuthError(apperror.CodeInvalidCredential, nil)
	}

	profile, err := s.profiles.FindByID(ctx, account.ID)
	if err != nil {
		return nil, apperror.NewInternal("load profile", err)
	}
	tokens, err := s.tokens.GenerateTokenPair(ctx, account.ID, profile.Role, session)
	if err != nil {
		return nil, apperror.NewInternal("issue tokens", err)
	}
	return &AuthResult{Account: account, Profile: profile, Tokens: tokens}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, rt.AccountID)
	if err != nil {
		return nil, apperror.NewUnauthorized("Account no longer exists", err)
	}
	if profile.Deleted {
		return nil, apperror.NewUnauthorized("Account no longer exists", nil)
	}
	return s.tokens.Refresh(ctx, rt, profile.Role)
}

// SignOut revokes one refresh token, or all of the account's tokens when
// refreshToken is empty.
func (s *AuthService) SignOut(ctx context.Context, accountID, refreshToken string) error {
	if refreshToken == "" {
		return s.tokens.RevokeAllUserTokens(ctx, accountID)
	}
	return s.tokens.RevokeRefreshToken(ctx, refreshToken)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return apperror.NewValidation("Please enter your email address")
	}
	if !utils.IsValidEmail(email) {
		return apperror.NewAuthError(apperror.CodeInvalidEmail, nil)
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NewAuthError(apperror.CodeResetUserNotFound, nil)
		}
		return apperror.NewInternal("lookup account", err)
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return apperror.NewInternal("generate token", err)
	}
	expires := s.now().Add(resetTokenTTL)
	account.ResetToken = token
	account.ResetExpiresAt = &expires
	if err := s.accounts.Save(ctx, account); err != nil {
		return apperror.NewInternal("save account", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	if err := s.mailer.Send(ctx, account.Email, "Reset your password", "Reset your password: "+link); err != nil {
		s.log.Error("❌ Failed to send reset email", err, zap.String("account_id", account.ID))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return apperror.NewValidation("Passwords do not match")
	}
	if utils.IsWeakPassword(password) {
		return apperror.NewAuthError(apperror.CodeWeakPassword, nil)
	}
	account, err := s.accounts.FindByResetToken(ctx, token)
	if err != nil || !account.CanResetPassword(s.now()) {
		return apperror.NewAuthError(apperror.CodeInvalidToken, nil)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperror.NewInternal("hash password", err)
	}
	account.PasswordHash = hash
	account.ResetToken = ""
	account.ResetExpiresAt = nil
	if err := s.accounts.Save(ctx, account); err != nil {
		return apperror.NewInternal("save account", err)
	}
	return s.tokens.RevokeAllUserTokens(ctx, account.ID)
}

// SendVerification mails a new verification link.
func (s *AuthService) SendVerification(ctx context.Context, accountID string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return nil
	}
	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return apperror.NewInternal("generate token", err)
	}
	account.VerificationToken = token
	if err := s.accounts.Save(ctx, account); err != nil {
		return apperror.NewInternal("save account", err)
	}
	s.sendVerification(ctx, account)
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, account *models.Account) {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, account.VerificationToken)
	if err := s.mailer.Send(ctx, account.Email, "Verify your email", "Verify your email: "+link); err != nil {
		s.log.Error("❌ Failed to send verification email", err, zap.String("account_id", account.ID))
	}
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperror.NewAuthError(apperror.CodeInvalidToken, nil)
	}
	account, err := s.accounts.FindByVerificationToken(ctx, token)
	if err != nil {
		return apperror.NewAuthError(apperror.CodeInvalidToken, nil)
	}
	account.EmailVerified = true
	account.VerificationToken = ""
	if err := s.accounts.Save(ctx, account); err != nil {
		return apperror.NewInternal("save account", err)
	}
	s.log.Info("✅ Email verified", zap.String("account_id", account.ID))
	return nil
}

// Me returns the account as stored now, so the verification flag is fresh.
func (s *AuthService) Me(ctx context.Context, accountID string) (*models.Account, *models.Profile, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.FindByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	return account, profile, nil
}

// DeleteAccount anonymizes the profile, frees the email and revokes every
// session. It needs both confirmations, the typed phrase and a recent login.
func (s *AuthService) DeleteAccount(ctx context.Context, claims *types.Claims, req DeleteAccountRequest) error {
	if !req.Confirm || !req.ConfirmAgain {
		return apperror.NewValidation("Account deletion must be confirmed twice")
	}
	if req.Phrase != DeleteConfirmPhrase {
		return apperror.NewValidation("Type DELETE to confirm account deletion")
	}
	if !s.tokens.IsRecentLogin(claims) {
		return apperror.NewReauthRequired()
	}

	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		return err
	}
	profile, err := s.profiles.FindByID(ctx, claims.AccountID)
	if err != nil {
		return err
	}

	now := s.now()
	profile.Anonymize(now)
	account.Email = "[Deleted]-" + account.ID
	account.Deleted = true
	account.PasswordHash = ""
	account.VerificationToken = ""
	account.ResetToken = ""
	account.ResetExpiresAt = nil
	account.UpdatedAt = now
	if err := s.accounts.SoftDelete(ctx, account, profile); err != nil {
		return apperror.NewInternal("delete account", err)
	}
	s.log.Info("🗑️ Account deleted", zap.String("account_id", account.ID))
	return nil
}
