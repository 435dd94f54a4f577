package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/config"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/types"
	"tradie-match-server/utils"
)

const tokenIssuer = "tradie-match-server"

// TokenService handles JWT token operations
type TokenService struct {
	cfg    config.JWTConfig
	tokens RefreshTokenRepository
	log    logger.Logger
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig, tokens RefreshTokenRepository, log logger.Logger) *TokenService {
	return &TokenService{cfg: cfg, tokens: tokens, log: log, now: time.Now}
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Session identifies the device a token pair is issued to.
type Session struct {
	UserAgent string
	IPAddress string
}

// GenerateTokenPair issues a fresh pair after the password was entered.
func (s *TokenService) GenerateTokenPair(ctx context.Context, accountID string, role models.Role, session Session) (*TokenPair, error) {
	authTime := s.now()
	accessToken, expiresIn, err := s.generateAccessToken(accountID, role, authTime)
	if err != nil {
		return nil, err
	}

	refresh, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}
	rt := &models.RefreshToken{
		Token:           refresh,
		AccountID:       accountID,
		ExpiresAt:       authTime.Add(s.cfg.RefreshTTL),
		AuthenticatedAt: authTime,
		UserAgent:       session.UserAgent,
		IPAddress:       session.IPAddress,
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		return nil, err
	}
	s.log.Debug("✅ Refresh token generated", zap.String("account_id", accountID))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, nil
}

func (s *TokenService) generateAccessToken(accountID string, role models.Role, authTime time.Time) (string, int64, error) {
	now := s.now()
	claims := &types.Claims{
		AccountID: accountID,
		Role:      string(role),
		AuthTime:  authTime.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   accountID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTTL.Seconds()), nil
}

// ValidateAccessToken parses and verifies an access token.
func (s *TokenService) ValidateAccessToken(tokenString string) (*types.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperror.NewUnauthorized("Invalid or expired token", err)
	}

	claims, ok := token.Claims.(*types.Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, apperror.NewUnauthorized("Invalid token claims", nil)
	}
	return claims, nil
}

// ValidateRefreshToken returns the stored token if it is usable.
func (s *TokenService) ValidateRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewUnauthorized("Invalid refresh token", nil)
		}
		return nil, err
	}
	if !rt.IsValid(s.now()) {
		return nil, apperror.NewUnauthorized("Refresh token is invalid or expired", nil)
	}
	return rt, nil
}

// Refresh issues a new access token and keeps the refresh token and the
// original authentication time.
func (s *TokenService) Refresh(ctx context.Context, rt *models.RefreshToken, role models.Role) (*TokenPair, error) {
	accessToken, expiresIn, err := s.generateAccessToken(rt.AccountID, role, rt.AuthenticatedAt)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rt.Token,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, nil
}

func (s *TokenService) RevokeRefreshToken(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *TokenService) RevokeAllUserTokens(ctx context.Context, accountID string) error {
	if err := s.tokens.RevokeAll(ctx, accountID); err != nil {
		return err
	}
	s.log.Info("✅ All refresh tokens revoked", zap.String("account_id", accountID))
	return nil
}

// CleanupExpiredTokens removes expired and revoked refresh tokens.
func (s *TokenService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup refresh tokens: %w", err)
	}
	return n, nil
}

// IsRecentLogin reports whether the password behind claims was entered
// within the configured window.
func (s *TokenService) IsRecentLogin(claims *types.Claims) bool {
	if claims == nil || claims.AuthTime == 0 {
		return false
	}
	return s.now().Sub(time.Unix(claims.AuthTime, 0)) <= s.cfg.RecentLoginWindow
}
