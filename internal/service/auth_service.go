package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/apperr"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// tokenClaims is the internal claims type used for JWT parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// TokenPair holds the bearer credentials issued after authentication.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthService issues and verifies bearer credentials. Refresh tokens are
// recorded by JWT ID so the store is consulted on every refresh.
type AuthService struct {
	tokens     *repository.TokenRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(tokens *repository.TokenRepository, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		tokens:     tokens,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair creates an access/refresh token pair for the user and
// records the refresh token.
func (s *AuthService) IssuePair(ctx context.Context, user *model.User) (TokenPair, error) {
	access, _, err := s.sign(user.ID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, jti, err := s.sign(user.ID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	record := &model.RefreshToken{
		JTI:       jti,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess validates an access token and returns the user id it was
// issued for.
func (s *AuthService) VerifyAccess(token string) (uint, error) {
	claims, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return 0, err
	}
	return subjectUserID(claims)
}

// Refresh validates a refresh token against the store and issues a new
// access token for the same user.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return "", err
	}

	record, err := s.tokens.FindByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.CodeUnauthorized, "refresh token is not recognized")
		}
		return "", fmt.Errorf("find refresh token: %w", err)
	}
	if record.RevokedAt != nil {
		return "", apperr.New(apperr.CodeUnauthorized, "refresh token has been revoked")
	}
	if !s.now().Before(record.ExpiresAt) {
		return "", apperr.New(apperr.CodeUnauthorized, "refresh token has expired")
	}

	userID, err := subjectUserID(claims)
	if err != nil {
		return "", err
	}

	access, _, err := s.sign(userID, tokenTypeAccess, s.accessTTL)
	return access, err
}

// Revoke withdraws a refresh token so later refresh attempts fail.
// Revoking an already-revoked token is a no-op.
func (s *AuthService) Revoke(ctx context.Context, refresh string) error {
	claims, err := s.parse(refresh, tokenTypeRefresh)
	if err != nil {
		return err
	}

	record, err := s.tokens.FindByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeUnauthorized, "refresh token is not recognized")
		}
		return fmt.Errorf("find refresh token: %w", err)
	}
	if record.RevokedAt != nil {
		return nil
	}
	return s.tokens.Revoke(ctx, record.JTI, s.now())
}

// PurgeExpired removes expired and revoked refresh-token rows. Wired to
// the scheduler in main.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

func (s *AuthService) sign(userID uint, tokenType string, ttl time.Duration) (token, jti string, err error) {
	now := s.now()
	jti = uuid.NewString()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		TokenType: tokenType,
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return token, jti, nil
}

func (s *AuthService) parse(token, wantType string) (*tokenClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.CodeUnauthorized, "token has expired", err)
		}
		return nil, apperr.Wrap(apperr.CodeUnauthorized, "token is invalid", err)
	}
	if claims.TokenType != wantType {
		return nil, apperr.New(apperr.CodeUnauthorized, fmt.Sprintf("token is not an %s token", wantType))
	}
	return &claims, nil
}

func subjectUserID(claims *tokenClaims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeUnauthorized, "token subject is invalid", err)
	}
	return uint(id), nil
}
