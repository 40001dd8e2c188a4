package jwt

import (
	"errors"
	"time"

	"myopia-screening-service/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims carry the authenticated clinician plus the hospital scope that
// bounds every patient read and aggregation downstream.
type Claims struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	HospitalID uuid.UUID `json:"hospital_id"`
	TokenType  TokenType `json:"token_type"`
	TokenID    string    `json:"token_id"`
	jwt.RegisteredClaims
}

type JWTService struct {
	config config.JWTConfig
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// AccessExpiry exposes the configured access token lifetime so callers
// can align token-store TTLs with it.
func (s *JWTService) AccessExpiry() time.Duration {
	return s.config.AccessExpiry
}

func (s *JWTService) GenerateAccessToken(userID, hospitalID uuid.UUID, email string) (string, string, error) {
	return s.generate(userID, hospitalID, email, AccessToken, s.config.AccessExpiry)
}

func (s *JWTService) GenerateRefreshToken(userID, hospitalID uuid.UUID, email string) (string, string, error) {
	return s.generate(userID, hospitalID, email, RefreshToken, s.config.RefreshExpiry)
}

func (s *JWTService) generate(userID, hospitalID uuid.UUID, email string, tokenType TokenType, expiry time.Duration) (string, string, error) {
	tokenID := uuid.New().String()
	claims := Claims{
		UserID:     userID,
		Email:      email,
		HospitalID: hospitalID,
		TokenType:  tokenType,
		TokenID:    tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}

	return signedToken, tokenID, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
