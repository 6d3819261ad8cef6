package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the authenticated dealer identity.
type Claims struct {
	DealerID uuid.UUID
	Email    string
}

// JWTService issues and validates dealer tokens.
type JWTService interface {
	GenerateAccessToken(dealerID uuid.UUID, email string) (string, error)
	GenerateRefreshToken(dealerID uuid.UUID) (string, error)
	ValidateToken(token string) (*Claims, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
}

type Config struct {
	Secret        string
	RefreshSecret string
	Expiry        time.Duration
	RefreshExpiry time.Duration
}

type jwtService struct {
	cfg Config
}

func NewJWTService(cfg Config) JWTService {
	return &jwtService{cfg: cfg}
}

func (s *jwtService) GenerateAccessToken(dealerID uuid.UUID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"dealer_id": dealerID.String(),
		"email":     email,
		"iat":       now.Unix(),
		"exp":       now.Add(s.cfg.Expiry).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *jwtService) GenerateRefreshToken(dealerID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"dealer_id": dealerID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(s.cfg.RefreshExpiry).Unix(),
	})
	return token.SignedString([]byte(s.cfg.RefreshSecret))
}

func (s *jwtService) ValidateToken(tokenStr string) (*Claims, error) {
	claims, err := s.parse(tokenStr, s.cfg.Secret)
	if err != nil {
		return nil, err
	}

	email, _ := claims["email"].(string)
	dealerID, err := dealerIDFromClaims(claims)
	if err != nil {
		return nil, err
	}

	return &Claims{DealerID: dealerID, Email: email}, nil
}

func (s *jwtService) ValidateRefreshToken(tokenStr string) (uuid.UUID, error) {
	claims, err := s.parse(tokenStr, s.cfg.RefreshSecret)
	if err != nil {
		return uuid.Nil, err
	}
	return dealerIDFromClaims(claims)
}

func (s *jwtService) parse(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func dealerIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims["dealer_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing dealer_id claim")
	}
	dealerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid dealer_id claim")
	}
	return dealerID, nil
}
