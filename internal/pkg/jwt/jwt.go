package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"factorydesk/internal/domain"
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

// Claims carry the terminal identity picked at login. There is no
// credential behind them; the token only binds requests and the sync
// socket to one actor for addressing and authorization.
type Claims struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Department    string `json:"department,omitempty"`
	PersonnelRole string `json:"personnel_role,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Service) GenerateToken(u *domain.User) (string, error) {
	claims := Claims{
		UserID:        u.ID,
		Name:          u.Name,
		Role:          string(u.Role),
		Department:    u.Department,
		PersonnelRole: string(u.PersonnelRole),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}

// User rebuilds the session identity carried by the claims.
func (c *Claims) User() *domain.User {
	return &domain.User{
		ID:            c.UserID,
		Name:          c.Name,
		Role:          domain.UserRole(c.Role),
		Department:    c.Department,
		PersonnelRole: domain.PersonnelRole(c.PersonnelRole),
	}
}
