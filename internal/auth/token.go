package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"

	"github.com/Additional-Code/runner/internal/config"
)

// Role is the account type carried in an access token.
type Role string

const (
	RolePartner  Role = "PARTNER"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole normalises and validates a role name.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RolePartner, RoleCustomer:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	Email string
	Role  Role
}

// Claims are the JWT claims issued for a principal.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Module provides the token issuer to Fx.
var Module = fx.Provide(NewIssuer)

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewIssuer builds an Issuer from the auth configuration.
func NewIssuer(cfg config.Config) *Issuer {
	return &Issuer{
		secret: []byte(cfg.Auth.JWTSecret),
		ttl:    cfg.Auth.TokenTTL,
		issuer: cfg.Auth.Issuer,
		now:    time.Now,
	}
}

// Issue mints an access token for the given account.
func (i *Issuer) Issue(email string, role Role) (string, error) {
	if email == "" {
		return "", errors.New("email is required")
	}
	role, err := ParseRole(string(role))
	if err != nil {
		return "", err
	}

	now := i.now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies a token and returns its principal.
func (i *Issuer) Parse(token string) (*Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	role, err := ParseRole(string(claims.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Principal{Email: claims.Email, Role: role}, nil
}
