package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/runner/internal/presentation/http/response"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

const principalKey = "auth.principal"

// Middleware authenticates bearer tokens and stores the principal on the context.
func Middleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return response.New(c).WithError(errorbank.Unauthorized(err.Error())).Build()
			}
			principal, err := issuer.Parse(token)
			if err != nil {
				return response.New(c).WithError(errorbank.Unauthorized("invalid token")).Build()
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal of the request, if any.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}

// PartnerEmail rejects non-partner accounts and returns the partner's email.
func PartnerEmail(c echo.Context) (string, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return "", errorbank.Unauthorized("authentication required")
	}
	if p.Role != RolePartner {
		return "", errorbank.Forbidden("only partners can access this resource")
	}
	return p.Email, nil
}

// CustomerEmail rejects non-customer accounts and returns the customer's email.
func CustomerEmail(c echo.Context) (string, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return "", errorbank.Unauthorized("authentication required")
	}
	if p.Role != RoleCustomer {
		return "", errorbank.Forbidden("only customers can access this resource")
	}
	return p.Email, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}
