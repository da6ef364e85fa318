package request

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/runner/pkg/errorbank"
)

// PathID parses a positive int64 path parameter.
func PathID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid "+name, errorbank.WithCause(err), errorbank.WithDetail(name, raw))
	}
	return id, nil
}

// Bind decodes the request body into dst.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	return nil
}
