package customer

import (
	"go.uber.org/fx"

	httpserver "github.com/Additional-Code/runner/internal/server/http"
)

// Module wires HTTP customer handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(r httpserver.Routes, h *Handler) {
		Register(r.Customer, h)
	}),
)
