package http

import (
	"go.uber.org/fx"

	customertransport "github.com/Additional-Code/runner/internal/transport/http/customer"
	menutransport "github.com/Additional-Code/runner/internal/transport/http/menu"
	ordertransport "github.com/Additional-Code/runner/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	menutransport.Module,
	ordertransport.Module,
	customertransport.Module,
)
